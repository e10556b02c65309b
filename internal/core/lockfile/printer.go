package lockfile

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/nightconcept/denolock/internal/core/migrate"
	"github.com/nightconcept/denolock/internal/core/pkgid"
)

// v4Document fixes the order of the top-level keys.
type v4Document struct {
	Version    string                     `json:"version"`
	Specifiers map[string]string          `json:"specifiers,omitempty"`
	Jsr        map[string]packageDocument `json:"jsr,omitempty"`
	Npm        map[string]packageDocument `json:"npm,omitempty"`
	Redirects  map[string]string          `json:"redirects,omitempty"`
	Remote     map[string]string          `json:"remote"`
	Workspace  *workspaceDocument         `json:"workspace,omitempty"`
}

type packageDocument struct {
	Integrity    string   `json:"integrity"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type packageJSONDocument struct {
	Dependencies []string `json:"dependencies,omitempty"`
}

type memberDocument struct {
	Dependencies []string             `json:"dependencies,omitempty"`
	PackageJSON  *packageJSONDocument `json:"packageJson,omitempty"`
}

type workspaceDocument struct {
	Dependencies []string                  `json:"dependencies,omitempty"`
	PackageJSON  *packageJSONDocument      `json:"packageJson,omitempty"`
	Members      map[string]memberDocument `json:"members,omitempty"`
}

// ToJSON renders the content as a canonical version 4 lockfile: keys sorted
// at every level, two space indentation and a trailing newline. Empty
// sections are left out, except remote.
func (c *Content) ToJSON() string {
	doc := v4Document{
		Version:    migrate.LatestVersion,
		Specifiers: c.Specifiers,
		Redirects:  c.Redirects,
		Remote:     c.Remote,
	}
	if doc.Remote == nil {
		doc.Remote = map[string]string{}
	}

	if len(c.Jsr) > 0 {
		doc.Jsr = make(map[string]packageDocument, len(c.Jsr))
		for id, pkg := range c.Jsr {
			doc.Jsr[id] = packageDocument{Integrity: pkg.Integrity, Dependencies: pkg.Dependencies.Sorted()}
		}
	}

	if len(c.Npm) > 0 {
		sole := pkgid.SoleVersions(slices.Collect(maps.Keys(c.Npm)))
		doc.Npm = make(map[string]packageDocument, len(c.Npm))
		for id, pkg := range c.Npm {
			deps := make([]string, 0, len(pkg.Dependencies))
			for key, depID := range pkg.Dependencies {
				deps = append(deps, pkgid.NpmDependency(key, depID, sole))
			}
			slices.Sort(deps)
			doc.Npm[id] = packageDocument{Integrity: pkg.Integrity, Dependencies: deps}
		}
	}

	if !c.Workspace.IsEmpty() {
		root := memberToDocument(c.Workspace.Root)
		ws := &workspaceDocument{
			Dependencies: root.Dependencies,
			PackageJSON:  root.PackageJSON,
		}
		if len(c.Workspace.Members) > 0 {
			ws.Members = make(map[string]memberDocument, len(c.Workspace.Members))
			for name, member := range c.Workspace.Members {
				ws.Members[name] = memberToDocument(member)
			}
		}
		doc.Workspace = ws
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		// only strings, slices and maps keyed by strings are encoded
		panic("lockfile: encode content: " + err.Error())
	}
	return buf.String()
}

func memberToDocument(m WorkspaceMemberConfig) memberDocument {
	doc := memberDocument{}
	if len(m.Dependencies) > 0 {
		doc.Dependencies = m.Dependencies.Sorted()
	}
	if len(m.PackageJSONDeps) > 0 {
		doc.PackageJSON = &packageJSONDocument{Dependencies: m.PackageJSONDeps.Sorted()}
	}
	return doc
}
