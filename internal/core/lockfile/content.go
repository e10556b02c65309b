package lockfile

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nightconcept/denolock/internal/core/migrate"
	"github.com/nightconcept/denolock/internal/core/pkgid"
)

// NpmPackageInfo is the locked state of one npm package.
type NpmPackageInfo struct {
	Integrity string
	// Dependencies maps the dependency name used by the package to the npm
	// id it resolved to, e.g. "ansi-styles" -> "ansi-styles@4.1.0".
	Dependencies map[string]string
}

// Equal reports whether both packages have the same integrity and dependencies.
func (p NpmPackageInfo) Equal(other NpmPackageInfo) bool {
	return p.Integrity == other.Integrity && maps.Equal(p.Dependencies, other.Dependencies)
}

// JsrPackageInfo is the locked state of one jsr package.
type JsrPackageInfo struct {
	Integrity string
	// Dependencies are the requirements found in the package. They are used
	// to tell when other entries can be removed from the lockfile.
	Dependencies ReqSet
}

// Content is the in-memory model of a version 4 lockfile.
type Content struct {
	Version string
	// Specifiers maps requirements to the ids that satisfied them, e.g.
	// "jsr:@foo/bar@^2.1" -> "jsr:@foo/bar@2.1.3".
	Specifiers map[string]string
	// Jsr maps resolved jsr ids such as "@oak/oak@12.6.3" to their info.
	Jsr map[string]JsrPackageInfo
	// Npm maps resolved npm ids such as "chalk@5.0.0" to their info.
	Npm       map[string]NpmPackageInfo
	Redirects map[string]string
	// Remote maps http(s) module URLs to their checksums.
	Remote    map[string]string
	Workspace WorkspaceConfig
}

// NewContent returns an empty version 4 content.
func NewContent() *Content {
	return &Content{
		Version:    migrate.LatestVersion,
		Specifiers: make(map[string]string),
		Jsr:        make(map[string]JsrPackageInfo),
		Npm:        make(map[string]NpmPackageInfo),
		Redirects:  make(map[string]string),
		Remote:     make(map[string]string),
		Workspace:  WorkspaceConfig{Root: emptyMember(), Members: make(map[string]WorkspaceMemberConfig)},
	}
}

// IsEmpty reports whether no section holds any entry.
func (c *Content) IsEmpty() bool {
	return len(c.Jsr) == 0 &&
		len(c.Npm) == 0 &&
		len(c.Specifiers) == 0 &&
		len(c.Redirects) == 0 &&
		len(c.Remote) == 0 &&
		c.Workspace.IsEmpty()
}

type rawNpmPackage struct {
	Integrity    *string  `json:"integrity"`
	Dependencies []string `json:"dependencies"`
}

type rawJsrPackage struct {
	Integrity    *string  `json:"integrity"`
	Dependencies []string `json:"dependencies"`
}

type rawPackageJSON struct {
	Dependencies []string `json:"dependencies"`
}

type rawWorkspaceMember struct {
	Dependencies []string       `json:"dependencies"`
	PackageJSON  rawPackageJSON `json:"packageJson"`
}

type rawWorkspace struct {
	rawWorkspaceMember
	Members map[string]rawWorkspaceMember `json:"members"`
}

// FromJSON builds a Content from a decoded JSON value that already has the
// version 4 shape. Values that are not JSON objects yield an empty content.
func FromJSON(value any) (*Content, error) {
	obj, ok := value.(migrate.Object)
	if !ok {
		return NewContent(), nil
	}

	content := NewContent()
	if version, ok := obj["version"].(string); ok {
		content.Version = version
	}

	if err := decodeSection(obj, "specifiers", &content.Specifiers); err != nil {
		return nil, err
	}
	// every specifier must split into name and requirement
	for specifier := range content.Specifiers {
		if _, _, _, ok := pkgid.SplitReq(specifier); !ok {
			return nil, &DeserializationError{Kind: ErrInvalidPackageSpecifier, Value: specifier}
		}
	}

	var rawNpm map[string]rawNpmPackage
	if err := decodeSection(obj, "npm", &rawNpm); err != nil {
		return nil, err
	}
	npm, err := npmFromRaw(rawNpm)
	if err != nil {
		return nil, err
	}
	content.Npm = npm

	var rawJsr map[string]rawJsrPackage
	if err := decodeSection(obj, "jsr", &rawJsr); err != nil {
		return nil, err
	}
	jsr, err := jsrFromRaw(rawJsr, content.Specifiers)
	if err != nil {
		return nil, err
	}
	content.Jsr = jsr

	if err := decodeSection(obj, "redirects", &content.Redirects); err != nil {
		return nil, err
	}
	if err := decodeSection(obj, "remote", &content.Remote); err != nil {
		return nil, err
	}

	var workspace rawWorkspace
	if err := decodeSection(obj, "workspace", &workspace); err != nil {
		return nil, err
	}
	content.Workspace = workspaceFromRaw(workspace)

	content.normalize()
	return content, nil
}

// decodeSection decodes obj[key] into target. A missing key leaves target
// untouched.
func decodeSection(obj migrate.Object, key string, target any) error {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err == nil {
		err = json.Unmarshal(data, target)
	}
	if err != nil {
		return &DeserializationError{Kind: ErrMalformedSection, Value: key, Err: err}
	}
	return nil
}

func npmFromRaw(raw map[string]rawNpmPackage) (map[string]NpmPackageInfo, error) {
	out := make(map[string]NpmPackageInfo, len(raw))
	if len(raw) == 0 {
		return out, nil
	}

	versionByName := make(map[string]string, len(raw))
	for _, id := range slices.Sorted(maps.Keys(raw)) {
		name, version, ok := pkgid.SplitNv(id)
		if !ok {
			return nil, &DeserializationError{Kind: ErrInvalidNpmPackageID, Value: id}
		}
		versionByName[name] = version
	}

	for id, pkg := range raw {
		if pkg.Integrity == nil {
			return nil, &DeserializationError{Kind: ErrMalformedSection, Value: "npm", Err: fmt.Errorf("package '%s' has no integrity", id)}
		}
		deps := make(map[string]string, len(pkg.Dependencies))
		for _, dep := range pkg.Dependencies {
			key, depID, err := npmDependencyFromRaw(dep, versionByName)
			if err != nil {
				return nil, err
			}
			deps[key] = depID
		}
		out[id] = NpmPackageInfo{Integrity: *pkg.Integrity, Dependencies: deps}
	}
	return out, nil
}

// npmDependencyFromRaw resolves one entry of a package's dependency array:
// "name", "name@version" or "key@npm:name@version".
func npmDependencyFromRaw(dep string, versionByName map[string]string) (key, id string, err error) {
	left, right, ok := pkgid.SplitNv(dep)
	if !ok {
		version, found := versionByName[dep]
		if !found {
			return "", "", &DeserializationError{Kind: ErrMissingPackage, Value: dep}
		}
		left, right = dep, version
	}

	aliased, isAlias := strings.CutPrefix(right, pkgid.NpmScheme)
	if !isAlias {
		return left, left + "@" + right, nil
	}
	name, version, ok := pkgid.SplitNv(aliased)
	if !ok {
		return "", "", &DeserializationError{Kind: ErrInvalidNpmPackageDependency, Value: dep}
	}
	return left, name + "@" + version, nil
}

func jsrFromRaw(raw map[string]rawJsrPackage, specifiers map[string]string) (map[string]JsrPackageInfo, error) {
	out := make(map[string]JsrPackageInfo, len(raw))
	if len(raw) == 0 {
		return out, nil
	}

	// A dependency equal to a specifier stays as is (mapped to ""); a bare
	// name resolves to the first specifier with a version requirement for it.
	toSpecifier := make(map[string]string, len(specifiers)*2)
	for specifier := range specifiers {
		toSpecifier[specifier] = ""
	}
	for _, specifier := range slices.Sorted(maps.Keys(specifiers)) {
		name, _, hasReq, _ := pkgid.SplitReq(specifier)
		if !hasReq {
			continue
		}
		if _, taken := toSpecifier[name]; !taken {
			toSpecifier[name] = specifier
		}
	}

	for id, pkg := range raw {
		if pkg.Integrity == nil {
			return nil, &DeserializationError{Kind: ErrMalformedSection, Value: "jsr", Err: fmt.Errorf("package '%s' has no integrity", id)}
		}
		deps := make(ReqSet, len(pkg.Dependencies))
		for _, dep := range pkg.Dependencies {
			specifier, found := toSpecifier[dep]
			if !found {
				return nil, &DeserializationError{Kind: ErrUnresolvedJsrDependency, Value: dep, Err: fmt.Errorf("required by '%s'", id)}
			}
			if specifier == "" {
				specifier = dep
			}
			deps.Add(specifier)
		}
		out[id] = JsrPackageInfo{Integrity: *pkg.Integrity, Dependencies: deps}
	}
	return out, nil
}

func workspaceFromRaw(raw rawWorkspace) WorkspaceConfig {
	member := func(m rawWorkspaceMember) WorkspaceMemberConfig {
		return WorkspaceMemberConfig{
			Dependencies:    NewReqSet(m.Dependencies...),
			PackageJSONDeps: NewReqSet(m.PackageJSON.Dependencies...),
		}
	}
	out := WorkspaceConfig{
		Root:    member(raw.rawWorkspaceMember),
		Members: make(map[string]WorkspaceMemberConfig, len(raw.Members)),
	}
	for name, m := range raw.Members {
		out.Members[name] = member(m)
	}
	maps.DeleteFunc(out.Members, func(_ string, m WorkspaceMemberConfig) bool {
		return m.IsEmpty()
	})
	return out
}

// normalize replaces nil maps left by decoding with empty ones.
func (c *Content) normalize() {
	if c.Specifiers == nil {
		c.Specifiers = make(map[string]string)
	}
	if c.Redirects == nil {
		c.Redirects = make(map[string]string)
	}
	if c.Remote == nil {
		c.Remote = make(map[string]string)
	}
}

func emptyMember() WorkspaceMemberConfig {
	return WorkspaceMemberConfig{Dependencies: make(ReqSet), PackageJSONDeps: make(ReqSet)}
}
