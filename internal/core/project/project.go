// Package project models the dlock.toml workspace manifest.
package project

import (
	"slices"

	"github.com/nightconcept/denolock/internal/core/lockfile"
)

// Manifest represents the overall structure of the dlock.toml file.
type Manifest struct {
	// Lockfile is the lockfile path, relative to the manifest. Empty means
	// deno.lock.
	Lockfile  string            `toml:"lockfile,omitempty"`
	Workspace *Member           `toml:"workspace,omitempty"`
	Members   map[string]Member `toml:"members,omitempty"`
}

// Member lists the requirements one workspace member declares.
type Member struct {
	Dependencies []string `toml:"dependencies,omitempty"`
	PackageJSON  []string `toml:"package_json,omitempty"`
}

// NewManifest creates and returns a new Manifest instance with initialized maps.
func NewManifest() *Manifest {
	return &Manifest{
		Workspace: &Member{},
		Members:   make(map[string]Member),
	}
}

func (m Member) config() lockfile.WorkspaceMemberConfig {
	return lockfile.WorkspaceMemberConfig{
		Dependencies:    lockfile.NewReqSet(m.Dependencies...),
		PackageJSONDeps: lockfile.NewReqSet(m.PackageJSON...),
	}
}

func memberFromConfig(c lockfile.WorkspaceMemberConfig) Member {
	m := Member{}
	if len(c.Dependencies) > 0 {
		m.Dependencies = c.Dependencies.Sorted()
	}
	if len(c.PackageJSONDeps) > 0 {
		m.PackageJSON = c.PackageJSONDeps.Sorted()
	}
	return m
}

// WorkspaceConfig converts the manifest into the workspace section a lockfile
// records.
func (m *Manifest) WorkspaceConfig() lockfile.WorkspaceConfig {
	config := lockfile.WorkspaceConfig{
		Root:    Member{}.config(),
		Members: make(map[string]lockfile.WorkspaceMemberConfig, len(m.Members)),
	}
	if m.Workspace != nil {
		config.Root = m.Workspace.config()
	}
	for name, member := range m.Members {
		config.Members[name] = member.config()
	}
	return config
}

// FromWorkspaceConfig builds a manifest declaring exactly what config records.
func FromWorkspaceConfig(config lockfile.WorkspaceConfig) *Manifest {
	m := NewManifest()
	*m.Workspace = memberFromConfig(config.Root)
	for name, member := range config.Members {
		m.Members[name] = memberFromConfig(member)
	}
	return m
}

// Requirements returns every requirement in the manifest, sorted and without
// duplicates.
func (m *Manifest) Requirements() []string {
	return m.WorkspaceConfig().AllDepReqs().Sorted()
}

// MemberNames returns the member names in lexical order.
func (m *Manifest) MemberNames() []string {
	names := make([]string, 0, len(m.Members))
	for name := range m.Members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
