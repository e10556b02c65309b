package lockfile

import "maps"

// WorkspaceMemberConfig holds the requirements one workspace member declares.
type WorkspaceMemberConfig struct {
	// Dependencies are the requirements from the member's deno.json.
	Dependencies ReqSet
	// PackageJSONDeps are the requirements from the member's package.json.
	PackageJSONDeps ReqSet
}

// IsEmpty reports whether the member declares no requirements.
func (m WorkspaceMemberConfig) IsEmpty() bool {
	return len(m.Dependencies) == 0 && len(m.PackageJSONDeps) == 0
}

// Equal reports whether both members declare the same requirements.
func (m WorkspaceMemberConfig) Equal(other WorkspaceMemberConfig) bool {
	return m.Dependencies.Equal(other.Dependencies) && m.PackageJSONDeps.Equal(other.PackageJSONDeps)
}

func (m WorkspaceMemberConfig) clone() WorkspaceMemberConfig {
	return WorkspaceMemberConfig{
		Dependencies:    m.Dependencies.Clone(),
		PackageJSONDeps: m.PackageJSONDeps.Clone(),
	}
}

// WorkspaceConfig is the workspace section of a lockfile: the requirements of
// the workspace root and of every named member.
type WorkspaceConfig struct {
	Root    WorkspaceMemberConfig
	Members map[string]WorkspaceMemberConfig
}

// IsEmpty reports whether no requirement is declared anywhere in the workspace.
func (w WorkspaceConfig) IsEmpty() bool {
	return w.Root.IsEmpty() && len(w.Members) == 0
}

// Equal reports whether both configs are structurally identical.
func (w WorkspaceConfig) Equal(other WorkspaceConfig) bool {
	return w.Root.Equal(other.Root) &&
		maps.EqualFunc(w.Members, other.Members, WorkspaceMemberConfig.Equal)
}

// AllDepReqs returns every requirement declared by the root or any member.
func (w WorkspaceConfig) AllDepReqs() ReqSet {
	out := make(ReqSet)
	add := func(m WorkspaceMemberConfig) {
		maps.Copy(out, m.Dependencies)
		maps.Copy(out, m.PackageJSONDeps)
	}
	add(w.Root)
	for _, member := range w.Members {
		add(member)
	}
	return out
}

func (w WorkspaceConfig) clone() WorkspaceConfig {
	out := WorkspaceConfig{
		Root:    w.Root.clone(),
		Members: make(map[string]WorkspaceMemberConfig, len(w.Members)),
	}
	for name, member := range w.Members {
		out.Members[name] = member.clone()
	}
	return out
}

// SetWorkspaceConfigOptions configures Lockfile.SetWorkspaceConfig.
type SetWorkspaceConfigOptions struct {
	Config WorkspaceConfig
	// NoConfig keeps the deno.json requirements and the members already
	// recorded, for runs where config files were not discovered.
	NoConfig bool
	// NoNpm keeps the package.json requirements already recorded, for runs
	// where package.json files were not read.
	NoNpm bool
}

// newWorkspaceConfig computes the workspace section that replaces current.
// Members without any requirement are dropped.
func newWorkspaceConfig(opts SetWorkspaceConfigOptions, current WorkspaceConfig) WorkspaceConfig {
	config := opts.Config.clone()

	if opts.NoNpm {
		config.Root.PackageJSONDeps = current.Root.PackageJSONDeps.Clone()
		for name, member := range config.Members {
			member.PackageJSONDeps = make(ReqSet)
			config.Members[name] = member
		}
		for name, member := range current.Members {
			next := config.Members[name]
			if next.Dependencies == nil {
				next.Dependencies = make(ReqSet)
			}
			next.PackageJSONDeps = member.PackageJSONDeps.Clone()
			config.Members[name] = next
		}
	}

	if opts.NoConfig {
		config.Root.Dependencies = current.Root.Dependencies.Clone()
		config.Members = current.clone().Members
	}

	maps.DeleteFunc(config.Members, func(_ string, member WorkspaceMemberConfig) bool {
		return member.IsEmpty()
	})
	return config
}
