package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type memberFixture struct {
	Dependencies []string `yaml:"dependencies"`
	PackageJSON  []string `yaml:"package_json"`
}

func (m memberFixture) config() WorkspaceMemberConfig {
	return WorkspaceMemberConfig{
		Dependencies:    NewReqSet(m.Dependencies...),
		PackageJSONDeps: NewReqSet(m.PackageJSON...),
	}
}

type configFixture struct {
	Root    memberFixture            `yaml:",inline"`
	Members map[string]memberFixture `yaml:"members"`
}

type stepFixture struct {
	Name     string        `yaml:"name"`
	NoNpm    bool          `yaml:"no_npm"`
	NoConfig bool          `yaml:"no_config"`
	Changed  bool          `yaml:"changed"`
	Config   configFixture `yaml:"config"`
	Output   string        `yaml:"output"`
}

func (s stepFixture) options() SetWorkspaceConfigOptions {
	opts := SetWorkspaceConfigOptions{
		Config:   WorkspaceConfig{Root: s.Config.Root.config(), Members: map[string]WorkspaceMemberConfig{}},
		NoNpm:    s.NoNpm,
		NoConfig: s.NoConfig,
	}
	for name, member := range s.Config.Members {
		opts.Config.Members[name] = member.config()
	}
	return opts
}

type changesFixture struct {
	Lockfile string        `yaml:"lockfile"`
	Steps    []stepFixture `yaml:"steps"`
}

func TestSetWorkspaceConfig_Fixtures(t *testing.T) {
	t.Parallel()

	paths, err := filepath.Glob(filepath.Join("testdata", "config_changes", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".yaml"), func(t *testing.T) {
			t.Parallel()

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			var fixture changesFixture
			require.NoError(t, yaml.Unmarshal(data, &fixture))

			lf, err := FromContent("deno.lock", fixture.Lockfile, false)
			require.NoError(t, err)

			for _, step := range fixture.Steps {
				lf.hasContentChanged = false
				lf.SetWorkspaceConfig(step.options())
				assert.Equal(t, step.Changed, lf.HasContentChanged(), step.Name)

				// applying the same config again is a no-op
				lf.SetWorkspaceConfig(step.options())
				assert.Equal(t, step.Changed, lf.HasContentChanged(), step.Name)

				assert.Equal(t, step.Output, lf.Content().ToJSON(), step.Name)
				assert.NoError(t, lf.Content().Verify(), step.Name)
			}
		})
	}
}
