// Package config reads and writes the dlock.toml workspace manifest.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nightconcept/denolock/internal/core/project"
)

// ManifestName is the manifest file name looked for in a project directory.
const ManifestName = "dlock.toml"

// LoadManifestFile reads a manifest from an explicit path.
func LoadManifestFile(path string) (*project.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	manifest := project.NewManifest()
	if err := toml.Unmarshal(data, manifest); err != nil {
		return nil, err
	}
	if manifest.Members == nil {
		manifest.Members = make(map[string]project.Member)
	}
	return manifest, nil
}

// WriteManifestFile marshals the manifest and writes it to path, replacing
// any existing file.
func WriteManifestFile(path string, data *project.Manifest) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(data); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.Write(buf.Bytes())
	return err
}

// LockfilePath returns the lockfile the manifest in dirPath points at.
func LockfilePath(dirPath string, manifest *project.Manifest) string {
	if manifest.Lockfile == "" {
		return filepath.Join(dirPath, "deno.lock")
	}
	if filepath.IsAbs(manifest.Lockfile) {
		return manifest.Lockfile
	}
	return filepath.Join(dirPath, manifest.Lockfile)
}
