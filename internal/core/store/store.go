// Package store reads lockfiles from disk and persists their changes.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pion/logging"

	"github.com/nightconcept/denolock/internal/core/lockfile"
)

// DefaultLockfileName is the lockfile looked for in the working directory.
const DefaultLockfileName = "deno.lock"

// Load reads the lockfile at path. A missing file yields an empty lockfile,
// so that the first change creates it.
func Load(path string, overwrite bool, log logging.LeveledLogger) (*lockfile.Lockfile, error) {
	lf, err := LoadExisting(path, overwrite, log)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("no lockfile at %s, starting empty", path)
		lf = lockfile.NewEmpty(path, overwrite)
		lf.SetLogger(log)
		return lf, nil
	}
	return lf, err
}

// LoadExisting is Load for commands that need the file to exist. A missing
// file is an error matching fs.ErrNotExist.
func LoadExisting(path string, overwrite bool, log logging.LeveledLogger) (*lockfile.Lockfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("lockfile %s not found: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile %s: %w", path, err)
	}

	lf, err := lockfile.FromContent(path, string(data), overwrite)
	if err != nil {
		return nil, err
	}
	lf.SetLogger(log)
	return lf, nil
}

// Save writes the lockfile when it has pending changes and reports whether it
// wrote. The file is replaced atomically.
func Save(lf *lockfile.Lockfile, log logging.LeveledLogger) (bool, error) {
	data := lf.ResolveWriteBytes()
	if data == nil {
		log.Debugf("lockfile %s unchanged", lf.Filename())
		return false, nil
	}
	if err := WriteFile(lf.Filename(), data); err != nil {
		return false, err
	}
	log.Infof("wrote %s", lf.Filename())
	return true, nil
}

// WriteFile writes data to a uniquely named sibling temporary file and renames
// it over path. An existing file keeps its permissions; a new one gets 0644.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		closeErr := f.Close()
		removeErr := os.Remove(tmp)
		return errors.Join(fmt.Errorf("write temp: %w", err), closeErr, removeErr)
	}
	if err := f.Chmod(mode); err != nil {
		closeErr := f.Close()
		removeErr := os.Remove(tmp)
		return errors.Join(fmt.Errorf("chmod temp: %w", err), closeErr, removeErr)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}
