// Package lockfile maintains a Deno style lockfile: the specifiers, npm and
// jsr packages, redirects and remote checksums a workspace resolved to.
//
// A Lockfile tracks whether its content changed since it was loaded so that
// callers only rewrite the file on real changes, and returns the original
// text untouched when nothing changed. It performs no I/O and is not safe for
// concurrent use.
package lockfile

import (
	"encoding/json"
	"io"
	"maps"
	"strings"

	"github.com/pion/logging"

	"github.com/nightconcept/denolock/internal/core/migrate"
)

// NpmPackageLockfileInfo describes an npm package to insert.
type NpmPackageLockfileInfo struct {
	// SerializedID is the package id, e.g. "chalk@5.0.0".
	SerializedID string
	Integrity    string
	Dependencies []NpmPackageDependencyLockfileInfo
}

// NpmPackageDependencyLockfileInfo is one dependency of an npm package: the
// name the package uses for it and the id it resolved to.
type NpmPackageDependencyLockfileInfo struct {
	Name string
	ID   string
}

// Lockfile owns the content of one lockfile and its change state.
type Lockfile struct {
	// overwrite ignores the existing file and always produces new content.
	overwrite bool
	// hasContentChanged is only reset by ResolveWriteBytes.
	hasContentChanged bool
	content           *Content
	filename          string
	// originalContent is returned by ToJSON while nothing changed.
	originalContent string
	log             logging.LeveledLogger
}

// NewEmpty returns a lockfile with no content.
func NewEmpty(filename string, overwrite bool) *Lockfile {
	return &Lockfile{
		overwrite: overwrite,
		content:   NewContent(),
		filename:  filename,
		log:       logging.NewDefaultLeveledLoggerForScope("lockfile", logging.LogLevelDisabled, io.Discard),
	}
}

// FromContent loads a lockfile from its text, migrating older schema versions
// in memory. The text is kept so that an unchanged lockfile serializes back
// byte for byte. With overwrite set the text is ignored.
func FromContent(filename, text string, overwrite bool) (*Lockfile, error) {
	if overwrite {
		return NewEmpty(filename, overwrite), nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Filename: filename, Reason: ErrEmpty}
	}

	content, err := loadContent(text)
	if err != nil {
		return nil, &Error{Filename: filename, Reason: err}
	}

	lf := NewEmpty(filename, overwrite)
	lf.content = content
	lf.originalContent = text
	return lf, nil
}

func loadContent(text string) (*Content, error) {
	var obj migrate.Object
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, &ParseError{Err: err}
	}
	if obj == nil {
		// the text was "null"
		return nil, &ParseError{Err: errNotAnObject}
	}
	migrated, err := migrate.Migrate(obj)
	if err != nil {
		return nil, err
	}
	return FromJSON(migrated)
}

// SetLogger replaces the logger; lockfiles log nothing by default.
func (l *Lockfile) SetLogger(log logging.LeveledLogger) {
	l.log = log
}

// Filename returns the path the lockfile was created for.
func (l *Lockfile) Filename() string {
	return l.filename
}

// HasContentChanged reports whether the content changed since it was loaded
// or last returned by ResolveWriteBytes.
func (l *Lockfile) HasContentChanged() bool {
	return l.hasContentChanged
}

// Content returns the current content. Callers must not modify it.
func (l *Lockfile) Content() *Content {
	return l.content
}

// Remote returns the remote module checksums. Callers must not modify it.
func (l *Lockfile) Remote() map[string]string {
	return l.content.Remote
}

func (l *Lockfile) markChanged() {
	l.hasContentChanged = true
}

// upsert stores value under key and marks the lockfile changed unless an
// equal value is already stored.
func upsert[V any](l *Lockfile, m map[string]V, key string, value V, equal func(V, V) bool) {
	if current, ok := m[key]; ok && equal(current, value) {
		return
	}
	m[key] = value
	l.markChanged()
}

func equalStrings(a, b string) bool {
	return a == b
}

// InsertRemote records the checksum of a remote module, replacing any
// previous one.
//
// The checksum is stored as given; verifying it is up to the caller.
func (l *Lockfile) InsertRemote(specifier, hash string) {
	upsert(l, l.content.Remote, specifier, hash, equalStrings)
}

// InsertNpmPackage records an npm package, replacing any previous entry with
// the same id.
//
// The integrity is stored as given; verifying it is up to the caller.
func (l *Lockfile) InsertNpmPackage(info NpmPackageLockfileInfo) {
	deps := make(map[string]string, len(info.Dependencies))
	for _, dep := range info.Dependencies {
		deps[dep.Name] = dep.ID
	}
	upsert(l, l.content.Npm, info.SerializedID, NpmPackageInfo{
		Integrity:    info.Integrity,
		Dependencies: deps,
	}, NpmPackageInfo.Equal)
}

// InsertPackageSpecifier records the id a requirement resolved to.
func (l *Lockfile) InsertPackageSpecifier(req, id string) {
	upsert(l, l.content.Specifiers, req, id, equalStrings)
}

// InsertPackage records a jsr package. An existing package only has its
// integrity replaced; its dependencies are kept.
//
// The integrity is stored as given; verifying it is up to the caller.
func (l *Lockfile) InsertPackage(name, integrity string) {
	pkg, ok := l.content.Jsr[name]
	if !ok {
		l.content.Jsr[name] = JsrPackageInfo{Integrity: integrity, Dependencies: make(ReqSet)}
		l.markChanged()
		return
	}
	if pkg.Integrity != integrity {
		pkg.Integrity = integrity
		l.content.Jsr[name] = pkg
		l.markChanged()
	}
}

// AddPackageDeps adds requirements used by the jsr package name. They are
// only used to tell when entries can be removed from the lockfile. Unknown
// packages are ignored.
//
// Each requirement must also be recorded with InsertPackageSpecifier. Nothing
// here checks that, but a written lockfile holding a requirement without a
// specifier fails to load with ErrUnresolvedJsrDependency.
func (l *Lockfile) AddPackageDeps(name string, deps ...string) {
	pkg, ok := l.content.Jsr[name]
	if !ok {
		return
	}
	if pkg.Dependencies == nil {
		pkg.Dependencies = make(ReqSet)
		l.content.Jsr[name] = pkg
	}
	before := len(pkg.Dependencies)
	pkg.Dependencies.Add(deps...)
	if len(pkg.Dependencies) != before {
		l.markChanged()
	}
}

// InsertRedirect records that from redirected to. Redirects of jsr:
// specifiers are not recorded.
func (l *Lockfile) InsertRedirect(from, to string) {
	if strings.HasPrefix(from, "jsr:") {
		return
	}
	upsert(l, l.content.Redirects, from, to, equalStrings)
}

// RemoveRedirect deletes the redirect of from and returns its target.
func (l *Lockfile) RemoveRedirect(from string) (string, bool) {
	to, ok := l.content.Redirects[from]
	if !ok {
		return "", false
	}
	delete(l.content.Redirects, from)
	l.markChanged()
	return to, true
}

// SetWorkspaceConfig records the requirements the workspace declares. When
// requirements were removed, entries no longer reachable from any remaining
// requirement are pruned.
//
// Adding workspace information to an empty lockfile does not by itself mark
// it changed, so discovering a config file does not create a lockfile.
func (l *Lockfile) SetWorkspaceConfig(opts SetWorkspaceConfigOptions) {
	wasEmpty := l.content.IsEmpty()
	old := l.content.Workspace

	config := newWorkspaceConfig(opts, old)
	if old.Equal(config) {
		return
	}
	l.content.Workspace = config
	if !wasEmpty {
		l.markChanged()
	}

	oldDeps := old.AllDepReqs()
	newDeps := config.AllDepReqs()
	removed := oldDeps.Difference(newDeps)
	if len(removed) == 0 {
		return
	}
	l.log.Debugf("workspace no longer requires %v", removed.Sorted())

	graph := newPackageGraph(
		maps.Clone(l.content.Npm),
		maps.Clone(l.content.Jsr),
		maps.Clone(l.content.Specifiers),
		oldDeps,
		l.log,
	)
	graph.removeRootPackages(removed, newDeps)
	if n := graph.populatePackages(l.content); n > 0 {
		l.log.Debugf("pruned %d lockfile entries", n)
		l.markChanged()
	}
}

// ToJSON returns the lockfile text. While nothing changed and overwrite is
// unset this is the original text; otherwise it is the canonical version 4
// rendering of the content.
func (l *Lockfile) ToJSON() string {
	if !l.hasContentChanged && !l.overwrite {
		return l.originalContent
	}
	if l.content.Version != migrate.LatestVersion {
		panic("lockfile: only version " + migrate.LatestVersion + " content can be printed, have " + l.content.Version)
	}
	return l.content.ToJSON()
}

// Canonicalize marks the lockfile changed when the text it was loaded from is
// not the canonical rendering of its content, so that the next
// ResolveWriteBytes rewrites it. It reports whether a rewrite is pending.
func (l *Lockfile) Canonicalize() bool {
	if l.hasContentChanged {
		return true
	}
	if l.originalContent == l.content.ToJSON() {
		return false
	}
	l.markChanged()
	return true
}

// ResolveWriteBytes returns the bytes to write to disk, or nil when nothing
// needs writing. Returned bytes become the new baseline and the change flag
// is cleared, so the caller must persist them; ideally by writing a sibling
// temporary file and renaming it over the lockfile.
func (l *Lockfile) ResolveWriteBytes() []byte {
	if !l.hasContentChanged && !l.overwrite {
		return nil
	}
	text := l.ToJSON()
	l.hasContentChanged = false
	l.originalContent = text
	return []byte(text)
}
