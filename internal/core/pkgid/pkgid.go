// Package pkgid splits and formats the serialized package ids and package
// requirements stored in a lockfile.
package pkgid

import "strings"

const (
	// NpmScheme prefixes npm requirements and resolved ids in the specifiers section.
	NpmScheme = "npm:"
	// JsrScheme prefixes jsr requirements and resolved ids in the specifiers section.
	JsrScheme = "jsr:"
)

// SplitNv splits a resolved id such as "chalk@5.0.0" or "@types/node@20.1.0"
// into its name and version. The first character is skipped when looking for
// the separator so scoped names keep their leading '@'.
func SplitNv(id string) (name, version string, ok bool) {
	if id == "" {
		return "", "", false
	}
	at := strings.IndexByte(id[1:], '@')
	if at < 0 {
		return "", "", false
	}
	at++
	return id[:at], id[at+1:], true
}

// SplitReq splits a requirement such as "jsr:@std/path@^1.0" into its name
// ("jsr:@std/path") and version requirement ("^1.0"). A requirement without a
// version, like "npm:jsonc-parser", returns the whole string as the name and
// hasReq=false. Strings shorter than a scheme plus one character are invalid.
func SplitReq(req string) (name, versionReq string, hasReq, ok bool) {
	// len("jsr:@") and len("npm:@")
	const prefixLen = 5
	if len(req) < prefixLen {
		return "", "", false, false
	}
	at := strings.IndexByte(req[prefixLen:], '@')
	if at < 0 {
		return req, "", false, true
	}
	at += prefixLen
	return req[:at], req[at+1:], true, true
}

// Resolved reports which section a specifiers value points into and the id
// inside that section. Values with an unknown scheme return an empty scheme.
func Resolved(value string) (scheme, id string) {
	switch {
	case strings.HasPrefix(value, NpmScheme):
		return NpmScheme, value[len(NpmScheme):]
	case strings.HasPrefix(value, JsrScheme):
		return JsrScheme, value[len(JsrScheme):]
	default:
		return "", value
	}
}

// SoleVersions maps each package name among the given npm ids to its
// version when the name is locked at exactly one version, and to "" when it
// appears with several.
func SoleVersions(ids []string) map[string]string {
	sole := make(map[string]string, len(ids))
	for _, id := range ids {
		name, version, ok := SplitNv(id)
		if !ok {
			continue
		}
		if _, dup := sole[name]; dup {
			sole[name] = ""
			continue
		}
		sole[name] = version
	}
	return sole
}

// NpmDependency formats one npm dependency edge in the short array form used
// by version 4 lockfiles:
//
//	name              id is the only version of name in the lockfile
//	name@version      name has several versions, none, or another one
//	key@npm:id        the dependency is an alias for another package
//
// A bare name is read back as the sole locked version, so it is only written
// when that version is the one the dependency points at.
func NpmDependency(key, id string, sole map[string]string) string {
	name, version, ok := SplitNv(id)
	if !ok {
		return id
	}
	if name != key {
		return key + "@" + NpmScheme + id
	}
	if locked := sole[name]; locked == "" || locked != version {
		return name + "@" + version
	}
	return name
}
