// Package migrate upgrades lockfile documents written in older schema
// versions to the current one.
//
// Every step is a pure transform over a generic JSON object and the steps are
// chained through a table keyed by the version they read. Supporting a new
// version means adding one transform and one table entry.
package migrate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nightconcept/denolock/internal/core/pkgid"
)

// Object is a decoded JSON object.
type Object = map[string]any

// LatestVersion is the version every migrated document ends up with.
const LatestVersion = "4"

// legacyVersion stands for untagged documents: a bare URL to checksum map.
const legacyVersion = ""

type step struct {
	to    string
	apply func(Object) (Object, error)
}

var steps = map[string]step{
	legacyVersion: {to: "2", apply: transform1To2},
	"2":           {to: "3", apply: transform2To3},
	"3":           {to: LatestVersion, apply: transform3To4},
}

// Version reports the schema version of a decoded document. Untagged
// documents report an empty version.
func Version(obj Object) (string, error) {
	raw, ok := obj["version"]
	if !ok {
		return legacyVersion, nil
	}
	version, ok := raw.(string)
	if !ok {
		return "", &UnsupportedVersionError{Version: fmt.Sprint(raw)}
	}
	return version, nil
}

// Migrate runs the transforms needed to bring obj to LatestVersion. The input
// is never modified.
func Migrate(obj Object) (Object, error) {
	version, err := Version(obj)
	if err != nil {
		return nil, err
	}
	for version != LatestVersion {
		s, ok := steps[version]
		if !ok {
			return nil, &UnsupportedVersionError{Version: version}
		}
		obj, err = s.apply(obj)
		if err != nil {
			return nil, err
		}
		version = s.to
	}
	return obj, nil
}

// transform1To2 wraps a bare URL to checksum map into an envelope.
func transform1To2(obj Object) (Object, error) {
	remote := make(Object, len(obj))
	for url, checksum := range obj {
		if _, ok := checksum.(string); !ok {
			return nil, &ShapeError{Version: legacyVersion, Path: url, Reason: "checksum is not a string"}
		}
		remote[url] = checksum
	}
	return Object{
		"version": "2",
		"remote":  remote,
		"npm": Object{
			"specifiers": Object{},
			"packages":   Object{},
		},
	}, nil
}

// transform2To3 moves npm.specifiers and npm.packages under packages, giving
// the specifiers their npm: scheme.
func transform2To3(obj Object) (Object, error) {
	const version = "2"

	out := maps.Clone(obj)
	out["version"] = "3"

	rawNpm, ok := out["npm"]
	if !ok {
		return out, nil
	}
	delete(out, "npm")
	npm, err := object(rawNpm, version, "npm")
	if err != nil {
		return nil, err
	}

	packages := Object{}
	if rawPackages, ok := out["packages"]; ok {
		existing, err := object(rawPackages, version, "packages")
		if err != nil {
			return nil, err
		}
		packages = maps.Clone(existing)
	}

	if rawPkgs, ok := npm["packages"]; ok {
		if _, err := object(rawPkgs, version, "npm.packages"); err != nil {
			return nil, err
		}
		packages["npm"] = rawPkgs
	}

	if rawSpecs, ok := npm["specifiers"]; ok {
		specs, err := object(rawSpecs, version, "npm.specifiers")
		if err != nil {
			return nil, err
		}
		merged := Object{}
		if existing, ok := packages["specifiers"]; ok {
			existingSpecs, err := object(existing, version, "packages.specifiers")
			if err != nil {
				return nil, err
			}
			merged = maps.Clone(existingSpecs)
		}
		for req, rawID := range specs {
			id, ok := rawID.(string)
			if !ok {
				return nil, &ShapeError{Version: version, Path: "npm.specifiers." + req, Reason: "resolved id is not a string"}
			}
			merged[pkgid.NpmScheme+req] = pkgid.NpmScheme + id
		}
		if len(merged) > 0 {
			packages["specifiers"] = merged
		}
	}

	out["packages"] = packages
	return out, nil
}

// transform3To4 flattens packages.{specifiers,jsr,npm} to the top level and
// rewrites npm dependency objects into the short array form.
func transform3To4(obj Object) (Object, error) {
	const version = "3"

	out := maps.Clone(obj)
	out["version"] = LatestVersion

	rawPackages, ok := out["packages"]
	if !ok {
		return out, nil
	}
	delete(out, "packages")
	packages, err := object(rawPackages, version, "packages")
	if err != nil {
		return nil, err
	}

	if specs, ok := packages["specifiers"]; ok {
		if _, err := object(specs, version, "packages.specifiers"); err != nil {
			return nil, err
		}
		out["specifiers"] = specs
	}
	if jsr, ok := packages["jsr"]; ok {
		if _, err := object(jsr, version, "packages.jsr"); err != nil {
			return nil, err
		}
		out["jsr"] = jsr
	}
	if rawNpm, ok := packages["npm"]; ok {
		npm, err := object(rawNpm, version, "packages.npm")
		if err != nil {
			return nil, err
		}
		rewritten, err := shortenNpmDependencies(npm)
		if err != nil {
			return nil, err
		}
		out["npm"] = rewritten
	}
	return out, nil
}

func shortenNpmDependencies(npm Object) (Object, error) {
	const version = "3"

	sole := pkgid.SoleVersions(slices.Collect(maps.Keys(npm)))
	out := make(Object, len(npm))
	for id, rawPkg := range npm {
		path := "packages.npm." + id
		pkg, err := object(rawPkg, version, path)
		if err != nil {
			return nil, err
		}
		rawDeps, ok := pkg["dependencies"]
		if !ok {
			out[id] = pkg
			continue
		}
		deps, ok := rawDeps.(Object)
		if !ok {
			// already in array form
			out[id] = pkg
			continue
		}
		list := make([]string, 0, len(deps))
		for key, rawDepID := range deps {
			depID, ok := rawDepID.(string)
			if !ok {
				return nil, &ShapeError{Version: version, Path: path + ".dependencies." + key, Reason: "dependency id is not a string"}
			}
			list = append(list, pkgid.NpmDependency(key, depID, sole))
		}
		slices.Sort(list)

		values := make([]any, len(list))
		for i, dep := range list {
			values[i] = dep
		}
		pkg = maps.Clone(pkg)
		pkg["dependencies"] = values
		out[id] = pkg
	}
	return out, nil
}

func object(value any, version, path string) (Object, error) {
	obj, ok := value.(Object)
	if !ok {
		return nil, &ShapeError{Version: version, Path: path, Reason: "expected an object"}
	}
	return obj, nil
}
