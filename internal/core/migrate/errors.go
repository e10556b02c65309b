package migrate

import "fmt"

// UnsupportedVersionError is returned for a version tag the pipeline has no
// transform for, including tags newer than LatestVersion.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("Unsupported lockfile version '%s'. Try upgrading Deno or recreating the lockfile", e.Version)
}

// ShapeError is returned when a document does not have the shape its
// declared version requires.
type ShapeError struct {
	// Version is the schema version the document was being read as.
	Version string
	// Path names the offending key, e.g. "packages.npm".
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("Unable to migrate version %s lockfile: %s at %q", displayVersion(e.Version), e.Reason, e.Path)
}

func displayVersion(version string) string {
	if version == legacyVersion {
		return "1"
	}
	return version
}
