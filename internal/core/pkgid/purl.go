package pkgid

import (
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// PackageURL renders a locked package as a package URL, e.g.
// "pkg:npm/chalk@5.0.0". Scoped names keep their scope as the namespace.
// It returns false for ids that do not split into name and version.
func PackageURL(purlType, id string) (string, bool) {
	name, version, ok := SplitNv(id)
	if !ok {
		return "", false
	}
	namespace := ""
	if scope, rest, scoped := strings.Cut(name, "/"); scoped && strings.HasPrefix(scope, "@") {
		namespace, name = scope, rest
	}
	return packageurl.NewPackageURL(purlType, namespace, name, version, nil, "").ToString(), true
}
