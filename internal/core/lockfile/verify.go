package lockfile

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/nightconcept/denolock/internal/core/pkgid"
)

// ErrInconsistent is wrapped by every problem Verify reports.
var ErrInconsistent = errors.New("inconsistent lockfile")

// Verify checks that every specifier and dependency points at a package
// present in the lockfile. All problems are reported together, in a stable
// order.
func (c *Content) Verify() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInconsistent}, args...)...))
	}

	for _, req := range slices.Sorted(maps.Keys(c.Specifiers)) {
		id := c.Specifiers[req]
		if !c.hasResolved(id) {
			report("specifier '%s' resolves to missing package '%s'", req, id)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(c.Npm)) {
		deps := c.Npm[id].Dependencies
		for _, name := range slices.Sorted(maps.Keys(deps)) {
			if _, ok := c.Npm[deps[name]]; !ok {
				report("npm package '%s' depends on missing package '%s'", id, deps[name])
			}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(c.Jsr)) {
		for _, req := range c.Jsr[id].Dependencies.Sorted() {
			resolved, ok := c.Specifiers[req]
			switch {
			case !ok:
				report("jsr package '%s' uses requirement '%s' without a specifier", id, req)
			case !c.hasResolved(resolved):
				report("jsr package '%s' uses requirement '%s' resolving to missing package '%s'", id, req, resolved)
			}
		}
	}

	return errors.Join(errs...)
}

func (c *Content) hasResolved(value string) bool {
	scheme, id := pkgid.Resolved(value)
	switch scheme {
	case pkgid.NpmScheme:
		_, ok := c.Npm[id]
		return ok
	case pkgid.JsrScheme:
		_, ok := c.Jsr[id]
		return ok
	default:
		return false
	}
}
