// Package hasher computes the checksums recorded for remote modules.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Checksum returns the lowercase hex SHA-256 of content, the form stored in
// the remote section of a lockfile.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ChecksumMismatchError reports content that does not match its recorded
// checksum.
type ChecksumMismatchError struct {
	Specifier string
	Expected  string
	Actual    string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: lockfile has %s, content hashes to %s", e.Specifier, e.Expected, e.Actual)
}

// Verify checks content against the checksum recorded for specifier.
func Verify(specifier string, content []byte, expected string) error {
	actual := Checksum(content)
	if !strings.EqualFold(actual, expected) {
		return &ChecksumMismatchError{Specifier: specifier, Expected: expected, Actual: actual}
	}
	return nil
}
