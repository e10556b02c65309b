package lockfile

import (
	"errors"
	"fmt"
)

// ErrEmpty is the reason reported for a lockfile that holds only whitespace.
//
//nolint:staticcheck // the wording is shown to users as is
var ErrEmpty = errors.New("Unable to read lockfile. Lockfile was empty")

// Kinds of DeserializationError.
var (
	ErrMalformedSection            = errors.New("malformed section")
	ErrInvalidNpmPackageID         = errors.New("invalid npm package id")
	ErrInvalidNpmPackageDependency = errors.New("invalid npm package dependency")
	ErrMissingPackage              = errors.New("missing package")
	ErrInvalidPackageSpecifier     = errors.New("invalid package specifier")
	ErrUnresolvedJsrDependency     = errors.New("unresolved jsr dependency")
)

// Error is returned when a lockfile cannot be loaded. It carries the
// lockfile's path for display; Reason holds the underlying failure.
type Error struct {
	Filename string
	Reason   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at '%s'.", e.Reason, e.Filename)
}

func (e *Error) Unwrap() error {
	return e.Reason
}

// ParseError reports lockfile text that is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Unable to parse contents of lockfile (%v)", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeserializationError reports version 4 content that cannot be turned into
// a Content. Kind is one of the Err* sentinels of this package and Value is
// the offending section, id or requirement.
type DeserializationError struct {
	Kind  error
	Value string
	Err   error
}

func (e *DeserializationError) Error() string {
	msg := fmt.Sprintf("Unable to deserialize lockfile: %v '%s'", e.Kind, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

var errNotAnObject = errors.New("lockfile is not a JSON object")
