// Package pmerr defines the error vocabulary returned by the resolver,
// planner, and applier. Every operation failure is reported as a *Error
// carrying a Kind a caller can switch on, grounded on the way
// restore/errors.go's NuGetError pairs a stable code with a formatted
// message.
package pmerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a package-management failure.
type Kind string

const (
	// PackageAlreadyInstalled is returned by install when the exact
	// identity is already present in the manifest.
	PackageAlreadyInstalled Kind = "PackageAlreadyInstalled"
	// PackageNotFound is returned when a package id does not exist on
	// any configured source.
	PackageNotFound Kind = "PackageNotFound"
	// NoLatestVersion is returned when a source has the package id but
	// no version satisfies the requested policy.
	NoLatestVersion Kind = "NoLatestVersion"
	// PackageHasDependents is returned by uninstall when other
	// installed packages still depend on the target and removal was
	// not forced.
	PackageHasDependents Kind = "PackageHasDependents"
	// DependencyConflict is returned when resolution cannot find a
	// single version of some package that satisfies every constraint.
	DependencyConflict Kind = "DependencyConflict"
	// UnexpectedDowngrade is returned when a resolution would lower the
	// version of an already-installed package without that package
	// being the explicit install target.
	UnexpectedDowngrade Kind = "UnexpectedDowngrade"
	// NoCompatibleItems is returned when a package has no content
	// compatible with the project's target framework.
	NoCompatibleItems Kind = "NoCompatibleItems"
	// VersionNotSatisfied is returned when a pinned dependency range
	// rejects every version a source offers.
	VersionNotSatisfied Kind = "VersionNotSatisfied"
	// ManifestParseError is returned when packages.config fails to
	// parse or fails schema validation.
	ManifestParseError Kind = "ManifestParseError"
	// SourceUnavailable is returned when every configured source failed
	// or has its circuit breaker open.
	SourceUnavailable Kind = "SourceUnavailable"
	// Cancelled is returned when the operation's context was cancelled
	// or timed out before completion.
	Cancelled Kind = "Cancelled"
)

// Error is the concrete error type returned by package-management
// operations. It carries enough structure for callers to branch on Kind via
// errors.Is, while Error() renders a human-readable message naming the
// offending package.
type Error struct {
	Kind      Kind
	PackageID string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.PackageID != "" {
		return fmt.Sprintf("%s: %s", e.PackageID, e.Message)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, pmerr.New(pmerr.PackageNotFound, "", "")), or
// compare against a Kind directly with the package-level Is(err, kind).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds an *Error with no wrapped cause.
func New(kind Kind, packageID, message string) *Error {
	return &Error{Kind: kind, PackageID: packageID, Message: message}
}

// Wrap builds an *Error that chains a lower-level cause.
func Wrap(kind Kind, packageID, message string, cause error) *Error {
	return &Error{Kind: kind, PackageID: packageID, Message: message, Cause: cause}
}

// Is reports whether err is a *pmerr.Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// FormatError renders err with optional ANSI coloring for the error kind,
// matching restore/errors.go's colorize/plain split for TTY vs piped CLI
// output.
func FormatError(err error, colorize bool) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if !colorize {
		return fmt.Sprintf("error %s: %s", e.Kind, e.Error())
	}
	const (
		red   = "\033[1;31m"
		reset = "\033[0m"
	)
	return fmt.Sprintf("%serror %s%s: %s", red, e.Kind, reset, e.Error())
}
