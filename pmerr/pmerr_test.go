package pmerr

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := New(PackageNotFound, "Newtonsoft.Json", "not found on any source")
	want := "Newtonsoft.Json: not found on any source"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_Error_NoPackageID(t *testing.T) {
	err := New(Cancelled, "", "operation cancelled")
	if got := err.Error(); got != "operation cancelled" {
		t.Errorf("Error() = %q, want %q", got, "operation cancelled")
	}
}

func TestErrorsIs_MatchesByKind(t *testing.T) {
	err := Wrap(SourceUnavailable, "Foo", "circuit open", errors.New("breaker open"))
	if !errors.Is(err, New(SourceUnavailable, "", "")) {
		t.Error("expected errors.Is to match on Kind")
	}
	if errors.Is(err, New(PackageNotFound, "", "")) {
		t.Error("expected errors.Is to not match a different Kind")
	}
}

func TestIs_Helper(t *testing.T) {
	err := New(UnexpectedDowngrade, "Foo", "would downgrade 2.0.0 to 1.0.0")
	if !Is(err, UnexpectedDowngrade) {
		t.Error("expected Is to report true for matching Kind")
	}
	if Is(err, DependencyConflict) {
		t.Error("expected Is to report false for non-matching Kind")
	}
	if Is(errors.New("plain error"), UnexpectedDowngrade) {
		t.Error("expected Is to report false for a non-*Error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := Wrap(SourceUnavailable, "Foo", "source unreachable", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to see through Unwrap to the cause")
	}
}

func TestFormatError_PlainAndColorized(t *testing.T) {
	err := New(PackageAlreadyInstalled, "Foo", "version 1.0.0 is already installed")

	plain := FormatError(err, false)
	if want := "error PackageAlreadyInstalled: Foo: version 1.0.0 is already installed"; plain != want {
		t.Errorf("FormatError(false) = %q, want %q", plain, want)
	}

	colorized := FormatError(err, true)
	if colorized == plain {
		t.Error("expected colorized output to differ from plain output")
	}
}

func TestFormatError_NonPmerr(t *testing.T) {
	plain := errors.New("boom")
	if got := FormatError(plain, true); got != "boom" {
		t.Errorf("FormatError() = %q, want %q", got, "boom")
	}
}
