package errs_test

import (
	"errors"
	"testing"

	"github.com/kitlith/brsar/errs"
)

func TestKindString(t *testing.T) {
	if got := errs.BadMagic.String(); got != "BadMagic" {
		t.Fatalf("got %q, want BadMagic", got)
	}
	if got := errs.Kind(999).String(); got != "Kind(999)" {
		t.Fatalf("got %q, want Kind(999)", got)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("short read")
	e := errs.Wrap(errs.Io, cause, "reading u32")
	if !errors.Is(e, cause) {
		t.Fatal("errors.Is: want wrapped cause reachable through Unwrap")
	}
	var target *errs.Error
	if !errors.As(e, &target) || target.Kind != errs.Io {
		t.Fatalf("errors.As: got %+v, want Kind Io", target)
	}
}

func TestNewHasNoCause(t *testing.T) {
	e := errs.New(errs.NotFound, "key %q", "boom")
	if e.Err != nil {
		t.Fatalf("New: want nil Err, got %v", e.Err)
	}
	if e.Msg != `key "boom"` {
		t.Fatalf("New: got Msg %q", e.Msg)
	}
}
