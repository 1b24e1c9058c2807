package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrInvalidModel,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrInvalidInput, "bad"),
			wantIs: false,
		},
		"pkg errors wrap is understood": {
			a:      ErrOverflow,
			b:      errors.Wrap(Wrap(ErrOverflow, "inner"), "outer"),
			wantIs: true,
		},
		"field error is unwrapped": {
			a:      ErrEmpty,
			b:      Field("Admin", ErrEmpty, "required"),
			wantIs: true,
		},
		"one of many appended errors matches": {
			a:      ErrExpired,
			b:      Append(ErrEmpty, Wrap(ErrExpired, "late")),
			wantIs: true,
		},
		"none of many appended errors matches": {
			a:      ErrExpired,
			b:      Append(ErrEmpty, ErrInvalidInput),
			wantIs: false,
		},
		"nil is not an error kind": {
			a:      ErrNotFound,
			b:      nil,
			wantIs: false,
		},
		"nil kind matches nil error": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"stdlib error is not a registered error": {
			a:      ErrHuman,
			b:      stdlib.New("human"),
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result: %v", got)
			}
		})
	}
}

func TestWrapEmpty(t *testing.T) {
	if err := Wrap(nil, "wrapping <nil>"); err != nil {
		t.Fatal(err)
	}
	if err := Field("Amount", nil, "nothing"); err != nil {
		t.Fatal(err)
	}
	if err := Append(nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrapf(ErrNotFound, "distribution %d", 7)
	if got, want := err.Error(), "distribution 7: not found"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if full := fmt.Sprintf("%+v", err); !strings.Contains(full, "errors_test.go") {
		t.Fatalf("stack trace not included: %s", full)
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := run()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %v", err)
	}
}

func TestRegisterDuplicateCode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("registering a used code must panic")
		}
	}()
	Register(ErrNotFound.ABCICode(), "another not found")
}
