package errors

import (
	"fmt"
	"testing"
)

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"plain registered error": {
			err:      ErrNotFound,
			wantCode: ErrNotFound.ABCICode(),
			wantLog:  "not found",
		},
		"wrapped registered error": {
			err:      Wrap(ErrUnauthorized, "voter authority"),
			wantCode: ErrUnauthorized.ABCICode(),
			wantLog:  "voter authority: unauthorized",
		},
		"nil is success": {
			err:      nil,
			wantCode: SuccessABCICode,
			wantLog:  "",
		},
		"stdlib errors are redacted": {
			err:      fmt.Errorf("secret path /var/lib"),
			wantCode: internalABCICode,
			wantLog:  internalABCILog,
		},
		"stdlib errors are shown in debug": {
			err:      fmt.Errorf("secret path /var/lib"),
			debug:    true,
			wantCode: internalABCICode,
			wantLog:  "secret path /var/lib",
		},
		"custom coder": {
			err:      customErr{},
			wantCode: 999,
			wantLog:  "custom",
		},
		"multi error uses the first code": {
			err:      Append(ErrEmpty, ErrExpired),
			wantCode: ErrEmpty.ABCICode(),
			wantLog:  Append(ErrEmpty, ErrExpired).Error(),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestABCIErrorRoundTrip(t *testing.T) {
	code, log := ABCIInfo(Wrap(ErrExpired, "too late"), false)
	err := ABCIError(code, log)
	if !ErrExpired.Is(err) {
		t.Fatalf("want expired error, got %v", err)
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(fmt.Errorf("internal"), false); err.Error() != internalABCILog {
		t.Fatalf("not redacted: %v", err)
	}
	if err := Redact(ErrEmpty, false); !ErrEmpty.Is(err) {
		t.Fatalf("registered error redacted: %v", err)
	}
	if err := Redact(Wrap(ErrPanic, "oops"), false); err.Error() != internalABCILog {
		t.Fatalf("panic not redacted: %v", err)
	}
}

type customErr struct{}

func (customErr) ABCICode() uint32 { return 999 }

func (customErr) Error() string { return "custom" }
