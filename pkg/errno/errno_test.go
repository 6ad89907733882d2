package errno

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMakeCodeDecode(t *testing.T) {
	code := MakeCode(ServiceAPI, CategoryNotFound, 1)
	if code != 404001 {
		t.Fatalf("MakeCode() = %d, want 404001", code)
	}

	service, category, seq := Decode(code)
	if service != ServiceAPI || category != CategoryNotFound || seq != 1 {
		t.Errorf("Decode() = (%d, %d, %d)", service, category, seq)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() did not panic on duplicate code")
		}
	}()
	Register(&Errno{Code: ErrBadRequest.Code, HTTP: http.StatusBadRequest, MessageEN: "dup"})
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrDatabase.WithCause(cause)

	if !errors.Is(err, ErrDatabase) {
		t.Error("wrapped errno no longer matches its base")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable via errors.Is")
	}
	// The base registered errno must stay untouched.
	if ErrDatabase.cause != nil {
		t.Error("WithCause mutated the registered errno")
	}
}

func TestWithMessage(t *testing.T) {
	err := ErrInvalidParam.WithMessage("cik %q is not numeric", "abc")
	if err.MessageEN != `cik "abc" is not numeric` {
		t.Errorf("unexpected message: %s", err.MessageEN)
	}
	if err.Code != ErrInvalidParam.Code {
		t.Error("WithMessage changed the code")
	}
	if ErrInvalidParam.MessageEN != "Invalid parameter" {
		t.Error("WithMessage mutated the registered errno")
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(nil); got != OK {
		t.Errorf("FromError(nil) = %v, want OK", got)
	}

	if got := FromError(ErrJobNotFound); got.Code != ErrJobNotFound.Code {
		t.Errorf("FromError(errno) = %v", got)
	}

	wrapped := fmt.Errorf("handler: %w", ErrFilingNotFound)
	if got := FromError(wrapped); got.Code != ErrFilingNotFound.Code {
		t.Errorf("FromError(wrapped errno) = %v", got)
	}

	plain := errors.New("boom")
	got := FromError(plain)
	if got.Code != ErrInternal.Code {
		t.Errorf("FromError(plain) code = %d, want ErrInternal", got.Code)
	}
	if !errors.Is(got, plain) {
		t.Error("original error lost by FromError")
	}
}
