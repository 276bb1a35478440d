package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("row scan failed")
	err := Wrap(CodeDependency, cause, "loading stock record")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to match cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	t.Parallel()

	inner := New(CodeInsufficientStock, "only 2 available")
	outer := fmt.Errorf("reserve: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through wrap chain")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestMetadataForDomainCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   Code
		status int
	}{
		{CodeInsufficientStock, http.StatusConflict},
		{CodeInvalidRelease, http.StatusUnprocessableEntity},
		{CodeInvalidReduction, http.StatusUnprocessableEntity},
		{CodeNotTracked, http.StatusUnprocessableEntity},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "quantity must be positive").WithDetails(map[string]any{"quantity": -1})
	if err.Details() == nil {
		t.Fatal("expected details to be set")
	}
}
