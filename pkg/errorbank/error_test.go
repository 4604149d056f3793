package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestKindMappings(t *testing.T) {
	cases := []struct {
		err       *AppError
		status    int
		code      codes.Code
		retryable bool
	}{
		{BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument, false},
		{Unauthorized("who"), http.StatusUnauthorized, codes.Unauthenticated, false},
		{NotFound("gone"), http.StatusNotFound, codes.NotFound, false},
		{Upstream("down"), http.StatusBadGateway, codes.Unavailable, true},
		{Internal("boom"), http.StatusInternalServerError, codes.Internal, false},
	}
	for _, tc := range cases {
		if got := tc.err.StatusCode(); got != tc.status {
			t.Errorf("%s: status %d, want %d", tc.err.Kind(), got, tc.status)
		}
		if got := tc.err.GRPCCode(); got != tc.code {
			t.Errorf("%s: grpc code %s, want %s", tc.err.Kind(), got, tc.code)
		}
		if got := tc.err.Retryable(); got != tc.retryable {
			t.Errorf("%s: retryable %v, want %v", tc.err.Kind(), got, tc.retryable)
		}
	}
}

func TestFromWrapsPlainErrors(t *testing.T) {
	cause := errors.New("socket closed")
	appErr := From(cause)
	if appErr.Kind() != KindInternal {
		t.Fatalf("kind = %s, want internal", appErr.Kind())
	}
	if !errors.Is(appErr, cause) {
		t.Fatal("expected cause to be unwrapped")
	}

	wrapped := fmt.Errorf("load: %w", Upstream("api down"))
	if From(wrapped).Kind() != KindUpstream {
		t.Fatal("expected nested AppError to be found")
	}
	if !Is(wrapped, KindUpstream) || Is(wrapped, KindNotFound) {
		t.Fatal("Is did not match kind")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Upstream("Failed to load orders", WithCause(errors.New("500 Internal Server Error")))
	if got, want := err.Error(), "Failed to load orders: 500 Internal Server Error"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if err.Message() != "Failed to load orders" {
		t.Fatalf("Message() = %q", err.Message())
	}
}
