package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", InvalidErr("bad"), http.StatusBadRequest},
		{"precondition", PreconditionErr("not completed"), http.StatusBadRequest},
		{"unauthenticated", UnauthenticatedErr("login"), http.StatusUnauthorized},
		{"denied", PermissionDeniedErr("admins only"), http.StatusForbidden},
		{"exhausted", ResourceExhaustedErr("slow down"), http.StatusTooManyRequests},
		{"not found", NotFoundErr("Not found"), http.StatusNotFound},
		{"unimplemented", UnimplementedErr("Method not allowed"), http.StatusMethodNotAllowed},
		{"internal", Wrap(errors.New("boom"), ""), http.StatusInternalServerError},
		{"untagged", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped tag", fmt.Errorf("ctx: %w", PreconditionErr("x")), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessageHidesCause(t *testing.T) {
	cause := errors.New("paypal token error: invalid_client")
	err := Wrap(cause, "Payment processing failed")

	if got := PublicMessage(err); got != "Payment processing failed" {
		t.Errorf("PublicMessage() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap should keep the cause reachable through errors.Is")
	}
	if got := PublicMessage(errors.New("secret detail")); got != defaultPublicMsg {
		t.Errorf("untagged PublicMessage() = %q", got)
	}
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(InvalidErr("x")) != InvalidArgument {
		t.Error("InvalidErr kind")
	}
	if KindOf(errors.New("x")) != Internal {
		t.Error("untagged errors should be internal")
	}
}
