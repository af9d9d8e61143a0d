package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		NotFound:           http.StatusNotFound,
		BusinessRule:       http.StatusBadRequest,
		Validation:         http.StatusBadRequest,
		Unauthorized:       http.StatusUnauthorized,
		AccessDenied:       http.StatusForbidden,
		MethodNotSupported: http.StatusNotFound,
		Internal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Fatalf("HTTPStatus(%s)=%d, want %d", kind, got, want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := BusinessRulef("supplier has active orders")
	wrapped := fmt.Errorf("delete supplier: %w", base)
	if KindOf(wrapped) != BusinessRule {
		t.Fatalf("expected business rule, got %s", KindOf(wrapped))
	}
	if !errors.Is(wrapped, ErrBusinessRule) {
		t.Fatalf("errors.Is should match business rule sentinel")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("errors.Is matched wrong kind")
	}
	if KindOf(errors.New("boom")) != Internal {
		t.Fatalf("untyped error should be internal")
	}
}

func TestPublicMessageHidesInternal(t *testing.T) {
	if got := PublicMessage(errors.New("pq: connection refused")); got != "internal error" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := PublicMessage(NotFoundf("product %d not found", 7)); got != "product 7 not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestViolationsJoin(t *testing.T) {
	var v Violations
	if v.Err() != nil {
		t.Fatalf("empty violations must not produce an error")
	}
	v.Add("name", "must not be blank")
	v.Check(false, "quantity", "must be greater than 0")
	v.Check(true, "ignored", "never recorded")

	err := v.Err()
	if KindOf(err) != Validation {
		t.Fatalf("expected validation kind, got %s", KindOf(err))
	}
	want := "name: must not be blank, quantity: must be greater than 0"
	if err.Error() != want {
		t.Fatalf("message=%q, want %q", err.Error(), want)
	}
}
