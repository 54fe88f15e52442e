package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_Classified(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Validationf("bad input"), KindValidation},
		{NotFoundf("task %d not found", 7), KindNotFound},
		{Forbiddenf("not your department"), KindForbidden},
		{Conflictf("already accepted"), KindConflict},
		{Internalf(errors.New("disk"), "save failed"), KindInternal},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("depttask: accept: %w", Conflictf("task is not assigned"))
	if got := KindOf(err); got != KindConflict {
		t.Errorf("KindOf = %v, want %v", got, KindConflict)
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf = %v, want %v", got, KindInternal)
	}
}

func TestIs(t *testing.T) {
	err := NotFoundf("missing")
	if !Is(err, KindNotFound) {
		t.Error("expected Is to match KindNotFound")
	}
	if Is(err, KindConflict) {
		t.Error("did not expect Is to match KindConflict")
	}
	if Is(nil, KindInternal) {
		t.Error("nil error must not match any kind")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.kind.HTTPStatus(); got != c.want {
			t.Errorf("%v.HTTPStatus() = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestError_Message(t *testing.T) {
	err := Internalf(errors.New("dial tcp"), "db unreachable")
	if err.Error() != "db unreachable: dial tcp" {
		t.Errorf("Error() = %q", err.Error())
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error in chain")
	}
	if !errors.Is(err, e.Err) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}
