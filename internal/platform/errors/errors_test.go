package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestCodeOfAndWrapping(t *testing.T) {
	base := stderrs.New("socket closed")
	err := Wrapf(base, ErrorCodeUnavailable, "fetch failed")

	if got := CodeOf(err); got != ErrorCodeUnavailable {
		t.Fatalf("code = %v", got)
	}
	if Root(err) != base {
		t.Fatalf("root = %v", Root(err))
	}
	if !stderrs.Is(err, base) {
		t.Fatal("wrapped cause must survive errors.Is")
	}
	if got := CodeOf(stderrs.New("naked")); got != ErrorCodeUnknown {
		t.Fatalf("naked error code = %v", got)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Unavailablef("upstream down"), true},
		{Newf(ErrorCodeTooManyRequests, "throttled"), true},
		{Maintenancef("scheduled downtime"), false},
		{Unauthorizedf("bad token"), false},
		{NotFoundf("nope"), false},
		{PanicErrf("boom"), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestHTTPMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeMaintenance, http.StatusServiceUnavailable},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.code); got != tc.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWireFrom(t *testing.T) {
	w := WireFrom(WithField(Newf(ErrorCodeValidation, "bad payload"), "state"))
	if w.Code != ErrorCodeValidation || w.Field != "state" || w.Message != "bad payload" {
		t.Fatalf("wire = %+v", w)
	}

	w = WireFrom(stderrs.New("opaque"))
	if w.Code != ErrorCodeUnknown || w.Message != "opaque" {
		t.Fatalf("fallback wire = %+v", w)
	}

	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("nil wire = %+v", w)
	}
}

func TestWrapIf(t *testing.T) {
	if WrapIf(nil, ErrorCodeDB, "noop") != nil {
		t.Fatal("WrapIf(nil) must be nil")
	}
	err := WrapIf(stderrs.New("locked"), ErrorCodeDB, "write failed")
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("code = %v", CodeOf(err))
	}
}
