package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("dial tcp: connection refused")
	err := Wrap(cause, ErrorCodeSourceUnavailable, "pihole fetch failed")

	if !stderrs.Is(err, cause) {
		t.Fatal("wrapped cause should survive errors.Is")
	}
	if got := CodeOf(err); got != ErrorCodeSourceUnavailable {
		t.Fatalf("code: got %d", got)
	}
	if Root(err) != cause {
		t.Fatalf("root: got %v", Root(err))
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeSourceUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeClassification, http.StatusBadGateway},
		{ErrorCodeStateWrite, http.StatusInternalServerError},
		{ErrorCodeNotification, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%d) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestWireFromForeignError(t *testing.T) {
	t.Parallel()

	w := WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("got %+v", w)
	}
}

func TestWithOpAndFieldCopyOnWrite(t *testing.T) {
	t.Parallel()

	base := New(ErrorCodeValidation, "bad category")
	withField := WithField(base, "category")

	be, _ := As(base)
	fe, _ := As(withField)
	if be.Field() != "" {
		t.Fatal("original mutated")
	}
	if fe.Field() != "category" {
		t.Fatalf("field: got %q", fe.Field())
	}

	withOp := WithOp(withField, "findings.persist")
	oe, _ := As(withOp)
	if oe.Op() != "findings.persist" {
		t.Fatalf("op: got %q", oe.Op())
	}
}

func TestRetryableByCode(t *testing.T) {
	t.Parallel()

	if !Retryable(SourceUnavailablef("pihole 503")) {
		t.Fatal("source unavailable should be retryable")
	}
	if !Retryable(New(ErrorCodeTooManyRequests, "oracle 429")) {
		t.Fatal("rate limit should be retryable")
	}
	if Retryable(Classificationf("malformed verdict")) {
		t.Fatal("malformed verdict is not retryable")
	}
	if Retryable(nil) {
		t.Fatal("nil is not retryable")
	}
}
