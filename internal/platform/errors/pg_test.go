package errors

import (
	stderrs "errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDBErrorCodeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sqlstate string
		want     ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"23502", ErrorCodeValidation},
		{"40001", ErrorCodeDB},
		{"57P03", ErrorCodeUnavailable},
		{"XX000", ErrorCodeDB},
	}
	for _, c := range cases {
		code, ok := DBErrorCode(&pgconn.PgError{Code: c.sqlstate})
		if !ok || code != c.want {
			t.Fatalf("DBErrorCode(%s) = (%d,%v), want %d", c.sqlstate, code, ok, c.want)
		}
	}

	if _, ok := DBErrorCode(stderrs.New("not a pg error")); ok {
		t.Fatal("foreign errors should not map")
	}
}

func TestFromPostgresWrapsThroughChain(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "findings_domain_query_ts_category_source_key"}
	err := FromPostgres(pgErr, "insert findings")

	if !IsDuplicateKey(err) {
		t.Fatal("should detect duplicate key through wrapping")
	}
	if got := CodeOf(err); got != ErrorCodeDuplicateKey {
		t.Fatalf("code: got %d", got)
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	if !IsRetryable(&pgconn.PgError{Code: "40P01"}) {
		t.Fatal("deadlock should retry")
	}
	if IsRetryable(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("duplicate key should not retry")
	}
	if !IsRetryable(stderrs.New("commit unexpectedly resulted in rollback")) {
		t.Fatal("commit rollback text should retry")
	}
}
