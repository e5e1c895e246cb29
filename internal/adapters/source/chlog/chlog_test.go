package chlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/store"
	"gravitywatch/internal/services/pipeline/domain"
)

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	*(dest[0].(*time.Time)) = row[0].(time.Time)
	*(dest[1].(*string)) = row[1].(string)
	*(dest[2].(*string)) = row[2].(string)
	*(dest[3].(*string)) = row[3].(string)
	*(dest[4].(*string)) = row[4].(string)
	*(dest[5].(*string)) = row[5].(string)
	return nil
}

func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }

type fakeCH struct {
	sql  string
	args []any
	rows store.Rows
	err  error
}

func (c *fakeCH) Insert(context.Context, string, [][]any) error { return nil }

func (c *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	c.sql, c.args = sql, args
	return c.rows, c.err
}

func (c *fakeCH) Close() error { return nil }

func TestFetchMapsRows(t *testing.T) {
	t.Parallel()

	ts := time.Unix(100, 0).UTC()
	ch := &fakeCH{rows: &fakeRows{data: [][]any{
		{ts, "10.0.0.1", "Ads.Test", "A", "forwarded", "1.1.1.1"},
		{ts.Add(time.Second), "10.0.0.2", "", "A", "cached", ""},
	}}}

	c := New(ch, Config{Table: "dns_queries", Limit: 500})
	got, err := c.Fetch(context.Background(), time.Unix(50, 0))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("records: %v", got)
	}
	want := domain.QueryRecord{Timestamp: ts, Client: "10.0.0.1", Domain: "ads.test", Type: "A", Status: "forwarded", Upstream: "1.1.1.1"}
	if got[0] != want {
		t.Fatalf("record: %+v", got[0])
	}
	if !strings.Contains(ch.sql, "FROM dns_queries") || !strings.Contains(ch.sql, "LIMIT 500") {
		t.Fatalf("sql: %s", ch.sql)
	}
}

func TestFetchQueryErrorIsSourceUnavailable(t *testing.T) {
	t.Parallel()

	c := New(&fakeCH{err: errors.New("dial tcp: refused")}, Config{})
	_, err := c.Fetch(context.Background(), time.Unix(0, 0))
	if !perr.IsCode(err, perr.ErrorCodeSourceUnavailable) {
		t.Fatalf("err: %v", err)
	}
}
