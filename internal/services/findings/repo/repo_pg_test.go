package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"gravitywatch/internal/platform/store"
	"gravitywatch/internal/services/findings/domain"
)

// openTestPG connects to the database named by TEST_PG_DBURL and rebuilds
// the findings table from scratch. Skips when the env var is unset so the
// suite stays green without a live Postgres.
func openTestPG(t *testing.T) store.TxRunner {
	t.Helper()
	dburl := os.Getenv("TEST_PG_DBURL")
	if dburl == "" {
		t.Skip("TEST_PG_DBURL not set")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		AppName: "findings-repo-test",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      dburl,
			MaxConns: 2,
		},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	// kept in sync with migrations/0001_init.sql
	ddl := []string{
		`DROP TABLE IF EXISTS findings`,
		`DROP TYPE IF EXISTS finding_category`,
		`DROP TYPE IF EXISTS finding_source`,
		`CREATE TYPE finding_category AS ENUM (
			'malicious','adult_content','gambling','dating','illegal_content','suspicious','benign')`,
		`CREATE TYPE finding_source AS ENUM ('ai','threat_intel')`,
		`CREATE TABLE findings (
			id         bigserial PRIMARY KEY,
			query_ts   timestamptz      NOT NULL,
			client     text,
			domain     text             NOT NULL,
			category   finding_category NOT NULL,
			reason     text,
			source     finding_source   NOT NULL,
			created_at timestamptz      NOT NULL DEFAULT now(),
			UNIQUE (domain, query_ts, category, source))`,
	}
	for _, stmt := range ddl {
		if _, err := st.PG.Exec(ctx, stmt); err != nil {
			t.Fatalf("schema setup: %v", err)
		}
	}
	return st.PG
}

func TestInsertBatchAgainstPostgres(t *testing.T) {
	q := openTestPG(t)
	r := NewPG().Bind(q)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	batch := []domain.Finding{
		{QueryTS: ts, Client: "10.0.0.5", Domain: "ads.example.com", Category: domain.CategoryMalicious, Reason: "listed", Source: domain.SourceAI},
		{QueryTS: ts.Add(time.Second), Client: "10.0.0.5", Domain: "ads.example.com", Category: domain.CategoryMalicious, Reason: "listed", Source: domain.SourceAI},
		{QueryTS: ts, Client: "", Domain: "bets.example.net", Category: domain.CategoryGambling, Reason: "", Source: domain.SourceThreatIntel},
	}

	inserted, err := r.InsertBatch(ctx, batch)
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if len(inserted) != 3 {
		t.Fatalf("inserted = %d, want 3", len(inserted))
	}
	for _, f := range inserted {
		if f.ID == 0 || f.CreatedAt.IsZero() {
			t.Fatalf("row missing generated columns: %+v", f)
		}
	}

	// replay of the exact batch is absorbed by the unique index
	again, err := r.InsertBatch(ctx, batch)
	if err != nil {
		t.Fatalf("InsertBatch replay: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("replay inserted %d rows, want 0", len(again))
	}
}

func TestSelectKeysetAgainstPostgres(t *testing.T) {
	q := openTestPG(t)
	r := NewPG().Bind(q)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var batch []domain.Finding
	for i := 0; i < 5; i++ {
		batch = append(batch, domain.Finding{
			QueryTS:  ts.Add(time.Duration(i) * time.Minute),
			Domain:   "slots.example.org",
			Category: domain.CategoryGambling,
			Reason:   "wagering",
			Source:   domain.SourceAI,
		})
	}
	if _, err := r.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	page1, err := r.Select(ctx, domain.Filter{Domain: "slots.example.org", Limit: 2})
	if err != nil {
		t.Fatalf("Select page1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page1 = %d rows, want 2", len(page1))
	}

	last := page1[len(page1)-1]
	page2, err := r.Select(ctx, domain.Filter{
		Domain:  "slots.example.org",
		AfterTS: last.QueryTS,
		AfterID: last.ID,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("Select page2: %v", err)
	}
	if len(page2) != 3 {
		t.Fatalf("page2 = %d rows, want 3", len(page2))
	}
	if !page2[0].QueryTS.After(last.QueryTS) {
		t.Fatalf("keyset did not advance past %v", last.QueryTS)
	}
}
