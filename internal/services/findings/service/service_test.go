package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gravitywatch/internal/modkit/repokit"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/services/findings/domain"
)

type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return fn(fakeTx{})
}

type fakeRepo struct {
	inserted []domain.Finding
	err      error
}

func (r *fakeRepo) InsertBatch(context.Context, []domain.Finding) ([]domain.Finding, error) {
	return r.inserted, r.err
}
func (r *fakeRepo) Select(context.Context, domain.Filter) ([]domain.Finding, error) {
	return r.inserted, r.err
}
func (r *fakeRepo) SelectRecent(context.Context, int) ([]domain.Finding, error) {
	return r.inserted, r.err
}

type fakeBinder struct{ repo *fakeRepo }

func (b fakeBinder) Bind(repokit.Queryer) domain.StorageRepo { return b.repo }

func TestPersistBatchReportsDuplicates(t *testing.T) {
	t.Parallel()

	ts := time.Now().UTC()
	batch := []domain.Finding{
		{QueryTS: ts, Domain: "a.test", Category: domain.CategoryMalicious, Source: domain.SourceAI},
		{QueryTS: ts, Domain: "b.test", Category: domain.CategoryGambling, Source: domain.SourceAI},
		{QueryTS: ts, Domain: "c.test", Category: domain.CategoryDating, Source: domain.SourceAI},
	}
	repo := &fakeRepo{inserted: batch[:2]}
	svc := New(fakeTx{}, fakeBinder{repo: repo})

	inserted, dups, err := svc.PersistBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if len(inserted) != 2 || dups != 1 {
		t.Fatalf("inserted=%d dups=%d", len(inserted), dups)
	}
}

func TestPersistBatchEmptyIsNoop(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{err: errors.New("should not be called")}})
	inserted, dups, err := svc.PersistBatch(context.Background(), nil)
	if err != nil || inserted != nil || dups != 0 {
		t.Fatalf("want noop, got %v %d %v", inserted, dups, err)
	}
}

func TestPersistBatchWrapsRepoError(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{err: errors.New("boom")}})
	_, _, err := svc.PersistBatch(context.Background(), []domain.Finding{{Domain: "a.test"}})
	if !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("want persistence code, got %v", err)
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{inserted: []domain.Finding{{Domain: "a.test"}}}
	svc := New(fakeTx{}, fakeBinder{repo: repo})
	out, err := svc.Recent(context.Background(), 0)
	if err != nil || len(out) != 1 {
		t.Fatalf("recent: %v %v", out, err)
	}
}
