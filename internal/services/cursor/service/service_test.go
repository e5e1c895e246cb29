package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gravitywatch/internal/modkit/repokit"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/services/cursor/domain"
)

type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return fn(fakeTx{})
}

type fakeRepo struct {
	cursor     domain.Cursor
	exists     bool
	getErr     error
	insertOK   bool
	insertErr  error
	casOK      bool
	casErr     error
	inserted   bool
	advanced   bool
	advancedTo time.Time
}

func (r *fakeRepo) Get(context.Context) (domain.Cursor, bool, error) {
	return r.cursor, r.exists, r.getErr
}

func (r *fakeRepo) InsertInitial(_ context.Context, to time.Time) (bool, error) {
	r.inserted = true
	r.advancedTo = to
	return r.insertOK, r.insertErr
}

func (r *fakeRepo) CASAdvance(_ context.Context, to time.Time, _ int64) (bool, error) {
	r.advanced = true
	r.advancedTo = to
	return r.casOK, r.casErr
}

type fakeBinder struct{ repo *fakeRepo }

func (b fakeBinder) Bind(repokit.Queryer) domain.StorageRepo { return b.repo }

func TestLoadAbsentCursor(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{}})
	c, ok, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || !c.LastProcessed.IsZero() || c.Version != 0 {
		t.Fatalf("want zero cursor, got %+v ok=%v", c, ok)
	}
}

func TestLoadWrapsIOError(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{getErr: errors.New("conn reset")}})
	_, _, err := svc.Load(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("want db code, got %v", err)
	}
}

func TestAdvanceFirstCycleInserts(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{insertOK: true}
	svc := New(fakeTx{}, fakeBinder{repo: repo})
	to := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := svc.Advance(context.Background(), to, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !repo.inserted || repo.advanced {
		t.Fatalf("want insert path, got inserted=%v advanced=%v", repo.inserted, repo.advanced)
	}
	if !repo.advancedTo.Equal(to) {
		t.Fatalf("advanced to %v", repo.advancedTo)
	}
}

func TestAdvanceVersionMismatchConflicts(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{casOK: false}})
	err := svc.Advance(context.Background(), time.Now(), 7)
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestAdvanceIOErrorIsStateWrite(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{casErr: errors.New("disk full")}})
	err := svc.Advance(context.Background(), time.Now(), 3)
	if !perr.IsCode(err, perr.ErrorCodeStateWrite) {
		t.Fatalf("want state write, got %v", err)
	}
}

func TestAdvanceConcurrentFirstInsertConflicts(t *testing.T) {
	t.Parallel()

	svc := New(fakeTx{}, fakeBinder{repo: &fakeRepo{insertOK: false}})
	err := svc.Advance(context.Background(), time.Now(), 0)
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}
