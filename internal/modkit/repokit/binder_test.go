package repokit

import (
	"context"
	"testing"

	"gravitywatch/internal/platform/testkit"
)

type fakeRepo struct{ q Queryer }

func TestBindFunc(t *testing.T) {
	t.Parallel()

	b := BindFunc[*fakeRepo](func(q Queryer) *fakeRepo { return &fakeRepo{q: q} })
	var q Queryer = stubQuerier{}
	r := MustBind[*fakeRepo](b, q)
	if r.q != q {
		t.Fatal("bound queryer mismatch")
	}
}

func TestMustBindPanicsOnNil(t *testing.T) {
	t.Parallel()

	b := BindFunc[*fakeRepo](func(q Queryer) *fakeRepo { return &fakeRepo{q: q} })
	testkit.MustPanic(t, func() { MustBind[*fakeRepo](b, nil) })
}

type stubQuerier struct{}

func (stubQuerier) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (stubQuerier) Query(context.Context, string, ...any) (Rows, error)      { return nil, nil }
func (stubQuerier) QueryRow(context.Context, string, ...any) Row             { return nil }
