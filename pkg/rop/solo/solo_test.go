package solo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ib-77/stagepipe/pkg/rop"
)

func TestTry_Success(t *testing.T) {
	t.Parallel()

	res := Try(context.Background(), rop.Success("42"), func(_ context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})

	assert.True(t, res.IsSuccess())
	assert.Equal(t, 42, res.Result())
}

func TestTry_ErrorFails(t *testing.T) {
	t.Parallel()

	res := Try(context.Background(), rop.Success("x"), func(_ context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})

	assert.True(t, res.IsFailure())
	assert.Error(t, res.Err())
}

func TestTry_CancellationCancels(t *testing.T) {
	t.Parallel()

	res := Try(context.Background(), rop.Success(1), func(_ context.Context, _ int) (int, error) {
		return 0, fmt.Errorf("stage upper: %w", context.Canceled)
	})

	assert.True(t, res.IsCancel())
	assert.ErrorIs(t, res.Err(), context.Canceled)
}

func TestTry_NotStartedWhenDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	res := Try(ctx, rop.Success(1), func(_ context.Context, v int) (int, error) {
		called = true
		return v, nil
	})

	assert.False(t, called)
	assert.True(t, res.IsCancel())
}

func TestTry_BypassesFailure(t *testing.T) {
	t.Parallel()

	in := rop.Fail[int](errors.New("earlier"))
	res := Try(context.Background(), in, func(_ context.Context, v int) (string, error) {
		t.Fatal("must not run")
		return "", nil
	})

	assert.True(t, res.IsFailure())
	assert.Equal(t, in.Id(), res.Id())
	assert.EqualError(t, res.Err(), "earlier")
}

func TestSwitchAndMap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	sw := Switch(ctx, rop.Success(2), func(_ context.Context, v int) rop.Result[string] {
		return rop.Success(strconv.Itoa(v * 2))
	})
	assert.Equal(t, "4", sw.Result())

	m := Map(ctx, rop.Cancel[int](context.Canceled), func(_ context.Context, v int) int { return v })
	assert.True(t, m.IsCancel())
}

func TestTee_OnlyOnSuccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	calls := 0
	effect := func(_ context.Context, _ rop.Result[int]) { calls++ }

	Tee(ctx, rop.Success(1), effect)
	Tee(ctx, rop.Fail[int](errors.New("x")), effect)

	assert.Equal(t, 1, calls)
}

func TestFinally(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	onSuccess := func(_ context.Context, v int) string { return "ok" }
	onError := func(_ context.Context, err error) string { return "error" }
	onCancel := func(_ context.Context, err error) string { return "cancel" }

	assert.Equal(t, "ok", Finally(ctx, rop.Success(1), onSuccess, onError, onCancel))
	assert.Equal(t, "error", Finally(ctx, rop.Fail[int](errors.New("x")), onSuccess, onError, onCancel))
	assert.Equal(t, "cancel", Finally(ctx, rop.Cancel[int](context.Canceled), onSuccess, onError, onCancel))
}

func TestSteps_KeepInputId(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in := rop.Success("7")

	tried := Try(ctx, in, func(_ context.Context, s string) (int, error) { return strconv.Atoi(s) })
	mapped := Map(ctx, tried, func(_ context.Context, v int) int { return v * 2 })
	switched := Switch(ctx, mapped, func(_ context.Context, v int) rop.Result[string] {
		return rop.Success(strconv.Itoa(v))
	})
	failed := Try(ctx, switched, func(_ context.Context, _ string) (int, error) {
		return 0, errors.New("boom")
	})

	assert.Equal(t, "14", switched.Result())
	for _, id := range []any{tried.Id(), mapped.Id(), switched.Id(), failed.Id()} {
		assert.Equal(t, in.Id(), id)
	}
	assert.Equal(t, in.CreatedAt(), failed.CreatedAt())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Equal(t, in.Id(), Try(cancelled, in, strconvAtoi).Id())
}

func strconvAtoi(_ context.Context, s string) (int, error) {
	return strconv.Atoi(s)
}
