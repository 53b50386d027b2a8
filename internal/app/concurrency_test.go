package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallel2(t *testing.T) {
	a, b, err := Parallel2(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (string, error) { return "two", nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, "two", b)
}

func TestParallel2_Error(t *testing.T) {
	boom := errors.New("boom")

	a, b, err := Parallel2(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (string, error) { return "", boom },
	)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, a)
	assert.Empty(t, b)
}

func TestParallel3(t *testing.T) {
	a, b, c, err := Parallel3(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
		func(context.Context) (int, error) { return 3, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{a, b, c})
}

func TestParallel3_CancelsOthersOnError(t *testing.T) {
	boom := errors.New("boom")

	_, _, _, err := Parallel3(context.Background(),
		func(context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) { <-ctx.Done(); return 0, ctx.Err() },
		func(ctx context.Context) (int, error) { <-ctx.Done(); return 0, ctx.Err() },
	)
	require.ErrorIs(t, err, boom)
}

func TestLookupEach(t *testing.T) {
	var calls atomic.Int32

	results := LookupEach(context.Background(), 2, []string{"a", "b", "a", "c"},
		func(_ context.Context, key string) (string, error) {
			calls.Add(1)
			if key == "b" {
				return "", errors.New("no b")
			}

			return key + key, nil
		})

	assert.Equal(t, int32(3), calls.Load(), "duplicate keys are looked up once")
	require.Len(t, results, 3)
	assert.Equal(t, "aa", results["a"].Value)
	assert.Equal(t, "cc", results["c"].Value)
	assert.Error(t, results["b"].Err)
}

func TestLookupEach_NoKeys(t *testing.T) {
	results := LookupEach(context.Background(), 0, nil, func(context.Context, int) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	})

	assert.Empty(t, results)
}
