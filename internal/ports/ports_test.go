package ports

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(name string, err error) CheckFunc {
	return CheckFunc{CheckName: name, Probe: func(context.Context) error { return err }}
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(probe("postgres", nil)))

	err := registry.Register(probe("postgres", nil))

	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "postgres")
	assert.Len(t, registry.checkers, 1)
}

func TestCheckAll_NoCheckers(t *testing.T) {
	result := NewHealthRegistry().CheckAll(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.False(t, result.Timestamp.IsZero())
}

func TestCheckAll(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		want     HealthStatus
		failing  []string
	}{
		{
			name:     "all dependencies healthy",
			checkers: []HealthChecker{probe("postgres", nil), probe("redis", nil), probe("kafka", nil)},
			want:     HealthStatusHealthy,
		},
		{
			name:     "one dependency down",
			checkers: []HealthChecker{probe("postgres", nil), probe("redis", errors.New("dial tcp: refused"))},
			want:     HealthStatusUnhealthy,
			failing:  []string{"redis"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			assert.Equal(t, tt.want, result.Status)
			assert.Len(t, result.Checks, len(tt.checkers))

			for _, name := range tt.failing {
				assert.Equal(t, HealthStatusUnhealthy, result.Checks[name].Status)
				assert.NotEmpty(t, result.Checks[name].Message)
			}
		})
	}
}

func TestCheckAll_RunsEveryChecker(t *testing.T) {
	var calls atomic.Int32

	registry := NewHealthRegistry()
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, registry.Register(CheckFunc{
			CheckName: name,
			Probe: func(context.Context) error {
				calls.Add(1)
				return nil
			},
		}))
	}

	registry.CheckAll(context.Background())

	assert.Equal(t, int32(4), calls.Load())
}
