package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	done, err := s.IsCompleted(ctx, "run-1", "7_days_before")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.RecordCompleted(ctx, "run-1", "7_days_before", []byte(`{"sent":true}`)))
	// duplicate record must not overwrite the original result
	require.NoError(t, s.RecordCompleted(ctx, "run-1", "7_days_before", []byte(`{"sent":false}`)))

	done, err = s.IsCompleted(ctx, "run-1", "7_days_before")
	require.NoError(t, err)
	assert.True(t, done)

	r, err := s.Result(ctx, "run-1", "7_days_before")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sent":true}`, string(r))
}

func TestMemory_ScopedPerRun(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.RecordCompleted(ctx, "run-1", "fetch", nil))

	done, err := s.IsCompleted(ctx, "run-2", "fetch")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = s.Result(ctx, "run-2", "fetch")
	require.True(t, errors.Is(err, ErrNotCompleted))
}
