package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_IsWrapFriendly(t *testing.T) {
	base := New(KindConflict, "reactivation window expired")
	err := fmt.Errorf("reactivate user: %w", base)

	require.Equal(t, KindConflict, KindOf(err))
	require.True(t, errors.Is(err, base))
}

func TestKindOf_UnknownForPlainErrors(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("smtp dial failed")
	err := Wrap(KindTransient, "send reminder", cause)

	require.True(t, errors.Is(err, cause))
	assert.True(t, IsKind(err, KindTransient))
	assert.Contains(t, err.Error(), "transient")
	assert.Contains(t, err.Error(), "smtp dial failed")
}
