package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransientKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Transient(cause, "add viewer")

	require.True(t, IsTransient(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "transient", GetCode(err))
	require.Equal(t, "add viewer", GetMessage(err))
}

func TestWrapWithCodeMatchesSentinel(t *testing.T) {
	err := WrapWithCode(ErrNotFound, "content_not_found", "content item not found")

	require.True(t, IsNotFound(err))
	require.False(t, IsNotAuthorized(err))
	require.Equal(t, "content_not_found", GetCode(err))

	wrapped := fmt.Errorf("mark viewed: %w", err)
	require.True(t, IsNotFound(wrapped))
	require.Equal(t, "content_not_found", GetCode(wrapped))
}

func TestNilWrapping(t *testing.T) {
	require.NoError(t, Wrap(nil, "x"))
	require.NoError(t, WrapWithCode(nil, "c", "x"))
	require.NoError(t, Transient(nil, "x"))
	require.Equal(t, "", GetMessage(nil))
}

func TestInvalid(t *testing.T) {
	err := Invalid("snap needs at least one recipient")
	require.True(t, IsInvalidInput(err))
	require.Equal(t, "snap needs at least one recipient", GetMessage(err))
}
