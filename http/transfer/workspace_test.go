package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaces(t *testing.T) {
	ws, err := NewWorkspaces(2, 8)
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, int32(2), ws.Idle())

	first, err := ws.Acquire()
	require.NoError(t, err)
	assert.Len(t, first.Bytes(), 8)

	second, err := ws.Acquire()
	require.NoError(t, err)

	_, err = ws.Acquire()
	assert.ErrorIs(t, err, ErrDeferred)

	first.Release()
	third, err := ws.Acquire()
	require.NoError(t, err)

	second.Release()
	third.Release()
	assert.Equal(t, int32(2), ws.Idle())
}

func TestNewWorkspacesInvalid(t *testing.T) {
	_, err := NewWorkspaces(1, 0)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	_, err = NewWorkspaces(0, 8)
	assert.Error(t, err)
}
