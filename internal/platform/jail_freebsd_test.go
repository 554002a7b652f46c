//go:build freebsd

package platform

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIovec(t *testing.T) {
	params := []JailParam{
		{Name: "path", Value: []byte("/rescue\x00")},
		{Name: "persist"},
	}

	iov, keepAlive, err := buildIovec(params)
	require.NoError(t, err)

	require.Len(t, iov, 4)
	assert.Len(t, keepAlive, 4)

	assert.Equal(t, uint64(len("path\x00")), uint64(iov[0].Len))
	assert.Equal(t, unsafe.Pointer(&params[0].Value[0]), unsafe.Pointer(iov[1].Base))
	assert.Equal(t, uint64(len("/rescue\x00")), uint64(iov[1].Len))

	// Presence-only flags are passed as a NULL, zero-length value.
	assert.Nil(t, iov[3].Base)
	assert.Zero(t, iov[3].Len)
}

func TestBuildIovecNulName(t *testing.T) {
	_, _, err := buildIovec([]JailParam{{Name: "bad\x00name"}})
	assert.ErrorIs(t, err, ErrNulByte)
}
