package lz4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandEmptyBlock(t *testing.T) {
	out := make([]byte, 16)
	n, err := expandBlock(nil, out, 0)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestExpandBareFinalToken(t *testing.T) {
	// A single zero token: no literals, and too little input left for
	// an offset, so it is the final token.
	out := make([]byte, 16)
	n, err := expandBlock([]byte{0x00}, out, 0)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestExpandTruncatedLiteralRun(t *testing.T) {
	out := make([]byte, 16)
	for _, src := range [][]byte{{0xF0}, {0xF0, 0xFF}} {
		_, err := expandBlock(src, out, 0)
		require.ErrorIs(t, err, ErrBlockCorrupt)
	}
}

func TestExpandLiteralRunOverrunsInput(t *testing.T) {
	out := make([]byte, 16)
	_, err := expandBlock([]byte{0x40, 'a', 'b'}, out, 0)
	require.ErrorIs(t, err, ErrBlockCorrupt)
}

func TestExpandBadOffset(t *testing.T) {
	out := make([]byte, 16)

	// Offset 5 with only one byte of output so far.
	_, err := expandBlock([]byte{0x10, 'a', 5, 0}, out, 0)
	require.ErrorIs(t, err, ErrBlockCorrupt)

	// Offset 0 never refers to anything.
	_, err = expandBlock([]byte{0x10, 'a', 0, 0}, out, 0)
	require.ErrorIs(t, err, ErrBlockCorrupt)
}

func TestExpandMatchOverrunsOutput(t *testing.T) {
	out := make([]byte, 10)
	// One literal, then a 219-byte match into a 10-byte buffer.
	_, err := expandBlock([]byte{0x1F, 'a', 1, 0, 200}, out, 0)
	require.ErrorIs(t, err, ErrBlockCorrupt)
}

func TestExpandTruncatedMatchRun(t *testing.T) {
	out := make([]byte, 600)
	copy(out, "hist")
	_, err := expandBlock([]byte{0x0F, 1, 0, 255}, out, 4)
	require.ErrorIs(t, err, ErrBlockCorrupt)
}

func TestExpandOverlappingMatch(t *testing.T) {
	out := make([]byte, 16)
	n, err := expandBlock([]byte{0x14, 'a', 1, 0}, out, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("aaaaaaaaa"), out[:n])
}

func TestExpandMatchIntoHistory(t *testing.T) {
	out := make([]byte, 16)
	copy(out, "xyz")
	n, err := expandBlock([]byte{0x04, 3, 0}, out, 3)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, []byte("xyzxyzxy"), out[3:3+n])
}
