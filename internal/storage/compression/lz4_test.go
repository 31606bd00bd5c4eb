package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "short raw", data: []byte("hello")},
		{name: "repetitive", data: bytes.Repeat([]byte("auction"), 200)},
		{name: "boundary", data: bytes.Repeat([]byte{7}, minCompressibleSize)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Compress(tc.data)
			require.NoError(t, err)
			got, err := Decompress(frame)
			require.NoError(t, err)
			require.Equal(t, tc.data, got)
		})
	}
}

func TestCompressibleDataShrinks(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 500)
	frame, err := Compress(data)
	require.NoError(t, err)
	require.Less(t, len(frame), len(data))
	require.Equal(t, frameLZ4, frame[0])
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress(nil)
	require.ErrorIs(t, err, ErrBadFrame)

	_, err = Decompress([]byte{9, 0, 0, 0, 1, 42})
	require.ErrorIs(t, err, ErrBadFrame)

	// Raw frame whose declared size disagrees with the body.
	_, err = Decompress([]byte{frameRaw, 0, 0, 0, 5, 1, 2})
	require.ErrorIs(t, err, ErrBadFrame)
}
