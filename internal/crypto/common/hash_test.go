package crypto

import (
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSha512Half(t *testing.T) {
	tt := []struct {
		description string
		input       [][]byte
	}{
		{
			description: "single slice",
			input:       [][]byte{[]byte("fakeRandomString")},
		},
		{
			description: "split input hashes the same as joined input",
			input:       [][]byte{[]byte("fakeRandom"), []byte("String")},
		},
		{
			description: "empty input",
			input:       nil,
		},
	}

	for _, tc := range tt {
		t.Run(tc.description, func(t *testing.T) {
			var joined []byte
			for _, d := range tc.input {
				joined = append(joined, d...)
			}
			full := sha512.Sum512(joined)

			got := Sha512Half(tc.input...)
			require.Equal(t, full[:32], got[:])
		})
	}
}
