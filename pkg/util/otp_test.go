package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedReader replays the same byte sequence forever, making code
// generation deterministic in tests.
type fixedReader struct {
	bytes []byte
	pos   int
}

func (r *fixedReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.bytes[r.pos%len(r.bytes)]
		r.pos++
	}
	return len(p), nil
}

func TestGenerateOTP_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP(nil)
		require.NoError(t, err)
		require.Len(t, code, OTPLength)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestGenerateOTP_LeadingZeros(t *testing.T) {
	// All-zero entropy draws the value 0, which must render as "000000",
	// never "0".
	code, err := GenerateOTP(&fixedReader{bytes: []byte{0x00}})
	require.NoError(t, err)
	assert.Equal(t, "000000", code)

	// A draw of 42 must render zero-padded as "000042", never "42".
	code, err = GenerateOTP(&fixedReader{bytes: []byte{0x00, 0x00, 0x2a}})
	require.NoError(t, err)
	assert.Equal(t, "000042", code)
}

func TestSecureCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"Equal codes", "123456", "123456", true},
		{"Different codes", "123456", "654321", false},
		{"Leading zeros significant", "000042", "42", false},
		{"Different lengths", "12345", "123456", false},
		{"Both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureCompare(tt.a, tt.b))
		})
	}
}
