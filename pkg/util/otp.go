package util

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

// OTPLength is the number of digits in a generated one-time code.
const OTPLength = 6

var otpSpace = big.NewInt(1000000) // codes range 000000-999999

// GenerateOTP draws a 6-digit one-time code uniformly from 000000-999999
// using the given random source. The code is returned as a zero-padded
// string so leading zeros survive; it must never be handled as an integer.
// Pass nil to use crypto/rand.
func GenerateOTP(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// SecureCompare reports whether two codes are equal without leaking the
// position of the first mismatch through timing.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
