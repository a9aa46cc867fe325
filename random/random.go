package random

import (
	"crypto/rand"
	"math/big"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// StringSecure returns a random string of the given length drawn from
// a 62-symbol alphabet using crypto/rand. Used for password-reset
// tokens, so the entropy source must be cryptographic.
func StringSecure(length int) (string, error) {
	max := big.NewInt(int64(len(charset)))

	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}

	return string(b), nil
}
