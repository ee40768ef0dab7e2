package crypto

import (
	"crypto/rand"
	"math/big"
)

const tokenChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789"

// NewToken returns a random alphanumeric string of the specified length drawn
// from a cryptographically secure source. It panics if that source fails.
func NewToken(tokenLength int) string {
	max := big.NewInt(int64(len(tokenChars)))
	b := make([]byte, tokenLength)
	for i := 0; i < tokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = tokenChars[n.Int64()]
	}
	return string(b)
}
