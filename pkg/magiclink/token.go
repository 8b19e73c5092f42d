package magiclink

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	tokenLength   = 32
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ErrTokenGeneration reports a failure of the system randomness source.
var ErrTokenGeneration = errors.New("magiclink: token generation failed")

// generateToken returns a 32-character alphabetic token. The alphabet is
// restricted to letters so tokens survive URL query strings and email client
// link mangling without escaping.
func generateToken() (string, error) {
	alphabetLen := big.NewInt(int64(len(tokenAlphabet)))

	buf := make([]byte, tokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", errors.Join(ErrTokenGeneration, err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
