package session

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultIDLength is the session id length used when none is configured
const DefaultIDLength = 16

// GenerateID returns a uniformly random alphanumeric string of the given length
func GenerateID(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("session id length must be positive")
	}

	max := big.NewInt(int64(len(idAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return string(buf), nil
}
