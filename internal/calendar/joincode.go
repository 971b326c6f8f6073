package calendar

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Join codes are 6 characters drawn uniformly from a 36-symbol alphabet,
// roughly 31 bits of entropy. Uniqueness is enforced by the database; the
// generator only has to make collisions rare, not impossible.
const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLength   = 6
)

func generateJoinCode() (string, error) {
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	code := make([]byte, joinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
