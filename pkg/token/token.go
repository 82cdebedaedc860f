package token

import (
	"crypto/rand"
	"math/big"
)

// alphabet leaves out 0/O, 1/I and L so codes survive being read aloud
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Generate returns a random room code of length n
func Generate(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}

		b[i] = alphabet[v.Int64()]
	}

	return string(b), nil
}
