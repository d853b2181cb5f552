// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

const upperDigits = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomFrom(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateOrderNumber returns a human-readable order number such as
// SF-20240115-7KQ2M9XA. Ambiguous characters (0, O, 1, I) are left out.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := randomFrom(upperDigits, 8)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{"SF", now.UTC().Format("20060102"), suffix}, "-"), nil
}
