package utils

import (
	"crypto/rand"
	"math/big"
)

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRefID returns a short human-readable reference like "EV4K7QZ2MD".
// These are the identifiers printed on QR codes and typed in for manual
// attendance, so they stay short and uppercase.
func NewRefID(prefix string) string {
	b := make([]byte, 8)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(refAlphabet))))
		if err != nil {
			panic(err)
		}
		b[i] = refAlphabet[n.Int64()]
	}
	return prefix + string(b)
}
