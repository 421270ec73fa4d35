package store

import (
	"crypto/rand"
	"math/big"

	"github.com/jjpaste/jjbin/models"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewUniqueID returns a random candidate paste identifier: 8 characters from
// [A-Za-z0-9]. Uniqueness is the caller's problem; Create re-checks the store
// and retries on collision rather than trusting the odds.
func NewUniqueID() string {
	buf := make([]byte, models.UniqueIDLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return string(buf)
}
