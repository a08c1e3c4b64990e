package logutil

import (
	"math/rand"
	"time"
)

var random = rand.New(rand.NewSource(time.Now().UnixNano()))

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID returns a short random identifier, eg for correlating a logged error
// with the response that reported it.
func NewID() string {
	return randomString(12)
}

func randomString(l int) string {
	b := make([]byte, l)

	for i := range b {
		b[i] = idAlphabet[random.Intn(len(idAlphabet))]
	}

	return string(b)
}
