package common

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a lexicographically sortable 26-char id
// (48-bit timestamp + 80 random bits).
func NewULID() (string, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
