package session

import (
	"regexp"

	"github.com/google/uuid"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether a client-supplied session id is usable as a
// storage key suffix.
func ValidID(id string) bool {
	return validID.MatchString(id)
}
