package storage

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
)

// ErrInvalidGameID is returned for identifiers that are not safe to use as a
// directory name.
var ErrInvalidGameID = errors.New("invalid game ID format")

var gameIDPattern = regexp.MustCompile(`^[a-f0-9-]{36}$`)

// ValidateGameID checks that id has the shape of a lowercase uuid string.
// Every path built from a caller-supplied id must go through here first.
func ValidateGameID(id string) error {
	if !gameIDPattern.MatchString(id) {
		return ErrInvalidGameID
	}
	return nil
}

// NewGameID allocates a fresh identifier.
func NewGameID() string {
	return uuid.New().String()
}
