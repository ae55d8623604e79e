package models

import (
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// NewID returns a fresh random identity token.
func NewID() string {
	return uuid.NewString()
}

// NewParticipantID builds a "<slug>-<token>" id so participant ids stay
// readable and safe to use as a path segment.
func NewParticipantID(name string) string {
	s := slug.Make(name)
	if s == "" {
		s = "player"
	}
	return s + "-" + uuid.NewString()
}
