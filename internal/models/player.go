package models

// Participant is a known player of the group.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
