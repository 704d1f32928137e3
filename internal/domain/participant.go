package domain

import "errors"

const MaxDisplayNameLen = 64

var (
	ErrUnauthorized       = errors.New("no active session")
	ErrDisplayNameEmpty   = errors.New("display name empty")
	ErrDisplayNameTooLong = errors.New("display name too long")
)

// Participant is the session/auth collaborator's view of the caller.
// Read-only here; populated by whatever owns the login flow.
type Participant struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(identity, displayName string) (*Participant, error) {
	if len(displayName) == 0 {
		return nil, ErrDisplayNameEmpty
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &Participant{Identity: identity, DisplayName: displayName}, nil
}
