package domain

// ConnectionDetails is the single value handed to a client that wants to
// join a room. Immutable once returned; a refresh produces a new value,
// never an edit of an old one.
type ConnectionDetails struct {
	ServerURL        string `json:"serverUrl"`
	RoomName         string `json:"roomName"`
	ParticipantName  string `json:"participantName"`
	ParticipantToken string `json:"participantToken"`
}
