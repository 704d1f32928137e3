// Package domain contains entity without logic, just meta-data
package domain

type (
	RoomName  string
	AgentName string
)

// RoomIdentity names one session: the room, the agent bound into it,
// and the identity the human participant will join under.
type RoomIdentity struct {
	RoomName            RoomName
	AgentName           AgentName
	ParticipantIdentity string
}
