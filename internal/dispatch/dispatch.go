// Package dispatch asks the real-time infrastructure to attach an agent
// process to a room before the participant connects.
package dispatch

import (
	"context"

	"github.com/ndwallace05/ariav3/internal/domain"
)

// Requester is the black-box contract with the infrastructure: ensure an
// agent is being placed into the room, then return. Acknowledgement of the
// request only; never waits for the agent to finish starting up.
type Requester interface {
	CreateDispatch(ctx context.Context, room domain.RoomName, agent domain.AgentName, metadata map[string]string) error
}
