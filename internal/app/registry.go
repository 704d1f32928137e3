package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndwallace05/ariav3/internal/domain"
)

// RoomSession is a read-only view of one brokered session.
type RoomSession struct {
	Room                domain.RoomName  `json:"room"`
	Agent               domain.AgentName `json:"agent"`
	ParticipantIdentity string           `json:"participant_identity"`
	SandboxID           string           `json:"sandbox_id,omitempty"`
	IssuedAt            time.Time        `json:"issued_at"`
}

// Registry tracks the sessions this process has brokered, keyed by room.
// A repeated request for the same room (the deterministic authenticated
// path) overwrites the previous entry: last write wins.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.RoomName]*RoomSession
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.RoomName]*RoomSession),
		now:      time.Now,
	}
}

func (r *Registry) Record(id domain.RoomIdentity, sandboxID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id.RoomName] = &RoomSession{
		Room:                id.RoomName,
		Agent:               id.AgentName,
		ParticipantIdentity: id.ParticipantIdentity,
		SandboxID:           sandboxID,
		IssuedAt:            r.now(),
	}
	log.Info().Str("module", "app.registry").Str("room", string(id.RoomName)).Str("agent", string(id.AgentName)).Msg("recorded session")
}

func (r *Registry) Snapshot() []RoomSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
