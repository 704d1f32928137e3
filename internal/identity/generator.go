// Package identity derives room and agent names for a connection request.
package identity

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ndwallace05/ariav3/internal/domain"
)

const (
	roomPrefix  = "voice_assistant_room_"
	agentPrefix = "aria_agent_"

	// AnonymousIdentity is used when no authenticated caller is present.
	AnonymousIdentity = "user"

	// nameSpace bounds the random suffix. Collisions are possible but
	// unlikely at the expected concurrent-session count.
	nameSpace = 10000
)

// ForAnonymous mints a fresh randomized identity. Each call names a new room.
func ForAnonymous() domain.RoomIdentity {
	return domain.RoomIdentity{
		RoomName:            domain.RoomName(fmt.Sprintf("%s%d", roomPrefix, rand.IntN(nameSpace))),
		AgentName:           domain.AgentName(fmt.Sprintf("%s%d", agentPrefix, rand.IntN(nameSpace))),
		ParticipantIdentity: AnonymousIdentity,
	}
}

// ForUser derives a deterministic identity from the caller's display name,
// so repeated requests from the same user land in the same room.
func ForUser(p domain.Participant) domain.RoomIdentity {
	name := normalizeName(p.DisplayName)
	return domain.RoomIdentity{
		RoomName:            domain.RoomName(roomPrefix + name),
		AgentName:           domain.AgentName(agentPrefix + name),
		ParticipantIdentity: p.Identity,
	}
}

// normalizeName replaces the first whitespace run with "_". Later runs are
// left as-is; room names derived from multi-space display names keep them.
func normalizeName(name string) string {
	i := strings.IndexFunc(name, unicode.IsSpace)
	if i < 0 {
		return name
	}
	j := i
	for j < len(name) {
		r, size := utf8.DecodeRuneInString(name[j:])
		if !unicode.IsSpace(r) {
			break
		}
		j += size
	}
	return name[:i] + "_" + name[j:]
}
