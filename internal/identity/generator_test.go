package identity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndwallace05/ariav3/internal/domain"
)

var roomPattern = regexp.MustCompile(`^voice_assistant_room_\d{1,4}$`)

func TestForAnonymousPattern(t *testing.T) {
	id := ForAnonymous()

	require.Regexp(t, roomPattern, string(id.RoomName))
	require.Regexp(t, `^aria_agent_\d{1,4}$`, string(id.AgentName))
	assert.Equal(t, AnonymousIdentity, id.ParticipantIdentity)
}

func TestForUserIsDeterministic(t *testing.T) {
	p := domain.Participant{Identity: "u-42", DisplayName: "Nathan Wallace"}

	first := ForUser(p)
	second := ForUser(p)

	assert.Equal(t, first.RoomName, second.RoomName)
	assert.Equal(t, first.AgentName, second.AgentName)
	assert.Equal(t, domain.RoomName("voice_assistant_room_Nathan_Wallace"), first.RoomName)
	assert.Equal(t, domain.AgentName("aria_agent_Nathan_Wallace"), first.AgentName)
	assert.Equal(t, "u-42", first.ParticipantIdentity)
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Nathan", "Nathan"},
		{"Nathan Wallace", "Nathan_Wallace"},
		{"Nathan  Wallace", "Nathan_Wallace"},
		// Only the first whitespace run is replaced.
		{"Ada B Lovelace", "Ada_B Lovelace"},
		{"\tlead", "_lead"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizeName(c.in), "input %q", c.in)
	}
}
