package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ndwallace05/ariav3/internal/dispatch"
	"github.com/ndwallace05/ariav3/internal/domain"
	"github.com/ndwallace05/ariav3/internal/identity"
)

// TokenIssuer is the credential collaborator as seen from this service.
type TokenIssuer interface {
	ParticipantToken(identity, name, room string) (string, error)
}

// Caller carries everything the transport layer resolved about one request:
// the session participant (nil when anonymous or absent) and optional
// room/agent override hints from the request body.
type Caller struct {
	Participant *domain.Participant
	RoomName    domain.RoomName
	AgentName   domain.AgentName
	SandboxID   string
}

// ConnectionService runs the connection lifecycle: resolve the caller, mint
// a room identity, dispatch the agent, then issue the participant credential.
type ConnectionService struct {
	serverURL   string
	requireAuth bool
	dispatcher  dispatch.Requester
	issuer      TokenIssuer
	registry    *Registry
}

func NewConnectionService(serverURL string, requireAuth bool, dispatcher dispatch.Requester, issuer TokenIssuer, registry *Registry) *ConnectionService {
	return &ConnectionService{
		serverURL:   serverURL,
		requireAuth: requireAuth,
		dispatcher:  dispatcher,
		issuer:      issuer,
		registry:    registry,
	}
}

// Connect is a linear sequence; the first failing step is terminal and no
// step is retried. A credential is never issued for a room where dispatch
// was not attempted.
func (s *ConnectionService) Connect(ctx context.Context, call Caller) (*domain.ConnectionDetails, error) {
	if s.requireAuth && (call.Participant == nil || call.Participant.DisplayName == "") {
		return nil, domain.ErrUnauthorized
	}

	var id domain.RoomIdentity
	displayName := identity.AnonymousIdentity
	if call.Participant != nil && call.Participant.DisplayName != "" {
		id = identity.ForUser(*call.Participant)
		displayName = call.Participant.DisplayName
	} else {
		id = identity.ForAnonymous()
	}
	if call.RoomName != "" {
		id.RoomName = call.RoomName
	}
	if call.AgentName != "" {
		id.AgentName = call.AgentName
	}

	metadata := map[string]string{"purpose": "voice-assistant"}
	if call.SandboxID != "" {
		metadata["sandbox_id"] = call.SandboxID
	}

	if err := s.dispatcher.CreateDispatch(ctx, id.RoomName, id.AgentName, metadata); err != nil {
		return nil, fmt.Errorf("request dispatch: %w", err)
	}

	// No compensation if issuance fails past this point; the dispatched
	// agent is left to idle out in its room.
	participantToken, err := s.issuer.ParticipantToken(id.ParticipantIdentity, displayName, string(id.RoomName))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.registry.Record(id, call.SandboxID)
	log.Info().Str("module", "app.connection").Str("room", string(id.RoomName)).Str("participant", id.ParticipantIdentity).Msg("connection details issued")

	return &domain.ConnectionDetails{
		ServerURL:        s.serverURL,
		RoomName:         string(id.RoomName),
		ParticipantName:  displayName,
		ParticipantToken: participantToken,
	}, nil
}

// Sessions exposes the registry snapshot for the introspection endpoint.
func (s *ConnectionService) Sessions() []RoomSession {
	return s.registry.Snapshot()
}
