package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndwallace05/ariav3/internal/domain"
	"github.com/ndwallace05/ariav3/internal/token"
)

const createDispatchPath = "/twirp/livekit.AgentDispatchService/CreateDispatch"

// Client talks to the infrastructure's agent-dispatch API over HTTP,
// authorizing each call with a short-lived admin token.
type Client struct {
	apiURL string
	issuer *token.Issuer
	httpc  *http.Client
}

// NewClient derives the API base from the configured server URL. Clients
// connect over ws(s); the server API for the same deployment lives at the
// http(s) equivalent.
func NewClient(serverURL string, issuer *token.Issuer) (*Client, error) {
	if serverURL == "" {
		return nil, errors.New("dispatch: server url is required")
	}
	return &Client{
		apiURL: toHTTPURL(serverURL),
		issuer: issuer,
		httpc:  http.DefaultClient,
	}, nil
}

// WithHTTPClient overrides the transport. Tests only.
func (c *Client) WithHTTPClient(httpc *http.Client) *Client {
	cpy := *c
	cpy.httpc = httpc
	return &cpy
}

type createDispatchRequest struct {
	AgentName string `json:"agent_name"`
	Room      string `json:"room"`
	Metadata  string `json:"metadata,omitempty"`
}

// CreateDispatch requests agent placement and returns once the request is
// acknowledged. Any transport, auth, or non-2xx outcome is an error; the
// caller must not issue a participant credential after a failure here.
func (c *Client) CreateDispatch(ctx context.Context, room domain.RoomName, agent domain.AgentName, metadata map[string]string) error {
	var meta string
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("dispatch: encode metadata: %w", err)
		}
		meta = string(raw)
	}

	body, err := json.Marshal(createDispatchRequest{
		AgentName: string(agent),
		Room:      string(room),
		Metadata:  meta,
	})
	if err != nil {
		return fmt.Errorf("dispatch: encode request: %w", err)
	}

	auth, err := c.issuer.AdminToken(string(room))
	if err != nil {
		return fmt.Errorf("dispatch: authorize: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+createDispatchPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dispatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+auth)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("dispatch: rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	log.Info().Str("module", "dispatch").Str("room", string(room)).Str("agent", string(agent)).Msg("dispatch acknowledged")
	return nil
}

// toHTTPURL maps a ws(s) endpoint onto its http(s) API twin.
func toHTTPURL(u string) string {
	u = strings.TrimRight(u, "/")
	switch {
	case strings.HasPrefix(u, "wss://"):
		return "https://" + strings.TrimPrefix(u, "wss://")
	case strings.HasPrefix(u, "ws://"):
		return "http://" + strings.TrimPrefix(u, "ws://")
	default:
		return u
	}
}
