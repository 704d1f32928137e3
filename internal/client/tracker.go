// Package client tracks connection details for one UI session and keeps the
// held credential fresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndwallace05/ariav3/internal/domain"
	"github.com/ndwallace05/ariav3/internal/token"
)

// staleMargin is the lead time before actual expiry at which a held
// credential is treated as unusable, so it never expires mid-use.
const staleMargin = time.Minute

const sandboxHeader = "X-Sandbox-Id"

// Tracker holds the current ConnectionDetails for one session and re-fetches
// them on demand or staleness. Not safe for concurrent use: two overlapping
// fetches race and the later response wins.
type Tracker struct {
	endpoint  string
	sandboxID string
	httpc     *http.Client
	now       func() time.Time

	active  bool
	details *domain.ConnectionDetails
}

type Option func(*Tracker)

// WithSandboxID attaches a deployment sandbox identifier to every fetch.
func WithSandboxID(id string) Option {
	return func(t *Tracker) { t.sandboxID = id }
}

func WithHTTPClient(httpc *http.Client) Option {
	return func(t *Tracker) { t.httpc = httpc }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(endpoint string, opts ...Option) *Tracker {
	t := &Tracker{
		endpoint: endpoint,
		httpc:    http.DefaultClient,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetActive marks the owning session present or absent. The inactive-to-
// active transition triggers an initial fetch.
func (t *Tracker) SetActive(ctx context.Context, active bool) error {
	wasActive := t.active
	t.active = active
	if active && !wasActive {
		if _, err := t.Fetch(ctx); err != nil {
			return err
		}
	}
	if !active {
		t.details = nil
	}
	return nil
}

// Details returns the currently held value, possibly nil or stale.
func (t *Tracker) Details() *domain.ConnectionDetails {
	return t.details
}

// Fetch requests fresh connection details. A no-op without an active
// session. Held details are cleared before the call, so a failed refresh
// leaves the tracker empty rather than holding an expired credential.
func (t *Tracker) Fetch(ctx context.Context) (*domain.ConnectionDetails, error) {
	if !t.active {
		return nil, nil
	}

	t.details = nil

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(nil))
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	if t.sandboxID != "" {
		req.Header.Set(sandboxHeader, t.sandboxID)
	}

	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: fetch connection details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("client: connection details request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var details domain.ConnectionDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("client: decode connection details: %w", err)
	}

	t.details = &details
	log.Debug().Str("module", "client").Str("room", details.RoomName).Msg("connection details fetched")
	return t.details, nil
}

// ExistingOrRefresh returns the held details when still fresh, otherwise
// fetches new ones.
func (t *Tracker) ExistingOrRefresh(ctx context.Context) (*domain.ConnectionDetails, error) {
	if t.details != nil && !t.stale(t.details) {
		return t.details, nil
	}
	return t.Fetch(ctx)
}

// stale reports whether the credential is inside the safety margin of its
// expiry. A token without a readable expiry claim counts as stale.
func (t *Tracker) stale(details *domain.ConnectionDetails) bool {
	exp, err := token.Expiry(details.ParticipantToken)
	if err != nil {
		return true
	}
	return !t.now().Before(exp.Add(-staleMargin))
}
