package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndwallace05/ariav3/internal/app"
	"github.com/ndwallace05/ariav3/internal/config"
	"github.com/ndwallace05/ariav3/internal/domain"
	"github.com/ndwallace05/ariav3/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDispatcher struct {
	calls int
	fail  error
}

func (f *fakeDispatcher) CreateDispatch(_ context.Context, _ domain.RoomName, _ domain.AgentName, _ map[string]string) error {
	f.calls++
	return f.fail
}

func testRouter(t *testing.T, requireAuth bool, d *fakeDispatcher) *gin.Engine {
	t.Helper()
	issuer, err := token.NewIssuer("devkey", "devsecret")
	require.NoError(t, err)

	cfg := &config.Config{
		Mode:          "test",
		ServerURL:     "wss://aria.example.com",
		RequireAuth:   requireAuth,
		SessionSecret: "test-session-secret",
	}
	svc := app.NewConnectionService(cfg.ServerURL, cfg.RequireAuth, d, issuer, app.NewRegistry())
	return SetupRouter(cfg, svc)
}

func TestConnectionDetailsAnonymous(t *testing.T) {
	r := testRouter(t, false, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/connection-details", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var details domain.ConnectionDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))

	assert.Equal(t, "wss://aria.example.com", details.ServerURL)
	assert.Regexp(t, `^voice_assistant_room_\d{1,4}$`, details.RoomName)
	assert.Equal(t, "user", details.ParticipantName)

	room, err := token.RoomClaim(details.ParticipantToken)
	require.NoError(t, err)
	assert.Equal(t, details.RoomName, room)
}

func TestConnectionDetailsUnauthorized(t *testing.T) {
	d := &fakeDispatcher{}
	r := testRouter(t, true, d)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/connection-details", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "authentication required", rec.Body.String())
	assert.Zero(t, d.calls, "dispatch must not run for unauthorized callers")
}

func TestConnectionDetailsDispatchFailure(t *testing.T) {
	r := testRouter(t, false, &fakeDispatcher{fail: assert.AnError})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/connection-details", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "failed to prepare connection details", rec.Body.String())
}

func TestConnectionDetailsBadBody(t *testing.T) {
	r := testRouter(t, false, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/connection-details", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticatedFlow(t *testing.T) {
	r := testRouter(t, true, &fakeDispatcher{})

	// Login to establish the cookie session.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"identity":"u-1","display_name":"Nathan Wallace"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	connect := func() domain.ConnectionDetails {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/connection-details", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var details domain.ConnectionDetails
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
		return details
	}

	first := connect()
	second := connect()

	assert.Equal(t, "voice_assistant_room_Nathan_Wallace", first.RoomName)
	assert.Equal(t, first.RoomName, second.RoomName, "authenticated naming is idempotent")
	assert.Equal(t, "Nathan Wallace", first.ParticipantName)
	assert.NotEqual(t, first.ParticipantToken, second.ParticipantToken, "each call issues a fresh credential")
}

func TestLoginRequiresDisplayName(t *testing.T) {
	r := testRouter(t, true, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"identity":"u-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	r := testRouter(t, true, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"display_name":"Nathan"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	loginCookies := rec.Result().Cookies()

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	for _, ck := range loginCookies {
		req.AddCookie(ck)
	}
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	logoutCookies := rec.Result().Cookies()

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/connection-details", nil)
	for _, ck := range logoutCookies {
		req.AddCookie(ck)
	}
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoomsSnapshot(t *testing.T) {
	r := testRouter(t, false, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/connection-details", nil)
	req.Header.Set("X-Sandbox-Id", "pr-42")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rooms []app.RoomSession `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "pr-42", body.Rooms[0].SandboxID)
}

func TestHealthz(t *testing.T) {
	r := testRouter(t, false, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
