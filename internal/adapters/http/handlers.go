package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndwallace05/ariav3/internal/app"
	"github.com/ndwallace05/ariav3/internal/domain"
)

const (
	sandboxHeader = "X-Sandbox-Id"

	sessionIdentityKey    = "identity"
	sessionDisplayNameKey = "display_name"
)

type Controller struct {
	svc *app.ConnectionService
}

func NewController(svc *app.ConnectionService) *Controller {
	return &Controller{svc: svc}
}

// connectionRequest is the optional body of a connection-details call.
// Both fields are hints; absent fields fall back to generated names.
type connectionRequest struct {
	RoomName  string `json:"room_name"`
	AgentName string `json:"agent_name"`
}

type loginRequest struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
}

// HandleConnectionDetails brokers one session: agent dispatch, then a fresh
// participant credential. Every success can name a new room, so the response
// must never be cached.
func (ctl *Controller) HandleConnectionDetails(c *gin.Context) {
	var req connectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "invalid request body")
			return
		}
	}

	call := app.Caller{
		Participant: sessionParticipant(c),
		RoomName:    domain.RoomName(req.RoomName),
		AgentName:   domain.AgentName(req.AgentName),
		SandboxID:   c.GetHeader(sandboxHeader),
	}

	details, err := ctl.svc.Connect(c.Request.Context(), call)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.String(http.StatusUnauthorized, "authentication required")
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Str("rid", c.GetString("request_id")).Msg("connection details failed")
		c.String(http.StatusInternalServerError, "failed to prepare connection details")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, details)
}

func (ctl *Controller) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "missing or invalid body")
		return
	}
	if req.Identity == "" {
		req.Identity = uuid.NewString()
	}

	p, err := domain.NewParticipant(req.Identity, req.DisplayName)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionIdentityKey, p.Identity)
	sess.Set(sessionDisplayNameKey, p.DisplayName)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save failed")
		c.String(http.StatusInternalServerError, "failed to start session")
		return
	}

	c.JSON(http.StatusOK, p)
}

func (ctl *Controller) HandleLogout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session clear failed")
		c.String(http.StatusInternalServerError, "failed to end session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctl *Controller) HandleRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": ctl.svc.Sessions()})
}

func (ctl *Controller) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionParticipant reads the auth collaborator's view of the caller.
// Read-only: the connection flow never writes the session.
func sessionParticipant(c *gin.Context) *domain.Participant {
	sess := sessions.Default(c)
	identity, ok := sess.Get(sessionIdentityKey).(string)
	if !ok || identity == "" {
		return nil
	}
	displayName, _ := sess.Get(sessionDisplayNameKey).(string)
	return &domain.Participant{Identity: identity, DisplayName: displayName}
}
