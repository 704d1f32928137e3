package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndwallace05/ariav3/internal/app"
	"github.com/ndwallace05/ariav3/internal/config"
)

const requestIDHeader = "X-Request-Id"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)
		c.Set("request_id", rid)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, svc *app.ConnectionService) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("AriaSession", store))
	r.Use(RequestIDMiddleware())

	log.Info().Str("module", "adapters.http").Bool("require_auth", cfg.RequireAuth).Msg("router setup")

	ctl := NewController(svc)

	r.GET("/healthz", ctl.HandleHealth)

	api := r.Group("/api")
	api.POST("/connection-details", ctl.HandleConnectionDetails)
	api.POST("/login", ctl.HandleLogin)
	api.POST("/logout", ctl.HandleLogout)
	api.GET("/rooms", ctl.HandleRooms)

	return r
}
