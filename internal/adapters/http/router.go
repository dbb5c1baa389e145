package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/adapters/signal"
	"github.com/dkeye/Capture/internal/app"
	"github.com/dkeye/Capture/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// BodyLimitMiddleware caps inbound payloads (audio chunks dominate).
func BodyLimitMiddleware(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CaptureSessions", store))
	r.Use(ClientTokenMiddleware())
	r.Use(BodyLimitMiddleware(cfg.MaxBodySize))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &Handlers{Coord: coord}
	api := r.Group("/api")

	api.GET("/params", h.GetParams)
	api.POST("/params", h.UpdateParams)

	api.POST("/webrtc/offer", h.Offer)
	api.POST("/webrtc/ice-candidate", h.Candidate)
	api.POST("/webrtc/audio-data", h.AudioData)

	api.POST("/recordings", h.SaveRecording)
	api.GET("/recordings", h.ListRecordings)
	api.GET("/recordings/:id", h.GetRecording)

	ctrl := signal.NewController(coord, cfg)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
