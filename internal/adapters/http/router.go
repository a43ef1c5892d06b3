package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/adapters/signal"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/app"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/config"
	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

// ClientTokenMiddleware mints the connection identity cookie; the token
// doubles as the signal session id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("WalkieSessions", store))
	r.Use(ClientTokenMiddleware())

	// Uploaded audio blobs are served read-only from here; the blob store
	// issues URLs pointing at this route.
	r.Static("/blobs", cfg.BlobDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("blobs", cfg.BlobDir).Msg("router setup")

	api := r.Group("/api")

	api.GET("/users", func(c *gin.Context) {
		users := orch.OnlineUsers()
		c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms()})
	})

	api.GET("/rooms/:id/members", func(c *gin.Context) {
		id := domain.RoomID(c.Param("id"))
		if _, ok := orch.Catalog.Lookup(id); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		members := orch.MembersOf(id)
		c.JSON(http.StatusOK, gin.H{"room_id": id, "members": members, "count": len(members)})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
