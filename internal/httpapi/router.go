package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/workhive/filegate/internal/config"
	"github.com/workhive/filegate/internal/logging"
	"github.com/workhive/filegate/internal/obs"
)

// NewRouter assembles the route table: public health and metrics endpoints
// plus the token-protected object API.
func NewRouter(cfg *config.Config, h *Handler, db *sql.DB, log logging.Logger) *gin.Engine {
	obs.Init()

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(RequestID())
	r.Use(RequestLog(log))
	r.Use(obs.Instrument())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(obs.Handler()))

	api := r.Group("/api/objects")
	api.Use(JWTAuth(cfg.SecretKey))
	{
		api.POST("/upload", h.UploadProfile)
		api.POST("/upload-resume", h.UploadResume)
		api.POST("/upload-document", h.UploadDocument)
		api.POST("/commit", h.Commit)
		api.GET("/policy", h.GetPolicy)
	}

	objects := r.Group("/objects")
	objects.Use(JWTAuth(cfg.SecretKey))
	{
		objects.GET("/*path", h.FetchObject)
	}

	return r
}
