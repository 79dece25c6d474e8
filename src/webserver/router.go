// Package webserver receives Telegram webhooks and serves health and admin
// endpoints.
package webserver

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/stats"
)

// Fleet is the set of bots webhooks are delivered to.
type Fleet interface {
	Names() []string
	Deliver(name, secret string, upd tgbotapi.Update) bool
}

// StatsFunc collects the global counters for /admin/stats.
type StatsFunc func(ctx context.Context) (stats.Global, error)

// NewRouter builds the gin engine.
func NewRouter(cfg config.Server, fleet Fleet, collect StatsFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	attachRoutes(r, cfg, fleet, collect)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Server, fleet Fleet, collect StatsFunc) {
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	health := NewHealth(fleet, cfg.SelfPing)
	r.GET("/", health.Status)
	r.GET("/health", health.Status)

	hooks := NewWebhooks(fleet)
	r.POST("/webhook/:bot/:secret", hooks.Receive)

	admin := r.Group("/admin")
	admin.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(NewRateLimiter(30, adminWindow)))
	{
		adminH := NewAdmin(collect)
		admin.GET("/stats", adminH.Stats)
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}
