package webserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	adminWindow  = time.Minute
	statsTimeout = 5 * time.Second
)

type Health struct {
	fleet       Fleet
	pingEnabled bool
}

func NewHealth(fleet Fleet, pingEnabled bool) Health {
	return Health{fleet: fleet, pingEnabled: pingEnabled}
}

func (h Health) Status(c *gin.Context) {
	names := h.fleet.Names()
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"bots_active":  len(names),
		"bots":         names,
		"ping_enabled": h.pingEnabled,
	})
}

type Webhooks struct {
	fleet Fleet
}

func NewWebhooks(fleet Fleet) Webhooks {
	return Webhooks{fleet: fleet}
}

// Receive acknowledges immediately; the bot handles the update in the
// background so Telegram never waits on the brain.
func (w Webhooks) Receive(c *gin.Context) {
	name := c.Param("bot")
	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid update"})
		return
	}
	if !w.fleet.Deliver(name, c.Param("secret"), upd) {
		log.Printf("webserver: update %d refused for bot %q from %s", upd.UpdateID, name, c.ClientIP())
		c.JSON(http.StatusNotFound, gin.H{"err": "unknown bot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type Admin struct {
	collect StatsFunc
}

func NewAdmin(collect StatsFunc) Admin {
	return Admin{collect: collect}
}

func (a Admin) Stats(c *gin.Context) {
	if a.collect == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "stats not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
	defer cancel()
	g, err := a.collect(ctx)
	if err != nil {
		log.Printf("webserver: admin %s stats: %v", c.GetString("sub"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, g)
}
