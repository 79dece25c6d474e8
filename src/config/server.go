package config

import (
	"strings"
	"time"
)

// Server configures the webhook/health HTTP server.
type Server struct {
	Port          string
	PublicBaseURL string
	SelfPing      bool
	PingInterval  time.Duration
	JWTSecret     string
	CORSOrigins   []string
}

// LoadServer derives the public URL from PUBLIC_BASE_URL or, on Render, from
// RENDER_EXTERNAL_HOSTNAME. An empty URL means the bots long-poll instead.
func LoadServer() Server {
	base := strings.TrimRight(GetSetting("public_base_url", "PUBLIC_BASE_URL", ""), "/")
	if base == "" {
		if host := GetSetting("render_external_hostname", "RENDER_EXTERNAL_HOSTNAME", ""); host != "" {
			base = "https://" + host
		}
	}

	return Server{
		Port:          GetSetting("port", "PORT", "10000"),
		PublicBaseURL: base,
		SelfPing:      getBoolSetting("self_ping_enabled", "SELF_PING_ENABLED", true),
		PingInterval:  getSecondsSetting("self_ping_interval_seconds", "SELF_PING_INTERVAL", 10*time.Minute),
		JWTSecret:     GetSetting("admin_jwt_secret", "ADMIN_JWT_SECRET", ""),
		CORSOrigins:   parseCSV(GetSetting("cors_origins", "CORS_ORIGINS", "*")),
	}
}
