package config

import (
	"strconv"
	"time"
)

const (
	minBrainTimeout = 60 * time.Second
	maxBrainTimeout = 120 * time.Second
)

// Brain configures the gateway and the direct-provider backup.
type Brain struct {
	GatewayBaseURL string
	GatewayAPIKey  string
	GatewayModel   string

	BackupAPIKey     string
	BackupModel      string
	BackupAutoSelect bool

	Temperature float64
	Timeout     time.Duration
}

// LoadBrain reads the Brain Client configuration. The timeout is clamped to
// the 60-120s window.
func LoadBrain() Brain {
	temp := 0.7
	if raw := GetSetting("brain_temperature", "BRAIN_TEMPERATURE", ""); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 2 {
			temp = v
		}
	}

	timeout := getSecondsSetting("brain_timeout_seconds", "BRAIN_TIMEOUT", 90*time.Second)
	if timeout < minBrainTimeout {
		timeout = minBrainTimeout
	}
	if timeout > maxBrainTimeout {
		timeout = maxBrainTimeout
	}

	return Brain{
		GatewayBaseURL:   GetSetting("gateway_base_url", "GATEWAY_BASE_URL", ""),
		GatewayAPIKey:    GetSetting("gateway_api_key", "GATEWAY_API_KEY", ""),
		GatewayModel:     GetSetting("gateway_model", "GATEWAY_MODEL", "auto"),
		BackupAPIKey:     GetSetting("backup_api_key", "GOOGLE_API_KEY", ""),
		BackupModel:      GetSetting("backup_model", "BACKUP_MODEL", ""),
		BackupAutoSelect: getBoolSetting("backup_auto_select", "BACKUP_AUTO_SELECT", true),
		Temperature:      temp,
		Timeout:          timeout,
	}
}
