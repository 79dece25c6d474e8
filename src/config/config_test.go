package config

import (
	"testing"
	"time"
)

func TestLoadBotFollowsFolderConvention(t *testing.T) {
	t.Setenv("TOKEN_ZI_FILES", "123:abc")
	t.Setenv("ENABLE_ZI_FILES", "false")

	bot := LoadBot("zi_files")
	if bot.Token != "123:abc" {
		t.Errorf("token = %q", bot.Token)
	}
	if bot.Enabled {
		t.Error("bot should be disabled")
	}
	if len(bot.WebhookSecret) != 32 || bot.WebhookSecret != WebhookSecret("123:abc") {
		t.Errorf("secret = %q", bot.WebhookSecret)
	}
	if bot.WebhookPath != "/webhook/zi_files/"+bot.WebhookSecret {
		t.Errorf("webhook path = %q", bot.WebhookPath)
	}
}

func TestLoadBotWebhookSecretOverride(t *testing.T) {
	t.Setenv("TOKEN_SKEPTIC", "123:abc")
	t.Setenv("WEBHOOK_SECRET_SKEPTIC", "s3cret")
	if got := LoadBot("skeptic").WebhookPath; got != "/webhook/skeptic/s3cret" {
		t.Errorf("webhook path = %q", got)
	}
	if WebhookSecret("1:a") == WebhookSecret("1:b") {
		t.Error("secrets must differ per token")
	}
}

func TestLoadBrainClampsTimeout(t *testing.T) {
	t.Setenv("BRAIN_TIMEOUT", "5")
	if got := LoadBrain().Timeout; got != minBrainTimeout {
		t.Errorf("timeout = %s, want %s", got, minBrainTimeout)
	}
	t.Setenv("BRAIN_TIMEOUT", "600")
	if got := LoadBrain().Timeout; got != maxBrainTimeout {
		t.Errorf("timeout = %s, want %s", got, maxBrainTimeout)
	}
	t.Setenv("BRAIN_TIMEOUT", "")
	if got := LoadBrain().Timeout; got != 90*time.Second {
		t.Errorf("default timeout = %s", got)
	}
}

func TestLoadBrainDefaults(t *testing.T) {
	cfg := LoadBrain()
	if cfg.GatewayModel != "auto" {
		t.Errorf("model = %q, want auto", cfg.GatewayModel)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}
}

func TestLoadTasksBackend(t *testing.T) {
	if got := LoadTasks(Base{MongoURI: "mongodb://x"}).Backend; got != "mongo" {
		t.Errorf("backend = %q", got)
	}
	if got := LoadTasks(Base{DatabaseDSN: "postgres://x"}).Backend; got != "sql" {
		t.Errorf("backend = %q", got)
	}
	if got := LoadTasks(Base{}).Backend; got != "memory" {
		t.Errorf("backend = %q", got)
	}

	t.Setenv("ADMIN_IDS", "42, 7;bad")
	ids := LoadTasks(Base{}).AdminIDs
	if len(ids) != 2 || ids[0] != 42 || ids[1] != 7 {
		t.Errorf("admin ids = %v", ids)
	}
}

func TestLoadServerRenderHostname(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("RENDER_EXTERNAL_HOSTNAME", "bots.onrender.com")
	if got := LoadServer().PublicBaseURL; got != "https://bots.onrender.com" {
		t.Errorf("base url = %q", got)
	}
}
