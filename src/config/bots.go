package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Bot holds what every Telegram bot needs to register.
type Bot struct {
	Name    string
	Token   string
	Enabled bool
	// WebhookSecret is the last webhook path segment. Updates posted
	// without it are refused.
	WebhookSecret string
	WebhookPath   string
}

// LoadBot follows the folder convention: bot "zi_files" reads TOKEN_ZI_FILES
// and may be switched off with ENABLE_ZI_FILES=false. WEBHOOK_SECRET_ZI_FILES
// overrides the secret derived from the token.
func LoadBot(name string) Bot {
	upper := strings.ToUpper(name)
	token := GetSetting("token_"+name, "TOKEN_"+upper, "")
	secret := GetSetting("webhook_secret_"+name, "WEBHOOK_SECRET_"+upper, "")
	if secret == "" && token != "" {
		secret = WebhookSecret(token)
	}
	return Bot{
		Name:          name,
		Token:         token,
		Enabled:       getBoolSetting("enable_"+name, "ENABLE_"+upper, true),
		WebhookSecret: secret,
		WebhookPath:   "/webhook/" + name + "/" + secret,
	}
}

// WebhookSecret derives a stable URL-safe secret from a bot token.
func WebhookSecret(token string) string {
	sum := sha256.Sum256([]byte("webhook:" + token))
	return hex.EncodeToString(sum[:16])
}

// Consilium tunes the AI team pipeline.
type Consilium struct {
	PipelinePath string
	Cooldown     time.Duration
	Trigger      string
}

func LoadConsilium() Consilium {
	return Consilium{
		PipelinePath: GetSetting("consilium_pipeline", "CONSILIUM_PIPELINE", ""),
		Cooldown:     getSecondsSetting("consilium_cooldown_seconds", "CONSILIUM_COOLDOWN", 30*time.Second),
		Trigger:      GetSetting("consilium_trigger", "CONSILIUM_TRIGGER", "ребята"),
	}
}

// Staff configures the shift report spreadsheet.
type Staff struct {
	PriceAdult      int
	PriceDiscount   int
	SpreadsheetID   string
	SheetRange      string
	CredentialsFile string
	CredentialsJSON string
}

func LoadStaff() Staff {
	return Staff{
		PriceAdult:      getIntSetting("price_adult", "PRICE_ADULT", 160),
		PriceDiscount:   getIntSetting("price_discount", "PRICE_DISCOUNT", 100),
		SpreadsheetID:   GetSetting("spreadsheet_id", "SPREADSHEET_ID", ""),
		SheetRange:      GetSetting("sheet_range", "SHEET_RANGE", "A:G"),
		CredentialsFile: GetSetting("google_credentials_file", "GOOGLE_CREDENTIALS_FILE", ""),
		CredentialsJSON: GetSetting("google_credentials_json", "GOOGLE_CREDENTIALS_JSON", ""),
	}
}

// Files configures the document editor bot.
type Files struct {
	UploadURL string
	UploadKey string
	MaxChars  int
	MaxBytes  int64
}

func LoadFiles() Files {
	return Files{
		UploadURL: GetSetting("report_upload_url", "REPORT_UPLOAD_URL", ""),
		UploadKey: GetSetting("report_upload_key", "REPORT_UPLOAD_KEY", ""),
		MaxChars:  getIntSetting("files_max_chars", "FILES_MAX_CHARS", 15000),
		MaxBytes:  int64(getIntSetting("files_max_bytes", "FILES_MAX_BYTES", 20<<20)),
	}
}

// Tasks configures the secretary bot.
type Tasks struct {
	Backend  string
	AdminIDs []int64
}

// LoadTasks picks the task backend: "mongo", "sql" or "memory". When unset it
// follows whichever store is configured, preferring Mongo.
func LoadTasks(base Base) Tasks {
	backend := strings.ToLower(GetSetting("tasks_backend", "TASKS_BACKEND", ""))
	if backend == "" {
		switch {
		case base.MongoURI != "":
			backend = "mongo"
		case base.DatabaseDSN != "":
			backend = "sql"
		default:
			backend = "memory"
		}
	}

	var admins []int64
	for _, raw := range parseCSV(GetSetting("admin_ids", "ADMIN_IDS", "")) {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			admins = append(admins, id)
		}
	}
	return Tasks{Backend: backend, AdminIDs: admins}
}
