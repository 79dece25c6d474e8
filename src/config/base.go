package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/teambots/teambots/src/data"
)

func init() {
	viper.AutomaticEnv()
}

// LoadFile merges an optional YAML/JSON/TOML file under the environment.
func LoadFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	log.Printf("config: loaded %s", viper.ConfigFileUsed())
	return nil
}

// Base contains the storage endpoints shared by every bot.
type Base struct {
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	ProfilesDir   string
}

func LoadBase() Base {
	return Base{
		DatabaseDSN:   GetSetting("database_dsn", "DATABASE_DSN", ""),
		MongoURI:      GetSetting("mongo_uri", "MONGO_URI", ""),
		MongoDatabase: GetSetting("mongo_database", "MONGO_DATABASE", "nezabudka_ai"),
		RedisURL:      GetSetting("redis_url", "REDIS_URL", ""),
		ProfilesDir:   GetSetting("profiles_dir", "PROFILES_DIR", ""),
	}
}

// GetSetting retrieves a setting with env fallback
func GetSetting(name, envKey, defaultValue string) string {
	val := data.GetSetting(name)
	if val == "" {
		val = strings.TrimSpace(viper.GetString(envKey))
	}
	if val == "" {
		val = defaultValue
	}
	return val
}

func getBoolSetting(name, envKey string, defaultValue bool) bool {
	raw := strings.ToLower(GetSetting(name, envKey, ""))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getIntSetting(name, envKey string, defaultValue int) int {
	raw := GetSetting(name, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", envKey, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getSecondsSetting(name, envKey string, defaultValue time.Duration) time.Duration {
	secs := getIntSetting(name, envKey, int(defaultValue/time.Second))
	if secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

func parseCSV(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
