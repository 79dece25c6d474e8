package data

import (
	"path/filepath"
	"testing"
)

func TestDialect(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/bots":   "postgres",
		"postgresql://u:p@localhost/bots":      "postgres",
		"mysql://u:p@tcp(localhost:3306)/bots": "mysql",
		"u:p@tcp(localhost:3306)/bots":         "mysql",
		"sqlite://tmp/bots.db":                 "sqlite",
		"file::memory:?cache=shared":           "sqlite",
		"host=localhost user=u dbname=bots":    "postgres",
	}
	for dsn, want := range cases {
		d, err := Dialect(dsn)
		if err != nil {
			t.Fatalf("%s: %v", dsn, err)
		}
		if d.Name() != want {
			t.Errorf("%s: dialect %s, want %s", dsn, d.Name(), want)
		}
	}
	if _, err := Dialect("redis://localhost"); err == nil {
		t.Error("expected error for redis DSN")
	}
}

func TestEnsureParam(t *testing.T) {
	got := mysqlParams("u:p@tcp(h:3306)/db")
	want := "u:p@tcp(h:3306)/db?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci"
	if got != want {
		t.Fatalf("mysqlParams = %q", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db, err := ConnectSQL(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("ConnectSQL: %v", err)
	}
	if err := db.AutoMigrate(&Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Create(&Setting{Name: "gateway_model", Value: "gpt-4o-mini", Active: 1})
	db.Create(&Setting{Name: "disabled", Value: "x", Active: 0})
	db.Model(&Setting{}).Where("name = ?", "disabled").Update("active", 0)

	if err := LoadSettings(db); err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got := GetSetting("gateway_model"); got != "gpt-4o-mini" {
		t.Errorf("gateway_model = %q", got)
	}
	if got := GetSetting("disabled"); got != "" {
		t.Errorf("inactive setting leaked: %q", got)
	}
}
