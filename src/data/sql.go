package data

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect returns the gorm dialect for a DSN: postgres:// and postgresql://
// URLs go to Postgres, mysql:// to MySQL and sqlite:, file: or *.db to SQLite.
func Dialect(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("data: empty DSN")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"), strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(lower, "mysql://"):
		return mysql.Open(mysqlParams(dsn[len("mysql://"):])), nil
	case strings.HasPrefix(lower, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn[len("sqlite:"):], "//")), nil
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), dsn == ":memory:":
		return sqlite.Open(dsn), nil
	case strings.Contains(dsn, "@tcp("):
		return mysql.Open(mysqlParams(dsn)), nil
	}
	return nil, fmt.Errorf("data: unsupported DSN scheme")
}

// ConnectSQL opens a gorm DB with the warn-level logger used across the bots.
func ConnectSQL(dsn string) (*gorm.DB, error) {
	dialector, err := Dialect(dsn)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{SlowThreshold: time.Second, LogLevel: logger.Warn, IgnoreRecordNotFoundError: true, Colorful: false},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("data: open: %w", err)
	}
	return db, nil
}

func mysqlParams(dsn string) string {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
		dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
	}
	return dsn
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}
