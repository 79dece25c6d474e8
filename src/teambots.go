package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/teambots/teambots/src/actions"
	"github.com/teambots/teambots/src/actions/zifiles"
	aicore "github.com/teambots/teambots/src/ai/core"
	"github.com/teambots/teambots/src/ai/consilium"
	"github.com/teambots/teambots/src/ai/gemini"
	"github.com/teambots/teambots/src/ai/modelselect"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/data"
	"github.com/teambots/teambots/src/fsm"
	"github.com/teambots/teambots/src/prompts"
	"github.com/teambots/teambots/src/sheets"
	"github.com/teambots/teambots/src/stats"
	"github.com/teambots/teambots/src/tasks"
	"github.com/teambots/teambots/src/tracking"
	"github.com/teambots/teambots/src/upload"
	"github.com/teambots/teambots/src/webclient"
	"github.com/teambots/teambots/src/webserver"
	"gorm.io/gorm"
)

const (
	selectTimeout = 15 * time.Second
	stopTimeout   = 20 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}
	if err := config.LoadFile(os.Getenv("CONFIG_FILE")); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base := config.LoadBase()
	db := connectSQL(base.DatabaseDSN)
	var mongo *data.Mongo
	if base.MongoURI != "" {
		mongo = data.NewMongo(base.MongoURI, base.MongoDatabase)
	}

	httpClient := webclient.NewDefault(90 * time.Second)
	tracker := newTracker(mongo, db)
	taskStore := newTaskStore(config.LoadTasks(base), mongo, db)
	srvCfg := config.LoadServer()

	deps := actions.Deps{
		Brain:         newBrain(ctx, httpClient),
		Prompts:       prompts.New(base.ProfilesDir),
		Pipeline:      loadPipeline(config.LoadConsilium().PipelinePath),
		States:        newStateStore(base.RedisURL),
		Tracker:       tracker,
		Tasks:         taskStore,
		Sheet:         newSheet(ctx, config.LoadStaff()),
		Uploader:      newUploader(config.LoadFiles(), httpClient),
		HTTP:          httpClient,
		Consilium:     config.LoadConsilium(),
		Staff:         config.LoadStaff(),
		Files:         config.LoadFiles(),
		Admins:        config.LoadTasks(base).AdminIDs,
		PublicBaseURL: srvCfg.PublicBaseURL,
	}

	fleet, err := actions.StartAll(ctx, deps, nil)
	if err != nil {
		log.Fatalf("actions start: %v", err)
	}

	router := webserver.NewRouter(srvCfg, fleet, func(ctx context.Context) (stats.Global, error) {
		return stats.Collect(ctx, tracker, taskStore)
	})
	if srvCfg.SelfPing && srvCfg.PublicBaseURL != "" {
		go webserver.SelfPing(ctx, srvCfg.PublicBaseURL, srvCfg.PingInterval, nil)
	}
	if err := webserver.Run(ctx, srvCfg, router); err != nil {
		log.Printf("webserver: %v", err)
		stop()
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	fleet.Stop(stopCtx)
	mongo.Close(stopCtx)
}

func connectSQL(dsn string) *gorm.DB {
	if dsn == "" {
		return nil
	}
	db, err := data.ConnectSQL(dsn)
	if err != nil {
		log.Printf("db: %v", err)
		return nil
	}
	if err := data.LoadSettings(db); err != nil {
		log.Printf("db: settings: %v", err)
	}
	return db
}

// newBrain picks the backup model at startup when none is pinned.
func newBrain(ctx context.Context, httpClient *http.Client) *brain.Client {
	cfg := config.LoadBrain()
	if cfg.BackupModel == "" && cfg.BackupAutoSelect && cfg.BackupAPIKey != "" {
		fallback := aicore.DefaultModelForProvider("gemini")
		lister, err := gemini.New(aicore.FactoryConfig{Provider: "gemini", APIKey: cfg.BackupAPIKey, HTTPClient: httpClient})
		if err != nil {
			log.Printf("brain: model listing unavailable: %v", err)
			cfg.BackupModel = fallback
		} else {
			sctx, cancel := context.WithTimeout(ctx, selectTimeout)
			cfg.BackupModel = modelselect.Select(sctx, lister, fallback)
			cancel()
		}
	}
	return brain.New(cfg, nil)
}

func loadPipeline(path string) *consilium.Pipeline {
	if path == "" {
		return nil
	}
	p, err := consilium.LoadPipeline(path)
	if err != nil {
		log.Printf("consilium: %v, using the default pipeline", err)
		return nil
	}
	return p
}

func newStateStore(redisURL string) fsm.Store {
	if redisURL == "" {
		return fsm.NewMemoryStore(fsm.DefaultTTL)
	}
	rdb, err := data.Redis(redisURL)
	if err != nil {
		log.Printf("fsm: %v, keeping dialogs in memory", err)
		return fsm.NewMemoryStore(fsm.DefaultTTL)
	}
	return fsm.NewRedisStore(rdb, fsm.DefaultTTL)
}

func newTracker(mongo *data.Mongo, db *gorm.DB) tracking.Tracker {
	switch {
	case mongo != nil:
		return tracking.NewMongoTracker(mongo)
	case db != nil:
		t, err := tracking.NewSQLTracker(db)
		if err != nil {
			log.Printf("tracking: %v", err)
			return tracking.Nop{}
		}
		return t
	}
	return tracking.Nop{}
}

func newTaskStore(cfg config.Tasks, mongo *data.Mongo, db *gorm.DB) tasks.Store {
	switch {
	case cfg.Backend == "mongo" && mongo != nil:
		return tasks.NewMongoStore(mongo)
	case cfg.Backend == "sql" && db != nil:
		s, err := tasks.NewSQLStore(db)
		if err == nil {
			return s
		}
		log.Printf("tasks: %v", err)
	case cfg.Backend != "memory":
		log.Printf("tasks: backend %q not available", cfg.Backend)
	}
	log.Printf("tasks: keeping tasks in memory")
	return tasks.NewMemoryStore()
}

func newSheet(ctx context.Context, cfg config.Staff) sheets.Appender {
	if cfg.SpreadsheetID == "" {
		return nil
	}
	opts, err := sheets.CredentialOptions(cfg.CredentialsFile, cfg.CredentialsJSON)
	if err != nil {
		log.Printf("sheets: %v", err)
		return nil
	}
	g, err := sheets.NewGoogle(ctx, cfg.SpreadsheetID, cfg.SheetRange, opts...)
	if err != nil {
		log.Printf("sheets: %v", err)
		return nil
	}
	return g
}

func newUploader(cfg config.Files, httpClient *http.Client) zifiles.Uploader {
	u := upload.New(cfg.UploadURL, cfg.UploadKey, httpClient)
	if !u.Configured() {
		log.Printf("upload: REPORT_UPLOAD_URL/KEY not set, reports go out as files")
		return nil
	}
	return u
}
