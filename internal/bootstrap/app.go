package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"dockeeper-backend/internal/documents"
	"dockeeper-backend/internal/llm"
	"dockeeper-backend/internal/llm/gemini"
	"dockeeper-backend/internal/shared/config"
	"dockeeper-backend/internal/shared/server"
	"dockeeper-backend/internal/shared/storage/db"
	"dockeeper-backend/internal/shared/storage/object"
	localstore "dockeeper-backend/internal/shared/storage/object/local"
	s3store "dockeeper-backend/internal/shared/storage/object/s3"
	"dockeeper-backend/internal/shared/telemetry"
	"dockeeper-backend/internal/users"
)

// App is the wired application.
type App struct {
	Router *gin.Engine
	DB     *sql.DB
}

// Build connects external dependencies and wires repositories, services,
// handlers, and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			if cfg.Env == "production" {
				return nil, fmt.Errorf("connect database: %w", err)
			}
			telemetry.Warn("db.unavailable", map[string]any{"err": err.Error()})
		} else {
			if err := db.RunMigrations(ctx, conn); err != nil {
				if cfg.Env == "production" {
					return nil, fmt.Errorf("run migrations: %w", err)
				}
				telemetry.Warn("db.migrations_failed", map[string]any{"err": err.Error()})
				conn.Close()
				conn = nil
			}
			sqlDB = conn
		}
	} else if cfg.Env == "production" {
		return nil, fmt.Errorf("DATABASE_URL is required in production")
	}

	store, localDir, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	model := buildModel(cfg)

	var userRepo users.Repo
	var docRepo documents.Repo
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		docRepo = &documents.PGRepo{DB: sqlDB}
	} else {
		telemetry.Warn("storage.memory_fallback", map[string]any{"env": cfg.Env})
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
	}

	userHandler := &users.Handler{Service: &users.Service{Repo: userRepo}}
	docHandler := &documents.Handler{Service: &documents.Service{
		Repo:  docRepo,
		Store: store,
		LLM:   model,
	}}

	router := server.NewRouter(server.Deps{
		Config:        cfg,
		Users:         userHandler,
		Documents:     docHandler,
		LocalFilesDir: localDir,
	})

	return &App{Router: router, DB: sqlDB}, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, string, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, "", fmt.Errorf("init s3 store: %w", err)
		}
		return store, "", nil
	default:
		store := localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL)
		return store, cfg.LocalStoreDir, nil
	}
}

func buildModel(cfg config.Config) llm.Client {
	if cfg.GeminiAPIKey == "" {
		telemetry.Warn("model.not_configured", map[string]any{"env": cfg.Env})
		return llm.PlaceholderClient{}
	}
	client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		telemetry.Warn("model.init_failed", map[string]any{"err": err.Error()})
		return llm.PlaceholderClient{}
	}
	return client
}
