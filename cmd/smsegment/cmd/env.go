package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/qhosting/smsegment/internal/core/config"
	"github.com/qhosting/smsegment/internal/core/db"
	"github.com/qhosting/smsegment/internal/core/logging"
	"github.com/qhosting/smsegment/internal/core/store"
)

// env bundles the shared dependencies every subcommand needs.
type env struct {
	cfg      *config.SegmenterConfig
	log      *zap.Logger
	db       *sqlx.DB
	contacts *store.ContactStore
	lists    *store.ListStore
}

// setup loads config, opens the database and constructs the stores.
// Flag values override config file and environment per the documented
// precedence.
func setup() (*env, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("--db-url required (or SEG_SEGMENTER_DATABASE_URL)")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}

	return &env{
		cfg:      cfg,
		log:      log,
		db:       database,
		contacts: store.NewContactStore(queries, log),
		lists:    store.NewListStore(queries, log),
	}, nil
}

func (e *env) close() {
	e.log.Sync()
	e.db.Close()
}
