package service

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/jengzang/accident-risk-go/internal/config"
	"github.com/jengzang/accident-risk-go/internal/database"
	"github.com/jengzang/accident-risk-go/internal/engine"
	"github.com/jengzang/accident-risk-go/internal/records"
	"github.com/jengzang/accident-risk-go/internal/repository"
)

// OpenSource returns the configured raw source and a release func
func OpenSource(cfg *config.Config) (records.Source, func() error, error) {
	switch cfg.Source.Kind {
	case config.SourceCSV:
		comma, err := cfg.Source.CommaRune()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		src := &records.CSVSource{Path: cfg.Source.Path, HasHeader: cfg.Source.HasHeader, Comma: comma}
		return src, func() error { return nil }, nil
	case config.SourceSQLite, config.SourcePostgres:
		dsn := cfg.Source.Path
		if cfg.Source.Kind == config.SourcePostgres {
			dsn = cfg.Source.DSN
		}
		db, err := database.Open(database.Config{Driver: cfg.Source.Kind, DSN: dsn})
		if err != nil {
			return nil, nil, &records.LoadError{Source: cfg.Source.Kind, Err: err}
		}
		name := cfg.Source.Kind + ":" + cfg.Source.Path
		if cfg.Source.Kind == config.SourcePostgres {
			name = "postgres:accidents"
		}
		return repository.NewAccidentRepository(db, cfg.Source.Kind, name), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown source kind %q", config.ErrInvalidConfig, cfg.Source.Kind)
	}
}

// NewBuilder returns a Builder that reloads the configured source each time
func NewBuilder(cfg *config.Config) Builder {
	return func(ctx context.Context) (*engine.Engine, error) {
		ec, err := cfg.EngineConfig()
		if err != nil {
			return nil, err
		}
		src, release, err := OpenSource(cfg)
		if err != nil {
			return nil, err
		}
		defer release()

		store, err := records.Load(ctx, src, ec.Location)
		if err != nil {
			return nil, err
		}
		return engine.New(ctx, store, ec)
	}
}

// StartReloader schedules s.Reload on a cron schedule. The caller stops the returned cron.
func StartReloader(ctx context.Context, s *RiskService, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.Reload(ctx); err != nil {
			log.Printf("[Reloader] Reload failed, keeping previous engine: %v", err)
			return
		}
		log.Printf("[Reloader] Reload completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Printf("[Reloader] Scheduled dataset reload: %s", schedule)
	return c, nil
}
