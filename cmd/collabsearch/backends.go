package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/authz"
	"github.com/kailas-cloud/collabsearch/internal/config"
	dbRedis "github.com/kailas-cloud/collabsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/collabsearch/internal/logger"
	"github.com/kailas-cloud/collabsearch/internal/relational"
	entityrepo "github.com/kailas-cloud/collabsearch/internal/repository/entity"
	searchrepo "github.com/kailas-cloud/collabsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/collabsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/collabsearch/internal/usecase/search"
)

// backends holds the connections every command shares. Fields a command did
// not ask for stay nil.
type backends struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	engine *dbRedis.Store
	db     *relational.DB
	router *searchrepo.Router
}

type backendNeeds struct {
	engine     bool
	relational bool
}

func openBackends(ctx context.Context, c *cli.Command, needs backendNeeds) (*backends, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	b := &backends{
		env:    env,
		cfg:    cfg,
		logger: logger,
		router: searchrepo.NewRouter(cfg.Search.IndexPattern),
	}

	if needs.engine {
		b.engine, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.SearchEngine.Addrs,
			Username: cfg.SearchEngine.Username,
			Password: cfg.SearchEngine.Password,
			DB:       cfg.SearchEngine.DB,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("creating search engine store: %w", err)
		}
		timeout := time.Duration(cfg.SearchEngine.ReadinessTimeout) * time.Second
		if err := b.engine.WaitForReady(ctx, timeout); err != nil {
			b.Close()
			return nil, fmt.Errorf("search engine not ready: %w", err)
		}
		logger.Info("Connected to search engine", zap.Strings("addrs", cfg.SearchEngine.Addrs))
	}

	if needs.relational {
		b.db, err = relational.Open(ctx, relational.Config{
			Driver:          relational.Driver(cfg.Relational.Driver),
			DSN:             cfg.Relational.DSN,
			MaxOpenConns:    cfg.Relational.MaxOpenConns,
			MaxIdleConns:    cfg.Relational.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Relational.ConnMaxLifetimeSec) * time.Second,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("opening relational database: %w", err)
		}
		logger.Info("Connected to relational database", zap.String("driver", cfg.Relational.Driver))
	}

	return b, nil
}

// searchService wires the pipeline. It needs both backends.
func (b *backends) searchService() (*searchuc.Service, *entityrepo.Repo) {
	extractor := b.extractor()
	entities := entityrepo.New(b.db)

	var opts []authz.Option
	if b.cfg.Auth.AdminBypass {
		opts = append(opts, authz.WithAdminBypass())
	}

	svc := searchuc.New(extractor, entities, authz.New(opts...),
		searchuc.WithMaxPageSize(b.cfg.Search.MaxPageSize))
	return svc, entities
}

// extractor runs against the search engine, or fails every search with
// domain.ErrSearchEngineNotConfigured when the engine was not opened.
func (b *backends) extractor() *searchrepo.Repo {
	cfg := searchrepo.Config{
		MaxResults:     b.cfg.Search.MaxResults,
		SizeMultiplier: b.cfg.Search.SizeMultiplier,
	}
	if b.engine == nil {
		return searchrepo.New(nil, b.router, cfg)
	}
	return searchrepo.New(b.engine, b.router, cfg)
}

// healthService checks only the backends this command opened. A nil
// *Store or *DB must not reach the interface parameters as a typed nil.
func (b *backends) healthService() *healthuc.Service {
	var engine, db healthuc.Pinger
	if b.engine != nil {
		engine = b.engine
	}
	if b.db != nil {
		db = b.db
	}
	return healthuc.New(engine, db)
}

func (b *backends) Close() {
	if b.engine != nil {
		b.engine.Close()
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			b.logger.Warn("closing relational database", zap.Error(err))
		}
	}
	_ = b.logger.Sync()
}
