package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/domain/services"
	"github.com/ersonp/campaign-core/internal/infrastructure/config"
	"github.com/ersonp/campaign-core/internal/infrastructure/logging"
	"github.com/ersonp/campaign-core/internal/infrastructure/password"
	"github.com/ersonp/campaign-core/internal/infrastructure/relationaldb/sqlite"
	sessionmemory "github.com/ersonp/campaign-core/internal/infrastructure/session/memory"
	sessionredis "github.com/ersonp/campaign-core/internal/infrastructure/session/redis"
	"github.com/ersonp/campaign-core/internal/infrastructure/storage/memory"
)

// Deps holds the wired services for commands.
type Deps struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Store       ports.Store
	Auth        *services.AuthService
	Journals    *services.JournalService
	Entities    *services.EntityService
	EntityTypes *services.EntityTypeService
	Import      *services.ImportService
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	store, err := openStore(ctx, dir, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("closing store")
		}
	}()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	types := services.NewEntityTypeService()
	deps := &Deps{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Auth:        services.NewAuthService(store, sessions, password.NewHasher(cfg.Security.BcryptCost)),
		Journals:    services.NewJournalService(store, store),
		Entities:    services.NewEntityService(store, store),
		EntityTypes: types,
		Import:      services.NewImportService(store, types),
	}

	return fn(deps)
}

// openStore creates the configured record store and ensures its schema.
func openStore(ctx context.Context, dir string, cfg config.StorageConfig) (ports.Store, error) {
	var store ports.Store
	switch cfg.Backend {
	case config.BackendSQLite:
		sqliteCfg := cfg.SQLite
		sqliteCfg.Path = config.ResolvePath(dir, sqliteCfg.Path)
		repo, err := sqlite.NewRepository(sqliteCfg)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite repository: %w", err)
		}
		store = repo
	default:
		store = memory.New()
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return store, nil
}

// openSessions creates the configured session store and its cleanup.
func openSessions(ctx context.Context, cfg *config.Config) (ports.SessionStore, func(), error) {
	if cfg.Sessions.Backend != config.BackendRedis {
		return sessionmemory.New(cfg.Server.SessionTTL), func() {}, nil
	}

	store := sessionredis.New(sessionredis.NewClient(cfg.Sessions.Redis), cfg.Server.SessionTTL)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Sessions.Redis.Addr, err)
	}
	return store, func() { _ = store.Close() }, nil
}

// requirePersistentStore rejects commands whose effect would vanish with
// the in-memory backend.
func requirePersistentStore(d *Deps) error {
	if d.Config.Storage.Backend != config.BackendSQLite {
		return fmt.Errorf("storage backend %q is not persistent; set storage.backend to %q", d.Config.Storage.Backend, config.BackendSQLite)
	}
	return nil
}

// findUser resolves a username for commands acting on behalf of a user.
func findUser(ctx context.Context, store ports.UserStore, username string) (*entities.User, error) {
	if username == "" {
		return nil, errors.New("user is required (use --user flag)")
	}
	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, nil
}
