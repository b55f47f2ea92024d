package cmd

import (
	"context"
	"fmt"
	"net/http"

	"flow-vault/core/archive"
	"flow-vault/core/config"
	"flow-vault/core/database"
	"flow-vault/core/logger"
	"flow-vault/core/models"
	"flow-vault/core/platform"
	"flow-vault/core/secret"
	"flow-vault/core/storage"
	"flow-vault/core/versionstore"
	"flow-vault/feature/orchestrator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime is everything a command needs, built once from configuration.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   *versionstore.Store
	storage storage.Client
	archive *archive.Archiver
}

// bootstrap loads configuration, connects the version store and migrates it.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to version store: %w", err)
	}

	store := versionstore.New(db, logg)
	if err := store.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate version store: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg, db: db, store: store}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		rt.storage = client
		rt.archive = archive.New(client, cfg.Storage, logg)
	}
	return rt, nil
}

func (rt *runtime) close() {
	_ = rt.logger.Sync()
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// sealer loads the credential identity, creating it on first use.
func (rt *runtime) sealer() (*secret.Sealer, error) {
	s, err := secret.LoadOrCreate(rt.cfg.Secrets.IdentityPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential identity: %w", err)
	}
	return s, nil
}

// dial opens a platform client for p, decrypting its credential.
func (rt *runtime) dial(p models.Profile, opts ...platform.Option) (*platform.Client, error) {
	sealer, err := rt.sealer()
	if err != nil {
		return nil, err
	}
	apiKey, err := sealer.Open(p.Credential)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential of profile %s: %w", p.Name, err)
	}
	base := []platform.Option{
		platform.WithHTTPClient(&http.Client{Timeout: rt.cfg.Engine.RequestTimeout()}),
		platform.WithLogger(rt.logger.With(zap.String("profile", p.Name))),
		platform.WithPageSize(rt.cfg.Engine.PageSize),
		platform.WithRetry(rt.cfg.Engine.RetryPolicy(0)),
	}
	return platform.New(p.URL, apiKey, append(base, opts...)...)
}

// endpoint resolves a profile by name (or the default) and dials it.
func (rt *runtime) endpoint(ctx context.Context, name string, opts ...platform.Option) (orchestrator.Endpoint, error) {
	p, err := rt.store.ResolveProfile(ctx, name)
	if err != nil {
		return orchestrator.Endpoint{}, err
	}
	client, err := rt.dial(*p, opts...)
	if err != nil {
		return orchestrator.Endpoint{}, err
	}
	return orchestrator.Endpoint{Profile: *p, Platform: client}, nil
}

// orchestrator builds the run orchestrator. The archive is attached when enabled.
func (rt *runtime) orchestrator(ctx context.Context) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithEngineConfig(rt.cfg.Engine),
		orchestrator.WithToolVersion(Version),
	}
	if rt.archive != nil {
		if err := rt.archive.EnsureBucket(ctx); err != nil {
			rt.logger.Warn("Archive unavailable, bundles will not be exported", zap.Error(err))
		} else {
			opts = append(opts, orchestrator.WithArchive(rt.archive))
		}
	}
	return orchestrator.New(rt.store, rt.logger, opts...)
}
