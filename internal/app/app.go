package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/clubkit/clubkit/internal/backup"
	"github.com/clubkit/clubkit/internal/config"
	"github.com/clubkit/clubkit/internal/infrastructure/repository/records"
	"github.com/clubkit/clubkit/internal/integrity"
	"github.com/clubkit/clubkit/internal/interfaces/httpapi"
	"github.com/clubkit/clubkit/internal/invite"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/platform/logging"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
	"github.com/clubkit/clubkit/internal/usecase"
)

// App owns the wired object graph: the store, the backup machinery and the
// HTTP server around them.
type App struct {
	cfg        config.Config
	logger     *logging.Logger
	store      *recordstore.Store
	engine     *backup.Engine
	scheduler  *backup.Scheduler
	checker    *integrity.Checker
	replicator replicate.Replicator
	server     *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := recordstore.Open(ctx, filepath.Join(cfg.DataDir, "clubkit.db"), cfg.SchemaVersion, logger)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	var replicator replicate.Replicator = replicate.Noop{}
	if cfg.ReplicationEnabled {
		async, err := replicate.NewAsync(cfg.ReplicationEndpoint, cfg.ReplicationWorkers, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("build replicator: %w", err)
		}
		replicator = async
	}

	slots, err := backup.NewFileSlotStore(filepath.Join(cfg.DataDir, "backup"), cfg.BackupBudgetBytes)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build slot store: %w", err)
	}
	engine := backup.NewEngine(store, slots, cfg.BackupBudgetBytes, cfg.SchemaVersion, logger).
		WithSkipThreshold(cfg.BackupSkipThresholdPct)
	scheduler := backup.NewScheduler(engine, cfg.BackupInterval, logger)
	checker := integrity.NewChecker(store)

	userRepo := records.NewUserRepository(store)
	groupRepo := records.NewGroupRepository(store)
	playerRepo := records.NewPlayerRepository(store)
	matchRepo := records.NewMatchRepository(store)
	invitationRepo := records.NewInvitationRepository(store)
	settingRepo := records.NewSettingRepository(store)

	idGen := idgen.NewRandomGenerator()
	codec := invite.NewCodec()
	resolver := invite.NewResolver(groupRepo, invite.DefaultStrategies(), logger)
	share := invite.NewShareBuilder(cfg.ShareOrigin, codec)

	userSvc := usecase.NewUserService(userRepo, idGen, replicator)
	groupSvc := usecase.NewGroupService(groupRepo, idGen, share, replicator)
	joinSvc := usecase.NewJoinService(userRepo, groupRepo, codec, resolver, replicator)
	playerSvc := usecase.NewPlayerService(playerRepo, groupRepo, idGen, replicator)
	matchSvc := usecase.NewMatchService(matchRepo, groupRepo, idGen, replicator)
	invitationSvc := usecase.NewInvitationService(invitationRepo, groupRepo, idGen, replicator)
	settingSvc := usecase.NewSettingService(settingRepo, replicator)

	handler := httpapi.NewHandler(userSvc, groupSvc, joinSvc, playerSvc, matchSvc, invitationSvc, settingSvc, checker, engine, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		store.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		engine:     engine,
		scheduler:  scheduler,
		checker:    checker,
		replicator: replicator,
		server:     server,
	}, nil
}

// Bootstrap brings a fresh or crashed installation back to a usable state:
// an empty store is restored from the newest readable snapshot, and the
// result is integrity-checked either way.
func (a *App) Bootstrap(ctx context.Context) error {
	counts, err := a.store.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		restored, err := a.engine.RestoreSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("restore on bootstrap: %w", err)
		}
		if restored {
			a.logger.InfoContext(ctx, "empty store restored from snapshot")
		} else {
			a.logger.InfoContext(ctx, "fresh installation, no snapshot to restore")
		}
	}

	report, err := a.checker.Check(ctx)
	if err != nil {
		return fmt.Errorf("integrity check on bootstrap: %w", err)
	}
	if report.Healthy {
		a.logger.InfoContext(ctx, "integrity check passed", "stats", report.Stats)
	} else {
		a.logger.WarnContext(ctx, "integrity check found issues", "issues", len(report.Issues))
	}

	return nil
}

func (a *App) Server() *http.Server {
	return a.server
}

// StartBackground launches the snapshot scheduler.
func (a *App) StartBackground(ctx context.Context) {
	a.scheduler.Start(ctx)
}

// Shutdown stops background work and releases the store. The HTTP server
// is shut down by the caller first so no request races the close.
func (a *App) Shutdown(ctx context.Context) error {
	a.scheduler.Stop()
	a.replicator.Close()
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close record store: %w", err)
	}
	return nil
}
