package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atkhates/BANK-LOMITA/internal/config"
	"github.com/atkhates/BANK-LOMITA/internal/logging"
	"github.com/atkhates/BANK-LOMITA/pkg/discord"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	configRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/approval"
	"github.com/atkhates/BANK-LOMITA/pkg/services/ledger"
	"github.com/atkhates/BANK-LOMITA/pkg/scheduler"
	"github.com/atkhates/BANK-LOMITA/pkg/services/mirror"
	"github.com/atkhates/BANK-LOMITA/pkg/services/registration"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := logging.Default
	if cfg.IsDevelopment() {
		logger = logging.NewLogger(logging.DEBUG)
		logging.Default = logger
	}

	accounts := newAccountRepository(cfg, logger)

	overrides, err := configRepo.NewJSONStore(filepath.Join(cfg.DataDir, "guildConfigs.json"))
	if err != nil {
		log.Fatalf("Error opening scope config store: %v", err)
	}
	resolver := configSvc.NewResolver(overrides)

	dispatcher := newMirrorDispatcher(cfg, logger)

	registrationSvc := registration.NewService(accounts, resolver, nil, dispatcher)
	approvalSvc := approval.NewService(accounts, resolver, nil, nil, dispatcher)
	ledgerSvc := ledger.NewService(accounts, resolver, nil, dispatcher)

	// All three services write whole account records to the same store, so
	// they must serialize on one per-holder lock table.
	locks := accountRepo.NewLockTable()
	registrationSvc.SetLockTable(locks)
	approvalSvc.SetLockTable(locks)
	ledgerSvc.SetLockTable(locks)

	bot, err := discord.NewBot(cfg.Token, discord.Services{
		Accounts:     accounts,
		Resolver:     resolver,
		Registration: registrationSvc,
		Approval:     approvalSvc,
		Ledger:       ledgerSvc,
	})
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	// The authorizer and notifier exist only once the session does, so the
	// services get them after bot construction.
	registrationSvc.SetNotifier(bot.Notifier())
	approvalSvc.SetNotifier(bot.Notifier())
	approvalSvc.SetAuthorizer(bot.Authorizer())
	ledgerSvc.SetAuthorizer(bot.Authorizer())
	ledgerSvc.SetSystemIdentityCheck(bot.IsSystemIdentity)

	if err := bot.Start(); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	// Background maintenance: abandoned registration forms expire after an hour
	maintenance := scheduler.NewScheduler()
	maintenance.AddTask("draft_expiry", 10*time.Minute, func(ctx context.Context) error {
		registrationSvc.ExpireStale(time.Hour)
		return nil
	})
	maintenance.Start(context.Background())

	logger.Info("Bot is running. Press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	maintenance.Stop()
	if err := bot.Stop(); err != nil {
		logger.Error("Error stopping bot: %v", err)
	}
	dispatcher.Close()
	if err := overrides.Close(); err != nil {
		logger.Error("Error closing scope config store: %v", err)
	}
}

// newAccountRepository picks the account store from configuration, falling
// back to the in-memory store when the durable one cannot be opened.
func newAccountRepository(cfg *config.Config, logger *logging.Logger) accountRepo.Repository {
	switch cfg.StorageType {
	case "sqlite":
		dbPath := filepath.Join(cfg.DataDir, "bank.db")
		repo, err := accountRepo.NewSQLiteRepository(dbPath)
		if err != nil {
			logger.Error("Error opening SQLite store at %s: %v", dbPath, err)
			logger.Warn("Falling back to in-memory account store")
			return accountRepo.NewMemoryRepository()
		}
		logger.Info("Using SQLite account store at %s", dbPath)
		return repo
	case "memory":
		logger.Warn("Using in-memory account store (data is lost on restart)")
		return accountRepo.NewMemoryRepository()
	default:
		repo, err := accountRepo.NewJSONRepository(cfg.DataDir)
		if err != nil {
			logger.Error("Error opening JSON store in %s: %v", cfg.DataDir, err)
			logger.Warn("Falling back to in-memory account store")
			return accountRepo.NewMemoryRepository()
		}
		logger.Info("Using JSON account store in %s", cfg.DataDir)
		return repo
	}
}

// newMirrorDispatcher assembles the best-effort mirror pipeline
func newMirrorDispatcher(cfg *config.Config, logger *logging.Logger) *mirror.Dispatcher {
	var sinks []mirror.Sink

	switch cfg.MirrorType {
	case "elasticsearch":
		sink, err := mirror.NewElasticsearchSink(&mirror.ElasticsearchConfig{
			URL:         cfg.MirrorURL,
			Username:    cfg.MirrorUser,
			Password:    cfg.MirrorPass,
			IndexPrefix: cfg.MirrorPrefix,
			Timeout:     5 * time.Second,
		})
		if err != nil {
			logger.Error("Error creating Elasticsearch mirror: %v", err)
			logger.Warn("Mirroring to the log instead")
			sinks = append(sinks, mirror.NewLogSink())
		} else {
			logger.Info("Mirroring to Elasticsearch at %s", cfg.MirrorURL)
			sinks = append(sinks, sink)
		}
	case "log":
		sinks = append(sinks, mirror.NewLogSink())
	}

	return mirror.NewDispatcher(256, sinks...)
}
