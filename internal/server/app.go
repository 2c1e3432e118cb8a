// Package server assembles the application: configuration, logging, the
// Postgres connection with migrations, the service layer and the HTTP API,
// plus signal-driven graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsmelov/securekey/internal/cryptox"
	"github.com/dsmelov/securekey/internal/logging"
	"github.com/dsmelov/securekey/internal/mailer"
	"github.com/dsmelov/securekey/internal/server/config"
	"github.com/dsmelov/securekey/internal/server/httpapi"
	"github.com/dsmelov/securekey/internal/server/repositories/repomanager"
	"github.com/dsmelov/securekey/internal/server/services"
	"github.com/dsmelov/securekey/internal/strength"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	engine := cryptox.NewEngine(cryptox.NewScryptKeyProvider(cfg.EncryptionSecret))
	evaluator := strength.NewEvaluator(strength.NewZxcvbnClassifier())
	generator := strength.NewGenerator(evaluator)
	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)

	userService := services.NewUserService(db, manager, sender, logger, cfg)
	credentialService := services.NewCredentialService(db, manager, engine, evaluator, logger)
	strengthService := services.NewStrengthService(evaluator, generator)

	api := httpapi.NewServer(cfg, logger, userService, credentialService, strengthService)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	if err := app.api.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
