// Package server wires the application together: storage, Telegram
// transport, matchmaking services, the bot front door, the sweeper, and
// the operator API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/simplylizz/wannatalk/internal/langs"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/bot"
	"github.com/simplylizz/wannatalk/internal/server/config"
	"github.com/simplylizz/wannatalk/internal/server/httpapi"
	"github.com/simplylizz/wannatalk/internal/server/repositories/repomanager"
	"github.com/simplylizz/wannatalk/internal/server/services"
	"github.com/simplylizz/wannatalk/internal/server/sweeper"
	"github.com/simplylizz/wannatalk/internal/server/telegram"
)

// App owns the long-running components and coordinates their shutdown.
type App struct {
	cfg    *config.Config
	logger logging.Logger
}

func NewApp(cfg *config.Config) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return &App{cfg: cfg, logger: logger}
}

// Run starts every component and blocks until SIGINT/SIGTERM, then waits
// for all of them to stop.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tg, err := tgbotapi.NewBotAPI(a.cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	a.logger.Info(ctx, "authorized on telegram", "account", tg.Self.UserName)

	gw := telegram.NewGateway(tg, a.logger)

	profile := services.NewProfile(db, repos, a.logger)
	matchmaker := services.NewMatchmaker(db, repos, gw, a.logger,
		a.cfg.MatchAttempts, a.cfg.DevelopmentMode)
	lifecycle := services.NewLifecycle(db, repos, gw, a.logger)
	stats := services.NewStats(db, repos)
	admin := services.NewAdmin(a.cfg, a.logger)

	front := bot.New(tg, profile, lifecycle, langs.New(), a.logger)
	sw := sweeper.New(db, repos, matchmaker, a.logger, a.cfg.SweepInterval)
	api := httpapi.NewServer(a.cfg.EndpointAddrHTTP, admin, stats, db, a.logger)

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				a.logger.Error(ctx, "component failed", "component", name, "error", err)
				stop()
			}
		}()
	}

	run("bot", front.Run)
	run("sweeper", sw.Run)
	run("httpapi", api.Run)

	<-ctx.Done()
	a.logger.Info(context.Background(), "shutting down")
	wg.Wait()
	return nil
}
