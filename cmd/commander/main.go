package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/commander/internal/api/espn"
	"github.com/omarshaarawi/commander/internal/api/fantasy"
	"github.com/omarshaarawi/commander/internal/api/fantasypros"
	"github.com/omarshaarawi/commander/internal/api/sleeper"
	"github.com/omarshaarawi/commander/internal/bot"
	"github.com/omarshaarawi/commander/internal/config"
	"github.com/omarshaarawi/commander/internal/repository"
	"github.com/omarshaarawi/commander/internal/repository/memory"
	"github.com/omarshaarawi/commander/internal/repository/sqlite"
	"github.com/omarshaarawi/commander/internal/scheduler"
	"github.com/omarshaarawi/commander/internal/service"
	"github.com/omarshaarawi/commander/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Store.LeaguesFile != "" {
		if err := service.SeedLeagues(ctx, store, cfg.Store.LeaguesFile); err != nil {
			return err
		}
	}

	espnAPI := espn.NewAPI(espn.NewClient(cfg.ESPNAPI))
	fantasyAPI := fantasy.NewAPI(espnAPI, sleeper.NewClient(), fantasypros.NewClient())

	commander := service.NewCommander(fantasyAPI, store, cfg)
	if err := commander.ReloadProfiles(ctx); err != nil {
		return err
	}

	var notify func(string) error
	if cfg.TelegramBot.Enabled() {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, commander)
		if err != nil {
			return err
		}
		if cfg.TelegramBot.ChatID != 0 {
			notify = telegramBot.SendMessage
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	} else {
		slog.Info("Telegram bot disabled, no token configured")
	}

	sched, err := scheduler.NewScheduler(commander, cfg.Schedule, notify)
	if err != nil {
		return err
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           web.NewHandler(commander).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting HTTP server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Store) (repository.Store, func(), error) {
	if cfg.Driver == "memory" {
		return memory.NewRepository(), func() {}, nil
	}

	store, err := sqlite.Open(ctx, cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing store", "error", err)
		}
	}, nil
}
