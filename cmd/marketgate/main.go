package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/backend"
	"marketgate/internal/buildinfo"
	"marketgate/internal/config"
	"marketgate/internal/database"
	"marketgate/internal/gateway"
	"marketgate/internal/logger"
	"marketgate/internal/store"
	"marketgate/internal/telegram"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("marketgate: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	startedAt := time.Now()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info(ctx, "app", "starting",
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.Int("markets", len(cfg.Markets)),
	)

	if err := database.RunMigrations(cfg.Database); err != nil {
		return err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewPostgres(db)
	bc := backend.New(cfg.Backend.Host, cfg.Backend.Timeout())
	gw := gateway.New(cfg, st, bc)

	opts := gw.RunOptions()
	prevStart := opts.OnStart
	opts.OnStart = func(ctx context.Context, bot *tele.Bot) error {
		if prevStart != nil {
			if err := prevStart(ctx, bot); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.Duration("duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}
	opts.OnStop = func(ctx context.Context, _ *tele.Bot) error {
		logger.Info(ctx, "app", "shutdown")
		return nil
	}

	return telegram.Run(ctx, opts)
}
