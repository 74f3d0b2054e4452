package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/lovebank/internal/bank"
	"github.com/jask/lovebank/internal/bot"
	"github.com/jask/lovebank/internal/config"
	"github.com/jask/lovebank/internal/database"
	"github.com/jask/lovebank/internal/database/repository"
	"github.com/jask/lovebank/internal/telegram"
	"github.com/jask/lovebank/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		log.Fatal("telegram token not configured (LOVEBANK_TELEGRAM_TOKEN)")
	}

	logger, err := newLogger(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		sugar.Fatalw("mkdir db dir", "err", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		sugar.Fatalw("open db", "err", err)
	}
	defer db.Close()
	if err := database.RunMigrations(db); err != nil {
		sugar.Fatalw("migrate", "err", err)
	}

	// repositories
	acctRepo := repository.NewAccountRepo(db)
	printRepo := repository.NewFingerprintRepo(db)
	pendingRepo := repository.NewPendingRepo(db)

	ledger := bank.NewLedger(db, acctRepo)
	catalog := bank.DefaultCatalog()
	provider := vision.NewOpenAIProvider(config.ResolveVisionKey(cfg), cfg.Vision.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	albums := &bank.Aggregator{
		Vision:    provider,
		Prints:    printRepo,
		Ledger:    ledger,
		Log:       sugar,
		NoteValue: cfg.Bank.NoteValue,
		Jackpot:   cfg.Bank.Jackpot,
		Quiet:     cfg.Bank.AlbumQuiet(),
		Lifecycle: ctx,
	}
	redeemer := &bank.Redeemer{
		Catalog: catalog,
		Ledger:  ledger,
		Pending: pendingRepo,
		Log:     sugar,
	}

	client := telegram.NewClient(cfg.Telegram.Token)
	b := bot.New(client, ledger, albums, redeemer, catalog,
		cfg.Bank.NoteValue, cfg.Telegram.OwnerChatID, sugar)

	sugar.Infow("love bank started", "db", cfg.Database.Path)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(ctx) })
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		sugar.Fatalw("bot stopped", "err", err)
	}
	sugar.Info("love bank stopped")
}

func newLogger(mode string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}
