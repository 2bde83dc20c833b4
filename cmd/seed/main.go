package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"

	"evmeri/internal/bootstrap"
	"evmeri/internal/config"
	"evmeri/internal/logger"
	"evmeri/internal/store"
	"evmeri/internal/support"
)

func main() {
	faqsOnly := flag.Bool("faqs-only", false, "seed only the default FAQ set")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalw("config load failed", "error", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := bootstrap.OpenDB(cfg.DatabaseURL)
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	if !*faqsOnly {
		if err := bootstrap.SeedRoles(db); err != nil {
			lg.Fatalw("role seed failed", "error", err)
		}
		if err := bootstrap.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, lg); err != nil {
			lg.Fatalw("admin seed failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	faqs := support.NewFAQService(store.NewFAQs(db), nil, 0, lg)
	created, err := faqs.Seed(ctx)
	if err != nil {
		lg.Fatalw("faq seed failed", "error", err)
	}
	lg.Infow("faq seed done", "created", created, "total", len(support.DefaultFAQs()))
}
