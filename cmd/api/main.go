package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"evmeri/internal/auth"
	"evmeri/internal/bootstrap"
	"evmeri/internal/cache"
	"evmeri/internal/config"
	"evmeri/internal/connector"
	"evmeri/internal/httpserver"
	"evmeri/internal/logger"
	"evmeri/internal/notify"
	"evmeri/internal/payment"
	"evmeri/internal/station"
	"evmeri/internal/store"
	"evmeri/internal/support"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		lg := logger.New("info")
		lg.Fatalw("config load failed", "error", err)
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
	if err := bootstrap.SeedRoles(db); err != nil {
		lg.Fatalw("role seed failed", "error", err)
	}
	if err := bootstrap.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, lg); err != nil {
		lg.Errorw("admin seed failed", "error", err)
	}

	var (
		faqCache support.ListCache
		mapCache station.ListCache
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			lg.Warnw("redis unavailable, list caches disabled", "error", err)
		} else {
			defer rdb.Close()
			jc := cache.NewJSONCache(rdb)
			faqCache, mapCache = jc, jc
		}
	}

	notifier := ticketNotifier(cfg, lg)

	stations := store.NewStations(db)
	locator := station.NewLocator(stations, mapCache, cfg.StationMapCacheTTL, lg)
	connectors := connector.NewService(stations, store.NewConnectors(db), connector.NewBuilder(cfg.APIBaseURL), lg)
	deps := httpserver.Deps{
		Users:      store.NewUsers(db),
		Sessions:   store.NewSessions(db),
		Audit:      store.NewAuditLogs(db),
		Stations:   stations,
		Locator:    locator,
		Reviews:    station.NewReviewService(store.NewReviews(db), stations, stations, lg),
		Favorites:  station.NewFavorites(store.NewFavorites(db), stations),
		Connectors: connectors,
		Payments:   payment.NewService(connectors, store.NewQRSessions(db), lg),
		Tickets:    support.NewTicketService(store.NewTickets(db), notifier, lg),
		FAQs:       support.NewFAQService(store.NewFAQs(db), faqCache, cfg.FAQCacheTTL, lg),
		Signer:     auth.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn),
	}
	if cfg.TelegramBotToken != "" {
		deps.InitData = auth.NewInitDataVerifier(cfg.TelegramBotToken, cfg.TelegramInitDataMaxAge)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpserver.NewRouter(deps, lg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("http server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Errorw("shutdown failed", "error", err)
	}
	lg.Infow("stopped")
}

// ticketNotifier builds the admin Telegram notifier once; without a bot
// token or chat id tickets are only stored.
func ticketNotifier(cfg config.Config, lg *zap.SugaredLogger) support.Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramAdminChatID == 0 {
		return notify.Nop{}
	}
	bot, err := notify.NewTelegramBot(cfg.TelegramBotToken)
	if err != nil {
		lg.Warnw("telegram bot unavailable, ticket notices disabled", "error", err)
		return notify.Nop{}
	}
	lg.Infow("telegram notifier ready", "bot", bot.Self.UserName)
	return notify.NewTelegram(bot, cfg.TelegramAdminChatID, lg)
}
