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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vostok-trade/backend/internal/auth"
	"github.com/vostok-trade/backend/internal/catalog"
	"github.com/vostok-trade/backend/internal/config"
	"github.com/vostok-trade/backend/internal/logging"
	"github.com/vostok-trade/backend/internal/mailer"
	"github.com/vostok-trade/backend/internal/middleware"
	"github.com/vostok-trade/backend/internal/pricerequest"
	"github.com/vostok-trade/backend/internal/router"
	"github.com/vostok-trade/backend/internal/store"
	"github.com/vostok-trade/backend/internal/tracing"
)

const serviceName = "vostok-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, cfg.Env, serviceName)
	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		slog.Error("init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		slog.Error("mongo connect", "uri", store.Redact(cfg.MongoURI), "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		slog.Error("mongo indexes", "error", err)
		os.Exit(1)
	}
	slog.Info("mongo connected", "uri", store.Redact(cfg.MongoURI), "database", db.Name())

	users := store.NewUserStore(db)
	products := store.NewProductStore(db)
	priceRequests := store.NewPriceRequestStore(db)

	// ── Redis (optional) ─────────────────────────────────────
	var accounts mailer.AccountCache
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis unavailable, fallback mailbox will not be shared", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rdb.Close()
			accounts = store.NewMailAccountStore(rdb)
		}
	}

	// ── Mail ─────────────────────────────────────────────────
	notifier := mailer.New(mailer.Options{
		SMTP: mailer.SMTPConfig{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPass,
			Secure: cfg.SMTPPort == 465,
		},
		Fallback:       cfg.MailFallback,
		AttachmentPath: cfg.PriceAttachmentPath,
	}, nil, mailer.NewAccountClient(cfg.MailTestAccountURL), accounts)
	if !cfg.SMTPConfigured() {
		slog.Warn("smtp settings missing, price list emails disabled",
			"required", "SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS")
	} else if err := notifier.Init(ctx); err != nil {
		slog.Warn("mail service not ready, will retry on first send", "error", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	origins, err := middleware.NewOriginPolicy(cfg.CORSAllowedOrigins, cfg.CORSPreviewPattern)
	if err != nil {
		slog.Error("cors policy", "error", err)
		os.Exit(1)
	}
	workflow := pricerequest.NewWorkflow(products, priceRequests, notifier, pricerequest.StatusMode(cfg.PriceRequestMode))

	r := router.New(router.Deps{
		Auth:          auth.NewHandler(users, tokens),
		Catalog:       catalog.NewHandler(products, cfg.PriceListPath),
		PriceRequests: pricerequest.NewHandler(workflow),
		Tokens:        tokens,
		Users:         users,
		Origins:       origins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
	}

	go func() {
		slog.Info("backend listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
