package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
	"github.com/hpglow/storefront-backend/internal/modules/catalog"
	"github.com/hpglow/storefront-backend/internal/modules/checkout"
	"github.com/hpglow/storefront-backend/internal/modules/order"
	"github.com/hpglow/storefront-backend/internal/modules/pricing"
	"github.com/hpglow/storefront-backend/internal/modules/realtime"
	"github.com/hpglow/storefront-backend/internal/modules/session"
	"github.com/hpglow/storefront-backend/internal/modules/upload"
	"github.com/hpglow/storefront-backend/internal/platform/config"
	"github.com/hpglow/storefront-backend/internal/platform/idempotency"
	"github.com/hpglow/storefront-backend/internal/platform/logging"
	"github.com/hpglow/storefront-backend/internal/platform/shutdown"
)

func main() {
	cfg, envFound := config.Load()

	logger, err := logging.New(cfg.Production())
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if !envFound {
		logger.Info("no .env file found, using process environment")
	}

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}
	logger.Info("connected to the database")

	// ── Cart slots & duplicate-submit guard ─────────────────
	var (
		rdb     *redis.Client
		backend = cart.NewMemoryBackend()
		guard   idempotency.Checker
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("parse REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("ping redis", zap.Error(err))
		}
		backend = cart.NewRedisBackend(rdb, session.TokenTTL)
		guard = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
		logger.Info("cart slots stored in redis")
	} else {
		logger.Warn("REDIS_URL not set, carts are kept in memory and lost on restart")
	}

	// ── Order feed ──────────────────────────────────────────
	hub := realtime.NewHub(cfg.RealtimeDebounce, logger)
	notifiers := realtime.Fanout{hub}
	var publisher *realtime.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = realtime.NewPublisher(realtime.NewWriter(cfg.KafkaBrokers, cfg.OrderEventsTopic), logger)
		notifiers = append(notifiers, publisher)
	}

	// ── Collaborators ───────────────────────────────────────
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db))
	orderService := order.NewService(order.NewPostgresRepository(db), notifiers, logger)
	uploads, err := upload.NewDiskStore(cfg.UploadDir, upload.ProofBucket, cfg.PublicBaseURL, logger)
	if err != nil {
		logger.Fatal("prepare uploads", zap.Error(err))
	}

	// ── Per-session cart & checkout ─────────────────────────
	defaults := cart.StandardDefaults
	defaults.UnknownStock = cfg.CartUnknownStock
	contacts := checkout.Contacts{InstagramURL: cfg.InstagramURL, ViberNumber: cfg.ViberNumber}

	shoppers, err := session.NewRegistry(cfg.SessionCacheSize,
		func(ctx context.Context, id string) (*shopper, error) {
			sessLog := logger.With(zap.String("session", id))
			m := cart.Open(ctx, cart.NewPersistentStore(backend, id, sessLog), cart.Options{Logger: sessLog, Defaults: defaults})
			c := checkout.New(checkout.Deps{
				Cart:     m,
				Orders:   orderService,
				Methods:  catalogService,
				Uploads:  uploads,
				Launcher: checkout.HandoffLauncher{},
				Contacts: contacts,
				Fees:     pricing.DefaultFees,
				Logger:   sessLog,
			})
			return &shopper{cart: m, checkout: c}, nil
		},
		func(s *shopper) { s.cart.Close() },
	)
	if err != nil {
		logger.Fatal("session registry", zap.Error(err))
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	catalog.NewHandler(catalogService).RegisterRoutes(router)
	order.NewHandler(orderService).RegisterRoutes(router)
	upload.NewHandler(cfg.UploadDir).RegisterRoutes(router)
	hub.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(session.Middleware(session.NewService(cfg.SessionSecret), cfg.Production(), logger))
		r.Use(shoppers.Hold)
		cart.NewHandler(carts{shoppers}, catalogService).RegisterRoutes(r)
		checkout.NewHandler(checkouts{shoppers}, idempotency.Middleware(guard, "checkout.order", session.FromContext, logger)).RegisterRoutes(r)
	})

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("storefront API listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	hub.Close()
	shoppers.Purge()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("close kafka writer", zap.Error(err))
		}
	}
	if rdb != nil {
		rdb.Close()
	}
}
