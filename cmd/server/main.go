package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/bill"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/cache"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/config"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/infra"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/router"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/service"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
	possync "github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/sync"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/tenant"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Remote store ─────────────────────────────────────────────────────────
	var (
		db     *gorm.DB
		rdb    *redis.Client
		remote store.RemoteStore
	)
	switch cfg.StoreDriver {
	case "memory":
		remote = store.NewMemStore()
		log.Warn().Msg("running with in-memory store; data will not survive restarts")
	default:
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		remote, err = store.NewGormStore(db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to migrate document table")
		}
	}

	breaker := infra.NewBreaker(infra.DefaultBreakerConfig())
	guarded := store.WithBreaker(remote, breaker)

	// ── Workers ──────────────────────────────────────────────────────────────
	var dispatcher *worker.Dispatcher
	if cfg.StoreDriver != "memory" {
		rdb, err = infra.NewRedis(cfg.RedisURL, infra.RedisOptions{
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdle,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		dispatcher = worker.NewDispatcher(rdb)
		handlers := &worker.Handlers{
			Corrections: worker.NewCorrectionWorker(guarded, decimal.NewFromInt(20)),
			Audit:       worker.NewAuditWorker(),
		}
		worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	}

	// ── Synchronization engine ───────────────────────────────────────────────
	serviceChargeRate, err := decimal.NewFromString(cfg.ServiceChargeRate)
	if err != nil {
		log.Fatal().Str("rate", cfg.ServiceChargeRate).Msg("invalid SERVICE_CHARGE_RATE")
	}
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatal().Str("rate", cfg.TaxRate).Msg("invalid TAX_RATE")
	}

	state := possync.NewStore()
	fetcher := cache.NewFetcher(cfg.CacheTTL())
	sched := possync.NewScheduler(guarded, fetcher, state, possync.Options{
		Debounce:        cfg.Debounce(),
		BackgroundDelay: cfg.BackgroundDelay(),
		Logger:          log.Logger,
	})

	provider := tenant.NewProvider(tenant.Scope{
		CompanyID: cfg.CompanyID,
		SiteID:    cfg.SiteID,
		SubsiteID: cfg.SubsiteID,
	})
	go sched.Run(ctx, provider.Subscribe())
	sched.OnScopeChange(provider.Scope())

	engine := bill.NewEngine(serviceChargeRate, taxRate)
	svc := service.NewPosService(state, sched, guarded, provider, engine, bill.DefaultRules(), dispatcher, log.Logger)

	// ── HTTP server ──────────────────────────────────────────────────────────
	r := router.New(cfg, svc, db, rdb, breaker)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("POS admin backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
