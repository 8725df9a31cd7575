package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-orders/internal/cache"
	"marketplace-orders/internal/config"
	httpapi "marketplace-orders/internal/controllers/http"
	"marketplace-orders/internal/infra"
	mmysql "marketplace-orders/internal/infra/mysql"
	"marketplace-orders/internal/infra/rabbitmq"
	"marketplace-orders/internal/logger"
	mysqlrepo "marketplace-orders/internal/repository/mysql"
	"marketplace-orders/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.AppName, cfg.AppEnv, cfg.LogLevel)
	log.Info().Str("env", cfg.AppEnv).Msg("starting order service")

	db, err := mmysql.NewMySQL(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db: connect")
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	var publisher rabbitmq.PublisherInterface
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init publisher")
		}
		defer p.Close()
		publisher = p
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events disabled")
	}

	svc := services.NewOrderService(
		mysqlrepo.NewTransactor(db),
		mysqlrepo.NewInventoryLedger(db),
		mysqlrepo.NewOrderRepository(db),
		mysqlrepo.NewTransactionRepository(db),
		publisher,
	)
	svc.SetCartClient(infra.NewCartClient(cfg.CartServiceURL, cfg.CartServiceTimeout))

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, cache calls will degrade to store reads")
		}
		cancel()
		orderCache := cache.NewOrderCache(rdb, cfg.OrderCacheTTL, cfg.IdempotencyTTL)
		orderCache.SetRedeleteDelay(cfg.CacheRedeleteDelay)
		svc.SetOrderCache(orderCache)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, order cache and idempotency keys disabled")
	}

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpapi.RequestLogger(), httpapi.Timeout(cfg.RequestTimeout))
	httpapi.NewHandler(svc).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server run")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	svc.Wait()
	log.Info().Msg("order service stopped")
}
