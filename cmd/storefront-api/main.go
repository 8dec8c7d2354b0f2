package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/velora/storefront/internal/cart"
	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/checkout"
	"github.com/velora/storefront/internal/config"
	"github.com/velora/storefront/internal/order"
	"github.com/velora/storefront/internal/settings"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connecting to postgres failed", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("connecting to redis failed", zap.Error(err))
	}
	defer rdb.Close()

	products := catalog.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	store := cart.NewRedisStore(rdb, cfg.CartTTL)
	checkoutSvc := checkout.NewService(orders, logger)
	settingsRepo := settings.NewPGRepo(pool)

	r := newRouter(logger, products, settingsRepo, store, checkoutSvc)

	logger.Info("storefront-api listening", zap.String("addr", cfg.StorefrontAddr))
	if err := r.Run(cfg.StorefrontAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
