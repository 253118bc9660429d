package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicoguerrero/boleteria/config"
	"github.com/nicoguerrero/boleteria/internal/bootstrap"
	"github.com/nicoguerrero/boleteria/internal/cache"
	"github.com/nicoguerrero/boleteria/internal/kafka"
	"github.com/nicoguerrero/boleteria/internal/repository"
	"github.com/nicoguerrero/boleteria/internal/service/redemption"
	"github.com/nicoguerrero/boleteria/internal/service/reservation"
	"github.com/nicoguerrero/boleteria/internal/service/zones"
	"github.com/nicoguerrero/boleteria/internal/wallet"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Order.SeatMapCacheSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	walletClient := wallet.NewHTTPClient(cfg.Wallet.BaseURL, time.Duration(cfg.Wallet.TimeoutSeconds)*time.Second)

	store := repository.NewStore(pool)
	seatRepo := repository.NewSeatRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	reservationService := reservation.NewService(
		store,
		seatRepo,
		orderRepo,
		ticketRepo,
		walletClient,
		redisCache,
		producer,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Order.HoldTTLMinutes)*time.Minute,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	redemptionService := redemption.NewService(store, ticketRepo)
	zoneService := zones.NewService(seatRepo, redisCache)

	if err := bootstrap.Run(ctx, cfg, reservationService, redemptionService, zoneService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
