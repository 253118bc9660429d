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
	"github.com/nicoguerrero/boleteria/internal/email"
	"github.com/nicoguerrero/boleteria/internal/kafka"
	"github.com/nicoguerrero/boleteria/internal/repository"
	"github.com/nicoguerrero/boleteria/internal/service/reservation"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

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
		nil,
		producer,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Order.HoldTTLMinutes)*time.Minute,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	go func() {
		if err := consumer.ConsumeTicketEvents(ctx, func(ctx context.Context, event kafka.TicketEvent) error {
			if err := sender.Send(ctx, event); err != nil {
				// Delivery failure never touches the issued ticket.
				log.Printf("deliver ticket %d: %v", event.TicketID, err)
			}
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := reservationService.ExpirePendingOrders(ctx)
			if err != nil {
				log.Printf("expire orders error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d orders, seats released", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
