package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/booking/config"
	"github.com/Astemirdum/booking-service/booking/internal/billing"
	"github.com/Astemirdum/booking-service/booking/internal/events"
	"github.com/Astemirdum/booking-service/booking/internal/handler"
	"github.com/Astemirdum/booking-service/booking/internal/pricing"
	"github.com/Astemirdum/booking-service/booking/internal/repository"
	"github.com/Astemirdum/booking-service/booking/internal/server"
	"github.com/Astemirdum/booking-service/booking/internal/service"
	"github.com/Astemirdum/booking-service/booking/migrations"
	"github.com/Astemirdum/booking-service/pkg/kafka"
	"github.com/Astemirdum/booking-service/pkg/logger"
	"github.com/Astemirdum/booking-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "booking")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo booking %v", err)
	}

	var pub events.Publisher = events.NewNopPublisher()
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer %v", err)
		}
		defer producer.Close()
		pub = events.NewPublisher(producer, cfg.Kafka.Topic, log)
	}

	svc := service.NewService(
		repo,
		pricing.NewCalculator(cfg.Pricing),
		pub,
		billing.NewClient(cfg.Billing, log),
		log,
	)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
