package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/fee"
	"github.com/Astemirdum/library-circulation/library/internal/handler"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/library/internal/server"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/library/internal/service/paygate"
	"github.com/Astemirdum/library-circulation/library/internal/service/settlement"
	"github.com/Astemirdum/library-circulation/library/migrations"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) error {
	log, err := logger.NewLogger(cfg.Log, "library")
	if err != nil {
		return fmt.Errorf("logger %v", err)
	}
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo %v", err)
	}
	policy, err := fee.New(cfg.Circulation.FeePolicy)
	if err != nil {
		return err
	}
	svc := service.NewService(repo, log,
		service.WithFeePolicy(policy),
		service.WithDuplicateBorrowCheck(cfg.Circulation.RejectDuplicateBorrow),
		service.WithStatusWorkers(cfg.Circulation.StatusWorkers),
	)
	settlementSvc := settlement.NewService(svc, paygate.NewService(log, cfg), log)

	consumeCtx, stopConsume := context.WithCancel(context.Background())
	defer stopConsume()

	eventLog := handler.NewStoreLog(svc)
	if cfg.Kafka.Enable {
		if err := kafka.CreateTopics(cfg.Kafka, kafka.CirculationTopic); err != nil {
			log.Warn("kafka.CreateTopics", zap.Error(err))
		}
		producer, err := kafka.NewAsyncProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka.NewAsyncProducer %v", err)
		}
		defer producer.Close()
		go func() {
			for perr := range producer.Errors() {
				log.Error("event publish", zap.Error(perr.Err))
			}
		}()
		eventLog = handler.NewKafkaLog(producer, kafka.CirculationTopic)

		consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.CirculationConsumerGroup)
		if err != nil {
			return fmt.Errorf("kafka.NewConsumer %v", err)
		}
		defer consumer.Close()
		go kafka.Consume(consumeCtx, consumer, handler.NewConsumer(svc.RecordEvent, log), kafka.CirculationTopic, log)
	}

	h := handler.New(svc, settlementSvc, svc, eventLog, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)),
		zap.String("feePolicy", cfg.Circulation.FeePolicy),
		zap.Bool("kafka", cfg.Kafka.Enable))
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
	stopConsume()
	log.Info("Graceful shutdown finished")
	return nil
}
