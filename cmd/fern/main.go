package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/config"
	grouprepo "github.com/Ramsey-B/fern/internal/repositories/group"
	grouptyperepo "github.com/Ramsey-B/fern/internal/repositories/grouptype"
	membershiprepo "github.com/Ramsey-B/fern/internal/repositories/membership"
	userrepo "github.com/Ramsey-B/fern/internal/repositories/user"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/enrollment"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/mailinglist"
	"github.com/Ramsey-B/fern/pkg/processor"
	"github.com/Ramsey-B/fern/pkg/server"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

func newLogger(pretty bool) ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		var out []byte
		var err error
		if pretty {
			out, err = json.MarshalIndent(msg, "", "  ")
		} else {
			out, err = json.Marshal(msg)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode log message: %v\n", err)
			return
		}
		fmt.Fprintln(os.Stdout, string(out))
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.PrettyLogs)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.AppName, exporters.OTLPConfig{
		Endpoint: cfg.OTLPEndpoint,
		Protocol: cfg.OTLPProtocol,
		Insecure: cfg.OTLPInsecure,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to set up tracing")
		os.Exit(1)
	}

	db, err := database.Connect(ctx, *cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(*cfg, db.DB, logger); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	groupTypes := grouptyperepo.NewRepository(db, logger)
	groups := grouprepo.NewRepository(db, logger)
	members := membershiprepo.NewRepository(db, logger)
	users := userrepo.NewRepository(db, logger)
	engine := enrollment.NewEngine(groups, members, logger, cfg.EnrollmentThreshold)

	producer := kafka.NewProducer(*cfg, logger)
	defer producer.Close()
	emitter := events.NewEmitter(producer, logger)

	var subscriber processor.Subscriber
	if cfg.MailingListEnabled {
		client, err := mailinglist.NewClient(cfg.MailingListAPIKey, cfg.MailingListID, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create mailing list client")
			os.Exit(1)
		}
		subscriber = client
	}

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		logger.WithError(err).Error("Failed to create DI container")
		os.Exit(1)
	}
	mustRegister(logger, ectoinject.RegisterInstance[ectologger.Logger](container, logger))
	mustRegister(logger, ectoinject.RegisterInstance[database.DB](container, db))
	mustRegister(logger, ectoinject.RegisterInstance[*grouptyperepo.Repository](container, groupTypes))
	mustRegister(logger, ectoinject.RegisterInstance[*grouprepo.Repository](container, groups))
	mustRegister(logger, ectoinject.RegisterInstance[*membershiprepo.Repository](container, members))
	mustRegister(logger, ectoinject.RegisterInstance[*userrepo.Repository](container, users))
	mustRegister(logger, ectoinject.RegisterInstance[*enrollment.Engine](container, engine))
	mustRegister(logger, ectoinject.RegisterInstance[*events.Emitter](container, emitter))

	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled {
		proc := processor.NewProcessor(logger, engine, emitter, subscriber)
		consumer = kafka.NewConsumer(*cfg, logger, proc.HandleMessage)
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Error("Failed to start consumer")
			os.Exit(1)
		}
	}

	srv := server.New(*cfg, logger, db)
	go func() {
		if err := srv.Start(); err != nil {
			logger.WithError(err).Error("HTTP server stopped")
			cancel()
		}
	}()
	srv.SetReady(true)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.WithError(err).Error("Failed to stop consumer")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down HTTP server")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down tracing")
	}
}

func mustRegister(logger ectologger.Logger, err error) {
	if err != nil {
		logger.WithError(err).Error("Failed to register dependency")
		os.Exit(1)
	}
}
