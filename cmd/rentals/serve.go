package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"rentals/internal/health"
	"rentals/internal/locking"
	"rentals/internal/reservations/events"
	reservationshandler "rentals/internal/reservations/handler"
	"rentals/internal/reservations/payment"
	reservationsrepo "rentals/internal/reservations/repository"
	reservationsservice "rentals/internal/reservations/service"
	reservationsvalidator "rentals/internal/reservations/validator"
	resourceshandler "rentals/internal/resources/handler"
	resourcesrepo "rentals/internal/resources/repository"
	resourcesservice "rentals/internal/resources/service"
	resourcesvalidator "rentals/internal/resources/validator"
	"rentals/internal/tracing"
	"rentals/pkg/app"
	"rentals/pkg/clock"
	"rentals/pkg/config"
	"rentals/pkg/kafka"
	kafkaconfig "rentals/pkg/kafka/config"
	kafkamiddleware "rentals/pkg/kafka/middleware"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.Log.Info("Starting rentals service")

	shutdownTracing, err := tracing.Init(ServiceName, cfg.TracingEnabled, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	clk := clock.NewSystem()
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	healthHandler := health.NewHandler(cfg.Log)
	healthHandler.AddCheck("mongo", func(ctx context.Context) error {
		return cfg.Client.Mongo.Ping(ctx, nil)
	})

	store, sweeper := newLockStore(cfg, db, clk, healthHandler)
	locker := locking.NewManager(store, clk, cfg.Log, locking.WithTTL(cfg.LockTTL))

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}

	codec, err := reservationsservice.NewHandleCodec(cfg.HoldTokenKey)
	if err != nil {
		return fmt.Errorf("failed to initialize hold tokens: %w", err)
	}

	resourceRepo := resourcesrepo.NewMongoResourceRepository(cfg)
	resourceService := resourcesservice.NewResourceService(
		resourceRepo,
		resourcesvalidator.NewResourceValidator(cfg.Log),
		cfg.DefaultCleaningBuffer,
		cfg.Log,
	)

	reservationService := reservationsservice.NewReservationService(
		reservationsrepo.NewMongoReservationRepository(cfg),
		resourceRepo,
		locker,
		payment.NewStaticVerifier(),
		publisher,
		cfg.Log,
		reservationsservice.WithClock(clk),
		reservationsservice.WithMaxStay(cfg.MaxStay),
	)
	cfg.Log.Info("Reservation service initialized", "lock_backend", cfg.LockBackend, "lock_ttl", locker.TTL())

	application := app.NewApplication(cfg)
	application.SetApp(
		healthHandler,
		resourceshandler.NewResourceHandler(resourceService, cfg.Log),
		reservationshandler.NewReservationHandler(
			reservationService,
			codec,
			reservationsvalidator.NewReservationValidator(cfg.Log),
			cfg.Log,
		),
	)

	if sweeper != nil {
		scheduler, err := locking.NewSweepScheduler(sweeper, cfg.LockSweepSchedule, cfg.Log)
		if err != nil {
			return err
		}
		application.AddWorker("lock-sweeper", scheduler)
	}
	application.OnShutdown("event-publisher", func(context.Context) error {
		return closePublisher()
	})
	application.OnShutdown("tracing", shutdownTracing)

	application.Run()
	return nil
}

// newLockStore selects the lock table. Stores whose entries need purging are
// also returned as the sweeper; etcd leases expire on their own.
func newLockStore(cfg *config.Config, db *mongo.Database, clk clock.Clock, healthHandler *health.Handler) (locking.Store, locking.Sweeper) {
	switch cfg.LockBackend {
	case config.LockBackendMongo:
		store := locking.NewMongoStore(db, clk)
		return store, store
	case config.LockBackendEtcd:
		cfg.SetEtcd()
		healthHandler.AddCheck("etcd", func(ctx context.Context) error {
			_, err := cfg.Client.Etcd.Status(ctx, cfg.EtcdEndpoints[0])
			return err
		})
		return locking.NewEtcdStore(cfg.Client.Etcd), nil
	default:
		store := locking.NewMemoryStore(clk)
		return store, store
	}
}

func newPublisher(cfg *config.Config) (events.Publisher, func() error, error) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, reservation events are not published")
		return events.NoopPublisher{}, func() error { return nil }, nil
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReservationEventsTopic)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware())

	return events.NewKafkaPublisher(producer), producer.Close, nil
}
