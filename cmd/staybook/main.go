package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staybook/internal/app/commands"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	propertyapp "staybook/internal/app/handlers/property"
	voucherapp "staybook/internal/app/handlers/voucher"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainrates "staybook/internal/domain/rates"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/money"
	domainvoucher "staybook/internal/domain/voucher"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, ready, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       app.outboxStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "app://staybook",
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox worker started", "brokers", cfg.KafkaBrokers)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers    ginserver.Handlers
	outboxStore infraoutbox.Store
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, func() error, error) {
	var (
		uowFactory uow.UoWFactory
		idStore    middleware.IdempotencyStore
		outboxImpl appoutbox.Outbox
		outboxSt   infraoutbox.Store
		ready      = func() error { return nil }
	)

	switch cfg.StoreMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, nil, err
		}
		store := infraoutbox.NewMongoStore(client.DB)
		voucherRepo := mongodb.NewVoucherRepository(client.DB)
		uowFactory = mongodb.Factory{
			DB:           client.DB,
			PropertyRepo: mongodb.NewPropertyRepository(client.DB),
			BookingRepo:  mongodb.NewBookingRepository(client.DB),
			VoucherRepo:  voucherRepo,
			UsageRepo:    voucherRepo,
		}
		idStore = mongodb.NewIdempotencyStore(client.DB)
		outboxImpl = store
		outboxSt = store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		propertyRepo := memory.NewPropertyRepository()
		bookingRepo := memory.NewBookingRepository()
		voucherRepo := memory.NewVoucherRepository()
		box := memory.NewOutbox()
		uowFactory = memory.Factory{
			PropertyRepo: propertyRepo,
			BookingRepo:  bookingRepo,
			VoucherRepo:  voucherRepo,
			UsageRepo:    voucherRepo,
		}
		idStore = memory.NewIdempotencyStore()
		outboxImpl = box
		outboxSt = box
	}

	ratesCalc := domainrates.NewCalculator(domainrates.Config{
		ServiceFeePercent:        cfg.ServiceFeePercent,
		TaxPercent:               cfg.TaxPercent,
		DefaultCommissionPercent: cfg.DefaultCommissionPercent,
		ShortTermRateThreshold:   money.Must(cfg.ShortTermRateThreshold, cfg.Currency),
	})
	bounds := domainvoucher.Bounds{
		MinPercent: cfg.VoucherMinPercent,
		MaxPercent: cfg.VoucherMaxPercent,
		MinFixed:   money.Must(cfg.VoucherMinFixed, cfg.Currency),
		MaxFixed:   money.Must(cfg.VoucherMaxFixed, cfg.Currency),
	}
	sysClock := clock.System{}
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	createBooking := &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Rates:      ratesCalc,
		Clock:      sysClock,
		Outbox:     outboxImpl,
		Encoder:    encoder,
	}
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), createBooking)

	transitions := &bookingapp.TransitionHandler{
		UoWFactory: uowFactory,
		Clock:      sysClock,
		Outbox:     outboxImpl,
		Encoder:    encoder,
	}
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), bookingapp.CancelAdapter{TransitionHandler: transitions})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), bookingapp.CompleteAdapter{TransitionHandler: transitions})

	registerProperty := &propertyapp.RegisterPropertyHandler{
		UoWFactory:       uowFactory,
		Clock:            sysClock,
		Outbox:           outboxImpl,
		Encoder:          encoder,
		DefaultMinNights: cfg.DefaultMinNights,
	}
	commands.RegisterHandler(commandBus, propertyapp.RegisterPropertyCommand{}.Key(), registerProperty)

	review := &propertyapp.ReviewHandler{
		UoWFactory: uowFactory,
		Rates:      ratesCalc,
		Clock:      sysClock,
		Outbox:     outboxImpl,
		Encoder:    encoder,
	}
	commands.RegisterHandler(commandBus, propertyapp.ApprovePropertyCommand{}.Key(), propertyapp.ApproveAdapter{ReviewHandler: review})
	commands.RegisterHandler(commandBus, propertyapp.ApproveContractCommand{}.Key(), propertyapp.ContractAdapter{ReviewHandler: review})
	commands.RegisterHandler(commandBus, propertyapp.RejectPropertyCommand{}.Key(), propertyapp.RejectAdapter{ReviewHandler: review})

	createVoucher := &voucherapp.CreateVoucherHandler{
		UoWFactory: uowFactory,
		Bounds:     bounds,
		Clock:      sysClock,
		Outbox:     outboxImpl,
		Encoder:    encoder,
	}
	commands.RegisterHandler(commandBus, voucherapp.CreateVoucherCommand{}.Key(), createVoucher)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(), &availabilityapp.CheckAvailabilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.GetBookedDatesQuery{}.Key(), &availabilityapp.GetBookedDatesHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListCustomerBookingsQuery{}.Key(), &bookingapp.ListCustomerBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, voucherapp.ValidateVoucherQuery{}.Key(), &voucherapp.ValidateVoucherHandler{UoWFactory: uowFactory, Clock: sysClock})
	queries.RegisterHandler(queryBus, propertyapp.QuoteFinalRateQuery{}.Key(), &propertyapp.QuoteFinalRateHandler{Rates: ratesCalc})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxImpl),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	return application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Availability: ginserver.AvailabilityHandler{
				Queries: queryBusWithMiddleware,
			},
			Voucher: ginserver.VoucherHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Property: ginserver.PropertyHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
		},
		outboxStore: outboxSt,
	}, ready, nil
}
