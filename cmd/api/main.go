package main

import (
	bookingsevents "liora/internal/bookings/events"
	bookingshandler "liora/internal/bookings/handler"
	bookingsrepo "liora/internal/bookings/repository"
	bookingsservice "liora/internal/bookings/service"
	bookingsvalidator "liora/internal/bookings/validator"
	"liora/internal/chat/fanout"
	chathandler "liora/internal/chat/handler"
	"liora/internal/chat/realtime"
	chatrepo "liora/internal/chat/repository"
	chatservice "liora/internal/chat/service"
	healthhandler "liora/internal/health/handler"
	listingshandler "liora/internal/listings/handler"
	listingsrepo "liora/internal/listings/repository"
	listingsservice "liora/internal/listings/service"
	listingsvalidator "liora/internal/listings/validator"
	reviewshandler "liora/internal/reviews/handler"
	reviewsrepo "liora/internal/reviews/repository"
	reviewsservice "liora/internal/reviews/service"
	usershandler "liora/internal/users/handler"
	usersrepo "liora/internal/users/repository"
	usersservice "liora/internal/users/service"
	usersvalidator "liora/internal/users/validator"
	"liora/pkg/app"
	"liora/pkg/auth"
	"liora/pkg/cache"
	"liora/pkg/config"
	"liora/pkg/kafka"
	kafka_config "liora/pkg/kafka/config"
	kafka_middleware "liora/pkg/kafka/middleware"
	"liora/pkg/payment"

	"github.com/joho/godotenv"
)

const (
	ServiceName      = "liora-api"
	listingCachePref = "liora:"
	dlqSuffix        = ".dlq"
)

type messaging struct {
	bookingEvents bookingsevents.Publisher
	chatNotifier  chatservice.Notifier
	workers       []app.Worker
	closers       []func() error
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Liora API")

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authMiddleware := auth.NewMiddleware(tokens, cfg.AuthCookieName, cfg.AuthCookieSecure, cfg.Log)

	listingCache := cache.NewNoop()
	healthChecks := []healthhandler.Check{healthhandler.MongoCheck(cfg.Client.Mongo)}
	if cfg.Client.Redis != nil {
		listingCache = cache.NewRedis(cfg.Client.Redis, listingCachePref)
		healthChecks = append(healthChecks, healthhandler.Check{Name: "cache", Ping: listingCache.Ping})
	}

	var payments payment.Provider
	if cfg.PaymentsEnabled() {
		payments = payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		cfg.Log.Info("Stripe payments enabled", "currency", cfg.PaymentCurrency)
	} else {
		cfg.Log.Info("Payments disabled, bookings are confirmed immediately")
	}

	hub := realtime.NewHub(cfg.Log)
	msg := initMessaging(cfg, hub)

	userRepo := usersrepo.NewMongoUserRepository(cfg)
	listingRepo := listingsrepo.NewMongoListingRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewBookingLockRepository(cfg)
	reviewRepo := reviewsrepo.NewMongoReviewRepository(cfg)
	messageRepo := chatrepo.NewMongoMessageRepository(cfg)

	userService := usersservice.NewUserService(
		userRepo,
		listingRepo,
		tokens,
		usersvalidator.NewUserValidator(cfg.Log),
		cfg,
	)
	listingService := listingsservice.NewListingService(
		listingRepo,
		listingCache,
		listingsvalidator.NewListingValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		listingRepo,
		userRepo,
		payments,
		msg.bookingEvents,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	reviewService := reviewsservice.NewReviewService(reviewRepo, listingRepo, userRepo, cfg)
	chatService := chatservice.NewChatService(messageRepo, userRepo, msg.chatNotifier, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	closers := append(msg.closers, func() error {
		hub.Close()
		return nil
	})

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(app.Options{
		Health: healthhandler.NewHealthHandler(cfg.Log, healthChecks...),
		API: []app.Handler{
			usershandler.NewAuthHandler(userService, authMiddleware, cfg.Log),
			usershandler.NewUserHandler(userService, authMiddleware, cfg.Log),
			listingshandler.NewListingHandler(listingService, authMiddleware, cfg.Log),
			bookingshandler.NewBookingHandler(bookingService, authMiddleware, cfg.Log),
			bookingshandler.NewPaymentWebhookHandler(bookingService, payments, cfg.Log),
			reviewshandler.NewReviewHandler(reviewService, authMiddleware, cfg.Log),
			chathandler.NewChatHandler(chatService, authMiddleware, cfg.Log),
		},
		Realtime: realtime.NewHandler(hub, tokens, chatService, cfg.CORSAllowedOrigins, cfg.RequestTimeout, cfg.Log),
		Workers:  msg.workers,
		Closers:  closers,
	})
	serverApp.Run()
}

// initMessaging connects Kafka producers and the chat fan-out consumer when enabled.
// Without Kafka, booking events are dropped and chat messages are delivered to this instance only.
func initMessaging(cfg *config.Config, hub *realtime.Hub) *messaging {
	m := &messaging{
		bookingEvents: bookingsevents.NewNoopPublisher(),
		chatNotifier:  hub,
	}
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, chat delivery is local to this instance")
		return m
	}

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	bookingProducer, err := kafka.NewProducer(kcfg, cfg.KafkaBookingTopic, cfg.KafkaBookingTopic+dlqSuffix, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events producer", "error", err)
	}
	chatProducer, err := kafka.NewProducer(kcfg, cfg.KafkaChatTopic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create chat producer", "error", err)
	}

	groupID := fanout.GroupID(cfg.KafkaConsumerGroup)
	chatConsumer, err := kafka.NewConsumer(kcfg, cfg.KafkaChatTopic, groupID, "", fanout.NewHandler(hub, cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create chat consumer", "error", err)
	}

	if kcfg.EnableMiddleware {
		bookingProducer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		chatProducer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		chatConsumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		chatConsumer.Use(kafka_middleware.CorrelationMiddleware())
	}

	m.bookingEvents = bookingsevents.NewKafkaPublisher(bookingProducer, cfg.Log)
	m.chatNotifier = fanout.NewKafkaNotifier(chatProducer)
	m.workers = []app.Worker{chatConsumer}
	m.closers = []func() error{bookingProducer.Close, chatProducer.Close}

	cfg.Log.Info("Kafka messaging enabled",
		"booking_topic", cfg.KafkaBookingTopic,
		"chat_topic", cfg.KafkaChatTopic,
		"consumer_group", groupID,
	)
	return m
}
