package main

import (
	"context"
	"flag"
	"time"

	"roombook/api"
	"roombook/cache"
	"roombook/config"
	"roombook/models"
	"roombook/services/booking"
	"roombook/services/session"
	"roombook/storage"
	"roombook/utils"

	"go.uber.org/zap"
)

func main() {
	loginData := flag.String("login", "", "authenticate with the given initData payload")
	phone := flag.String("phone", "", "optional phone number for login")
	demo := flag.Bool("demo", false, "run the room/date/slot/submit smoke flow")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	tokenStore := storage.NewFileTokenStore(config.AppConfig.TokenFile)

	// The client reads the live token through the session manager, so build
	// the manager around a client that closes over it.
	var manager *session.DefaultManager
	httpClient := api.NewHTTPClient(
		config.AppConfig.APIBaseURL,
		func() string { return manager.Token() },
		time.Duration(config.AppConfig.HTTPTimeoutSeconds)*time.Second,
	)
	manager = session.NewManager(httpClient, tokenStore)

	coordinator := newCoordinator(logger)
	cached := cache.NewCachedClient(httpClient, coordinator,
		time.Duration(config.AppConfig.CacheTTLSeconds)*time.Second)
	workflow := booking.NewWorkflowController(cached, coordinator, manager)

	ctx := context.Background()

	if err := manager.Restore(ctx); err != nil {
		logger.Warn("Session restore failed", zap.Error(err))
	}
	logger.Info("Session restored", zap.String("status", manager.Status().String()))

	if *loginData != "" {
		if err := manager.Login(ctx, *loginData, *phone); err != nil {
			logger.Fatal("Login failed", zap.String("reason", utils.UserMessage(err)))
		}
		logger.Info("Logged in", zap.String("user", manager.User().FirstName))
	}

	if *demo {
		runDemo(ctx, logger, workflow)
	}
}

// newCoordinator prefers Redis and falls back to the in-process cache when
// Redis is unreachable.
func newCoordinator(logger *zap.Logger) cache.Coordinator {
	redisCache, err := cache.NewRedisCache(
		config.AppConfig.RedisAddr,
		config.AppConfig.RedisPassword,
		config.AppConfig.RedisCacheDB,
	)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	return redisCache
}

// runDemo exercises the full selection workflow against the configured API.
func runDemo(ctx context.Context, logger *zap.Logger, workflow *booking.WorkflowController) {
	rooms, err := workflow.Rooms(ctx)
	if err != nil {
		logger.Fatal("Failed to list rooms", zap.String("reason", utils.UserMessage(err)))
	}
	if len(rooms) == 0 {
		logger.Fatal("No rooms available")
	}
	logger.Info("Rooms loaded", zap.Int("count", len(rooms)))

	settled := make(chan struct{}, 1)
	workflow.Subscribe(func() {
		select {
		case settled <- struct{}{}:
		default:
		}
	})

	workflow.SelectRoom(ctx, rooms[0].ID)
	slots := waitForSlots(workflow, settled)
	if len(slots) == 0 {
		logger.Fatal("No free slots today", zap.String("room", rooms[0].Name))
	}

	if err := workflow.SelectSlot(slots[0]); err != nil {
		logger.Fatal("Failed to select slot", zap.String("reason", utils.UserMessage(err)))
	}
	created, err := workflow.Submit(ctx)
	if err != nil {
		logger.Fatal("Booking failed", zap.String("reason", utils.UserMessage(err)))
	}
	logger.Info("Booking confirmed",
		zap.String("bookingID", created.ID),
		zap.String("room", created.Room),
		zap.String("start", created.StartTime))

	mine, err := workflow.MyBookings(ctx)
	if err != nil {
		logger.Fatal("Failed to list bookings", zap.String("reason", utils.UserMessage(err)))
	}
	logger.Info("My bookings", zap.Int("count", len(mine)))
}

// waitForSlots blocks until the pending availability fetch settles, bounded
// by a deadline so a dead server cannot hang the demo.
func waitForSlots(workflow *booking.WorkflowController, settled <-chan struct{}) []models.AvailabilitySlot {
	deadline := time.After(10 * time.Second)
	for {
		slots, loading := workflow.AvailableSlots()
		if !loading {
			return slots
		}
		select {
		case <-settled:
		case <-deadline:
			return slots
		}
	}
}
