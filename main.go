package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nexia/config"
	"nexia/handlers"
	"nexia/middleware"
	"nexia/routes"
	"nexia/services/calendar"
	ai "nexia/services/intelligence"
	"nexia/services/scheduling"
	"nexia/services/telegram"
	"nexia/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("main: failed to load config: " + err.Error())
	}
	logger, err := utils.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		panic("main: failed to build logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Calendar gateway.
	backend, backendName := newCalendarBackend(ctx, cfg, logger)
	policy := calendar.FailClosed
	if cfg.CalendarFailOpen {
		policy = calendar.FailOpen
	}
	gateway := calendar.NewGateway(backend, policy, logger)

	// Catalog.
	resolver := scheduling.NewResolver(cfg.Location(), cfg.Locale, nil)
	catalog, err := scheduling.LoadCatalog(cfg.ServicesFile, gateway, resolver, logger)
	if err != nil {
		logger.Fatal("main: failed to load services catalog", zap.String("path", cfg.ServicesFile), zap.Error(err))
	}

	// Conversation sessions.
	var (
		sessions    ai.SessionStore
		redisClient *redis.Client
	)
	switch cfg.SessionBackend {
	case "redis":
		redisClient, err = utils.NewSessionRedis(ctx, cfg)
		if err != nil {
			logger.Fatal("main: failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		sessions = ai.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	default:
		fileStore, err := ai.NewFileSessionStore(cfg.SessionsFile)
		if err != nil {
			logger.Fatal("main: failed to open sessions file", zap.Error(err))
		}
		sessions = fileStore
	}

	// Agent.
	tools := ai.NewToolbox(catalog, logger)
	if cfg.GeminiAPIKey == "" {
		logger.Warn("main: GEMINI_API_KEY is empty, model calls will fail")
	}
	model, err := ai.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, tools.Declarations())
	if err != nil {
		logger.Fatal("main: failed to create Gemini model", zap.Error(err))
	}
	defer model.Close()
	agent := ai.NewAgent(model, tools, sessions, resolver.Now, cfg.LLMMaxAttempts, logger)

	health := utils.NewHealthMonitor(redisClient, backendName, len(catalog.GetAll()))
	health.Start(ctx, time.Minute)

	// Create the Gin router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler(logger))
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	chatHandler := handlers.NewChatHandler(agent, logger)
	servicesHandler := handlers.NewServicesHandler(catalog, tools, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:      chatHandler.HandleChat,
		ResetChatHandler: chatHandler.ResetChat,

		ListServicesHandler:        servicesHandler.ListServices,
		GetServiceHandler:          servicesHandler.GetService,
		GetSlotsHandler:            servicesHandler.GetSlots,
		GetProfessionalsHandler:    servicesHandler.GetProfessionals,
		ScheduleAppointmentHandler: servicesHandler.ScheduleAppointment,

		HealthHandler: handlers.HealthHandler(health),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Telegram frontend.
	if cfg.TelegramBotToken != "" {
		bot := telegram.NewBot(cfg.TelegramBotToken, agent, cfg.TelegramPollTimeout, logger,
			telegram.WithBaseURL(cfg.TelegramAPIURL))
		go func() {
			if err := bot.Run(ctx); err != nil {
				logger.Error("main: telegram bot stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("main: TELEGRAM_BOT_TOKEN is empty, telegram bot disabled")
	}

	// Start the HTTP server.
	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newCalendarBackend returns the Google Calendar backend when it is
// configured. Without it every availability query is unknown, so the fail
// policy alone decides.
func newCalendarBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (calendar.Backend, string) {
	if cfg.GoogleCalendarID == "" || cfg.GoogleCredentialsFile == "" {
		logger.Warn("main: Google Calendar not configured, calendar disabled")
		return calendar.NewDisabledBackend(), "disabled"
	}
	backend, err := calendar.NewGoogleBackend(ctx, cfg.GoogleCalendarID, cfg.Location(), cfg.CalendarTimeout, logger,
		option.WithCredentialsFile(cfg.GoogleCredentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		logger.Fatal("main: failed to create Google Calendar client", zap.Error(err))
	}
	return backend, "google"
}
