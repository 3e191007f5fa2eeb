package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitalong_server/config"
	"gitalong_server/routes"
	"gitalong_server/services"
	"gitalong_server/socket"
)

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("initializing DynamoDB client", zap.String("region", cfg.AWS.Region))
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWS.Region)
	dynamoService := &services.DynamoService{Client: dynamoClient}

	// Stores
	swipeStore := &services.DynamoSwipeStore{Dynamo: dynamoService}
	matchStore := &services.DynamoMatchStore{Dynamo: dynamoService}
	messageStore := &services.DynamoMessageStore{Dynamo: dynamoService}
	profileStore := &services.DynamoProfileStore{Dynamo: dynamoService}

	// Services
	identity := services.NewBearerIdentity(cfg.Auth.JWTSecret)
	guard := services.NewAuthGuard(identity, logger)
	guard.Margin = cfg.Auth.FreshnessMargin
	guard.RefreshTimeout = cfg.Auth.RefreshTimeout

	detector := services.NewMutualMatchDetector(swipeStore, matchStore, profileStore, logger)
	worker := services.NewMatchWorker(detector, cfg.Worker.Workers, cfg.Worker.QueueSize, logger)
	defer worker.Stop()

	swipeService := services.NewSwipeService(swipeStore, profileStore, worker, logger)
	matchService := services.NewMatchService(matchStore, logger)
	hub := socket.NewHub()
	chatService := services.NewChatService(messageStore, matchStore, hub, logger)
	profileService := services.NewUserProfileService(profileStore, logger)
	recommendationService := services.NewRecommendationService(profileStore, swipeStore, logger)

	// Router
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(routes.RequestLogging(logger))
	api.Use(routes.AuthMiddleware(guard))

	routes.RegisterSwipeRoutes(api, swipeService)
	routes.RegisterMatchRoutes(api, matchService)
	routes.RegisterChatRoutes(api, chatService, logger)
	routes.RegisterUserProfileRoutes(api, profileService)
	routes.RegisterRecommendationRoutes(api, recommendationService)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// No server-wide WriteTimeout: the websocket endpoint holds its
	// response open for the stream's lifetime.
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           corsHandler,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}
