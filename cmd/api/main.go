package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/harentsoaR/telecare-api/internal/config"
	"github.com/harentsoaR/telecare-api/internal/handlers"
	"github.com/harentsoaR/telecare-api/internal/repository"
	"github.com/harentsoaR/telecare-api/internal/services"
	"github.com/harentsoaR/telecare-api/internal/utils"
)

func main() {
	cfg, loadedEnvFile, cfgErr := config.Load()

	logCfg := utils.LogConfigFromEnv()
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if !loadedEnvFile {
		logger.Info("no .env file found, relying on environment variables")
	}
	if cfgErr != nil {
		logger.Fatal("invalid configuration", zap.Error(cfgErr))
	}
	if !logCfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	var store repository.Store
	switch cfg.Store {
	case "memory":
		store = repository.NewMemoryStore()
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err == nil {
			err = client.Ping(connectCtx, nil)
		}
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer dcancel()
			_ = client.Disconnect(dctx)
		}()

		mongoStore := repository.NewMongoStore(client.Database(cfg.MongoDatabase))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Fatal("failed to create indexes", zap.Error(err))
		}
		store = mongoStore
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	}

	// --- Redis (optional) ---
	var rdb redis.Cmdable
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting fails open", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		rdb = client
	}

	// --- Services ---
	codec, err := utils.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("token codec", zap.Error(err))
	}
	notifier := services.NewNotificationService(cfg.TextbeltAPIKey, logger.Named("sms"))
	videoSDK := services.NewVideoSDKClient(cfg.VideoSDKAPIKey, cfg.VideoSDKSecretKey, cfg.VideoSDKEndpoint)
	transcripts := services.NewTranscriptionManager(cfg.TranscriptsDir, cfg.TranscriptionWebhookURL, videoSDK, logger.Named("transcription"))

	reminder := services.NewAppointmentReminder(store, notifier, logger.Named("reminders"))
	scheduler, err := reminder.StartReminderCron(cfg.ReminderInterval)
	if err != nil {
		logger.Fatal("reminder cron", zap.Error(err))
	}

	// --- Handlers and router ---
	h := handlers.NewHandler(store, codec, notifier, logger)
	h.Meetings = videoSDK
	h.Transcripts = transcripts
	h.WebhookToken = cfg.TranscriptionWebhookToken

	router := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		Redis:          rdb,
		LoginRateLimit: cfg.LoginRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	scheduler.Stop()
	transcripts.Shutdown(shutdownCtx)
	notifier.Wait()
}
