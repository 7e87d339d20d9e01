package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Store is "mongo" or "memory".
	Store         string
	MongoURI      string
	MongoDatabase string

	JWTSecret   string
	CORSOrigins []string

	VideoSDKAPIKey    string
	VideoSDKSecretKey string
	VideoSDKEndpoint  string

	TranscriptsDir            string
	TranscriptionWebhookURL   string
	TranscriptionWebhookToken string

	TextbeltAPIKey   string
	ReminderInterval time.Duration

	RedisAddr      string
	RedisPassword  string
	LoginRateLimit int
}

// Load reads .env (when present) and the process environment.
// loadedEnvFile reports whether a .env file was found.
func Load() (cfg Config, loadedEnvFile bool, err error) {
	loadedEnvFile = godotenv.Load() == nil

	cfg = Config{
		Port:                      getenv("API_PORT", "8080"),
		Store:                     strings.ToLower(getenv("STORE", "mongo")),
		MongoURI:                  os.Getenv("MONGO_URI"),
		MongoDatabase:             getenv("MONGO_DATABASE", "telecare"),
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		CORSOrigins:               splitList(getenv("CORS_ORIGINS", "*")),
		VideoSDKAPIKey:            os.Getenv("VIDEOSDK_API_KEY"),
		VideoSDKSecretKey:         os.Getenv("VIDEOSDK_SECRET_KEY"),
		VideoSDKEndpoint:          strings.TrimRight(getenv("VIDEOSDK_API_ENDPOINT", "https://api.videosdk.live/v2"), "/"),
		TranscriptsDir:            getenv("TRANSCRIPTS_DIR", "transcripts"),
		TranscriptionWebhookURL:   os.Getenv("TRANSCRIPTION_WEBHOOK_URL"),
		TranscriptionWebhookToken: os.Getenv("TRANSCRIPTION_WEBHOOK_TOKEN"),
		TextbeltAPIKey:            os.Getenv("TEXTBELT_API_KEY"),
		ReminderInterval:          time.Duration(getint("REMINDER_INTERVAL_MINUTES", 15)) * time.Minute,
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		LoginRateLimit:            getint("LOGIN_RATE_LIMIT", 10),
	}
	return cfg, loadedEnvFile, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Store {
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE=mongo"))
		}
	case "memory":
	default:
		errs = append(errs, errors.New("STORE must be mongo or memory"))
	}
	if c.ReminderInterval <= 0 {
		errs = append(errs, errors.New("REMINDER_INTERVAL_MINUTES must be positive"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
