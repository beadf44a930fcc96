package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string

	QuizServiceURL   string
	SurveyServiceURL string
	RemoteRPCTimeout time.Duration

	TallySweepInterval time.Duration
}

func Load() (Config, error) {
	// A missing .env file is not an error; containers inject the
	// environment directly.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "compezze"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   redisAddr,

		QuizServiceURL:   strings.TrimSpace(os.Getenv("QUIZ_SERVICE_URL")),
		SurveyServiceURL: strings.TrimSpace(os.Getenv("SURVEY_SERVICE_URL")),
		RemoteRPCTimeout: envDuration("REMOTE_RPC_TIMEOUT_SECONDS", 5*time.Second),

		TallySweepInterval: envDuration("TALLY_SWEEP_INTERVAL_SECONDS", 60*time.Second),
	}, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
