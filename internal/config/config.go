package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the career-exploration service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	GenerationProvider string
	GenerationTimeout  time.Duration
	ProgressInterval   time.Duration

	OllamaURL         string
	OllamaModel       string
	OllamaTemperature float64
	OllamaNumPredict  int

	GeminiAPIKey string
	GeminiModel  string

	RunwareAPIKey         string
	RunwareWSURL          string
	RunwareModel          string
	RunwarePositivePrefix string

	DatabaseURL string

	MaxDetailQuestions int

	HHBaseURL          string
	HHAreaID           int
	HHRequestsPerSec   int
	HHVacanciesPerRole int
}

// Load reads .env (when present) and environment variables, applying safe defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:              envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:      envOrDefault("APP_METRICS_NAMESPACE", "profvibe"),
		GenerationProvider:    envOrDefault("GENERATION_PROVIDER", "auto"),
		OllamaURL:             envOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:           envOrDefault("OLLAMA_MODEL", "llama3.1:8b"),
		OllamaTemperature:     0.7,
		OllamaNumPredict:      1024,
		GeminiAPIKey:          stringsTrimSpace("GEMINI_API_KEY"),
		GeminiModel:           envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		RunwareAPIKey:         stringsTrimSpace("RUNWARE_API_KEY"),
		RunwareWSURL:          envOrDefault("RUNWARE_WS_URL", "wss://ws-api.runware.ai/v1"),
		RunwareModel:          envOrDefault("RUNWARE_MODEL", "runware:101@1"),
		RunwarePositivePrefix: envOrDefault("RUNWARE_POSITIVE_PREFIX", "photos about job: "),
		DatabaseURL:           stringsTrimSpace("DATABASE_URL"),
		HHBaseURL:             envOrDefault("HH_BASE_URL", "https://api.hh.ru"),
		HHAreaID:              113,
		HHRequestsPerSec:      10,
		HHVacanciesPerRole:    10,
		MaxDetailQuestions:    3,
		ShutdownTimeout:       15 * time.Second,
		GenerationTimeout:     90 * time.Second,
		ProgressInterval:      time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationTimeout, err = durationFromEnv("GENERATION_TIMEOUT", cfg.GenerationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ProgressInterval, err = durationFromEnv("GENERATION_PROGRESS_INTERVAL", cfg.ProgressInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxDetailQuestions, err = intFromEnv("MAX_DETAIL_QUESTIONS", cfg.MaxDetailQuestions)
	if err != nil {
		return Config{}, err
	}
	cfg.OllamaTemperature, err = floatFromEnv("OLLAMA_TEMPERATURE", cfg.OllamaTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.OllamaNumPredict, err = intFromEnv("OLLAMA_NUM_PREDICT", cfg.OllamaNumPredict)
	if err != nil {
		return Config{}, err
	}
	cfg.HHAreaID, err = intFromEnv("HH_AREA_ID", cfg.HHAreaID)
	if err != nil {
		return Config{}, err
	}
	cfg.HHRequestsPerSec, err = intFromEnv("HH_REQUESTS_PER_SEC", cfg.HHRequestsPerSec)
	if err != nil {
		return Config{}, err
	}
	cfg.HHVacanciesPerRole, err = intFromEnv("HH_VACANCIES_PER_ROLE", cfg.HHVacanciesPerRole)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxDetailQuestions < 1 || cfg.MaxDetailQuestions > 10 {
		return Config{}, fmt.Errorf("MAX_DETAIL_QUESTIONS must be between 1 and 10")
	}
	if cfg.GenerationTimeout < time.Second {
		return Config{}, fmt.Errorf("GENERATION_TIMEOUT must be at least 1s")
	}
	if cfg.ProgressInterval <= 0 {
		return Config{}, fmt.Errorf("GENERATION_PROGRESS_INTERVAL must be positive")
	}
	if cfg.OllamaTemperature < 0 || cfg.OllamaTemperature > 2 {
		return Config{}, fmt.Errorf("OLLAMA_TEMPERATURE must be within [0, 2]")
	}
	if cfg.OllamaNumPredict <= 0 {
		return Config{}, fmt.Errorf("OLLAMA_NUM_PREDICT must be positive")
	}
	if cfg.HHRequestsPerSec <= 0 {
		return Config{}, fmt.Errorf("HH_REQUESTS_PER_SEC must be positive")
	}
	if cfg.HHVacanciesPerRole <= 0 {
		return Config{}, fmt.Errorf("HH_VACANCIES_PER_ROLE must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
