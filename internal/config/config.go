package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
)

type Config struct {
	CLI      CLIConfig
	Tracing  TracingConfig
	Queue    QueueConfig
	Worker   WorkerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Webhook  WebhookConfig
}

type CLIConfig struct {
	Backend     string
	Verbose     bool
	JPEGQuality int
	// Viewer is the command used by --show. Empty picks the platform default.
	Viewer      string
	MetricsFile string
}

type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Name          string
}

func (q QueueConfig) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     q.RedisAddr,
		Password: q.RedisPassword,
		DB:       q.RedisDB,
	}
}

type WorkerConfig struct {
	Concurrency    int
	MaxActiveRuns  int
	LocalOutputDir string
	MetricsAddr    string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Enabled reports whether s3:// sources and targets can be served.
func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != ""
}

type DatabaseConfig struct {
	// DSN selects the Postgres run store. Empty keeps runs in memory.
	DSN string
}

type WebhookConfig struct {
	Secret string
}

func Load() Config {
	defaultWorkerSlots := max(1, runtime.NumCPU()/2)

	return Config{
		CLI: CLIConfig{
			Backend:     strings.ToLower(env("IMGBOX_BACKEND", "imaging")),
			Verbose:     envBool("IMGBOX_VERBOSE", false),
			JPEGQuality: envInt("IMGBOX_JPEG_QUALITY", 90),
			Viewer:      env("IMGBOX_VIEWER", ""),
			MetricsFile: env("IMGBOX_METRICS_FILE", ""),
		},
		Tracing: TracingConfig{
			Exporter:     strings.ToLower(env("IMGBOX_TRACE_EXPORTER", "none")),
			OTLPEndpoint: env("IMGBOX_OTLP_ENDPOINT", "localhost:4318"),
			OTLPInsecure: envBool("IMGBOX_OTLP_INSECURE", true),
		},
		Queue: QueueConfig{
			RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
			RedisPassword: env("REDIS_PASSWORD", ""),
			RedisDB:       envInt("REDIS_DB", 0),
			Name:          env("IMGBOX_QUEUE", "default"),
		},
		Worker: WorkerConfig{
			Concurrency:    envInt("WORKER_CONCURRENCY", max(2, runtime.NumCPU())),
			MaxActiveRuns:  envInt("WORKER_MAX_ACTIVE_RUNS", defaultWorkerSlots),
			LocalOutputDir: env("WORKER_LOCAL_OUTPUT_DIR", "./.imgbox-output"),
			MetricsAddr:    env("WORKER_METRICS_ADDR", ":9091"),
		},
		Storage: StorageConfig{
			Endpoint:  env("MINIO_ENDPOINT", ""),
			AccessKey: env("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: env("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    envBool("MINIO_USE_SSL", false),
		},
		Database: DatabaseConfig{
			DSN: env("POSTGRES_DSN", ""),
		},
		Webhook: WebhookConfig{
			Secret: env("IMGBOX_WEBHOOK_SECRET", ""),
		},
	}
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
