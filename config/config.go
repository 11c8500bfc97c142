package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates every tunable consumed by the service. It is loaded
// once in main and handed to components by constructor injection; nothing
// reads the environment after Load returns.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upload    UploadConfig    `yaml:"upload"`
	Storage   StorageConfig   `yaml:"storage"`
	Store     StoreConfig     `yaml:"store"`
	Queue     QueueConfig     `yaml:"queue"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type UploadConfig struct {
	// MaxFileSizeMB bounds the raw byte count of an upload, not any
	// transport-level size hint.
	MaxFileSizeMB int64 `yaml:"maxFileSizeMB"`
}

// StorageConfig selects the raw-document backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // "local", "minio" or "s3"
	Local   LocalConfig `yaml:"local"`
	Minio   MinioConfig `yaml:"minio"`
	S3      S3Config    `yaml:"s3"`
}

type LocalConfig struct {
	UploadDir string `yaml:"uploadDir"`
}

type MinioConfig struct {
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	Endpoint   string `yaml:"endpoint"`
	UseSSL     bool   `yaml:"useSSL"`
	Region     string `yaml:"region"`
	BucketName string `yaml:"bucketName"`
}

type S3Config struct {
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
}

// StoreConfig selects the record-store backend. The badger backend is
// embedded and single-process; the redis backend is shared between the
// server and worker binaries.
type StoreConfig struct {
	Backend   string `yaml:"backend"` // "badger" or "redis"
	BadgerDir string `yaml:"badgerDir"`
	RedisAddr string `yaml:"redisAddr"`
	RedisDB   int    `yaml:"redisDB"`
}

// QueueConfig selects the pipeline scheduler. With a redis address the
// asynq queue is used and cmd/worker consumes it; otherwise a bounded
// in-process pool runs pipelines inside the server binary.
type QueueConfig struct {
	RedisAddr   string `yaml:"redisAddr"`
	RedisDB     int    `yaml:"redisDB"`
	Concurrency int    `yaml:"concurrency"`
}

type LLMConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

type EmbeddingConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

type IndexConfig struct {
	Name      string `yaml:"name"`
	Dimension int    `yaml:"dimension"`
	Metric    string `yaml:"metric"`
	BadgerDir string `yaml:"badgerDir"`
	RedisAddr string `yaml:"redisAddr"`
	RedisDB   int    `yaml:"redisDB"`
}

// Load builds the configuration from .env (if present), the process
// environment, and an optional config.yaml overlay.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: envOr("SERVER_ADDR", ":8080"),
		},
		Upload: UploadConfig{
			MaxFileSizeMB: envInt64Or("MAX_FILE_SIZE_MB", 5),
		},
		Storage: StorageConfig{
			Backend: envOr("STORAGE_BACKEND", "local"),
			Local: LocalConfig{
				UploadDir: envOr("UPLOAD_DIR", "uploads"),
			},
			Minio: MinioConfig{
				AccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
				SecretKey:  os.Getenv("MINIO_SECRET_KEY"),
				Endpoint:   os.Getenv("MINIO_ENDPOINT"),
				UseSSL:     envBoolOr("MINIO_USE_SSL", false),
				Region:     os.Getenv("MINIO_REGION"),
				BucketName: os.Getenv("MINIO_BUCKET_NAME"),
			},
			S3: S3Config{
				BucketName: os.Getenv("AWS_S3_BUCKET_NAME"),
				Region:     os.Getenv("AWS_REGION"),
				AccessKey:  os.Getenv("AWS_ACCESS_KEY"),
				SecretKey:  os.Getenv("AWS_SECRET_KEY"),
			},
		},
		Store: StoreConfig{
			Backend:   envOr("STORE_BACKEND", "badger"),
			BadgerDir: envOr("STORE_BADGER_DIR", "data/records"),
			RedisAddr: os.Getenv("STORE_REDIS_ADDR"),
			RedisDB:   int(envInt64Or("STORE_REDIS_DB", 0)),
		},
		Queue: QueueConfig{
			RedisAddr:   os.Getenv("QUEUE_REDIS_ADDR"),
			RedisDB:     int(envInt64Or("QUEUE_REDIS_DB", 0)),
			Concurrency: int(envInt64Or("QUEUE_CONCURRENCY", 5)),
		},
		LLM: LLMConfig{
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   envOr("LLM_MODEL", "gemini-2.0-flash"),
			APIKey:  os.Getenv("LLM_API_KEY"),
		},
		Embedding: EmbeddingConfig{
			BaseURL: os.Getenv("EMBEDDING_BASE_URL"),
			Model:   envOr("EMBEDDING_MODEL", "embedding-001"),
			APIKey:  os.Getenv("EMBEDDING_API_KEY"),
		},
		Index: IndexConfig{
			Name:      envOr("INDEX_NAME", "resumes-index"),
			Dimension: int(envInt64Or("INDEX_DIMENSION", 768)),
			Metric:    envOr("INDEX_METRIC", "cosine"),
			BadgerDir: envOr("INDEX_BADGER_DIR", "data/index"),
			RedisAddr: os.Getenv("INDEX_REDIS_ADDR"),
			RedisDB:   int(envInt64Or("INDEX_REDIS_DB", 0)),
		},
	}

	if path := envOr("CONFIG_FILE", "config.yaml"); path != "" {
		if err := overlayYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.Upload.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("invalid upload size limit: %d MB", cfg.Upload.MaxFileSizeMB)
	}

	return cfg, nil
}

// overlayYAML merges a yaml file on top of the env-derived config.
// A missing file is ignored.
func overlayYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
