package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Store kinds accepted by STORE.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
	StoreMongo  = "mongodb"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	// Server
	Port           string        `validate:"required,numeric"`
	StaticDir      string
	AllowedOrigins []string      `validate:"dive,required"`
	RequestTimeout time.Duration `validate:"gte=0"`

	// Storage
	Store      string `validate:"oneof=file badger mongodb"`
	DataFile   string `validate:"required_if=Store file"`
	BadgerPath string `validate:"required_if=Store badger"`

	MongoURI        string `validate:"required_if=Store mongodb"`
	MongoDatabase   string `validate:"required_if=Store mongodb"`
	MongoCollection string `validate:"required_if=Store mongodb"`

	// Backups
	BackupFile     string
	BackupInterval time.Duration `validate:"gte=0"`
	S3Bucket       string
	S3Prefix       string
	AWSRegion      string
	AWSEndpoint    string

	// Comments
	CommentsAutoApprove      bool
	CommentsStrictValidation bool

	// Rate limiting (disabled when RedisAddr is empty)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int           `validate:"gte=0"`
	RateLimit       int           `validate:"gte=0"`
	RateLimitWindow time.Duration `validate:"gte=0"`

	// Feed
	SiteTitle       string
	SiteURL         string
	SiteDescription string
	SiteAuthor      string
}

var validate = validator.New()

// Load reads the configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		StaticDir:      getEnv("STATIC_DIR", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://127.0.0.1:8000", "http://localhost:8000"}),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		Store:      strings.ToLower(getEnv("STORE", StoreFile)),
		DataFile:   getEnv("DATA_FILE", "data/posts.json"),
		BadgerPath: getEnv("BADGER_PATH", "data/badger"),

		MongoURI:        firstEnv("", "MONGODB_URI", "MONGO_URI"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "blog"),
		MongoCollection: getEnv("MONGO_COLLECTION", "posts"),

		BackupFile:     getEnv("BACKUP_FILE", "data/posts.backup.json"),
		BackupInterval: getEnvDuration("BACKUP_INTERVAL", 5*time.Minute),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Prefix:       getEnv("S3_PREFIX", "folio/backups"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:    getEnv("AWS_ENDPOINT", ""),

		CommentsAutoApprove:      getEnvBool("COMMENTS_AUTO_APPROVE", true),
		CommentsStrictValidation: getEnvBool("COMMENTS_STRICT_VALIDATION", false),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RateLimit:       getEnvInt("RATE_LIMIT", 20),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		SiteTitle:       getEnv("SITE_TITLE", "Blog"),
		SiteURL:         strings.TrimRight(getEnv("SITE_URL", "http://127.0.0.1:8000"), "/"),
		SiteDescription: getEnv("SITE_DESCRIPTION", ""),
		SiteAuthor:      getEnv("SITE_AUTHOR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration accepts Go durations ("90s") and bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
