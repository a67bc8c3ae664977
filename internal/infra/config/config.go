package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env           string
	HTTPAddr      string
	StorageDriver string
	MongoURI      string
	MongoDB       string
	FixturesPath  string
	FixturesS3Key string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3UseSSL      bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	KafkaBrokers  []string
	CalendarTopic string
	KafkaGroupID  string
	GSTRate       float64
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Env:           "dev",
		HTTPAddr:      ":5000",
		StorageDriver: DriverMemory,
		MongoDB:       "villarent",
		FixturesPath:  "data/villas.json",
		S3Endpoint:    "localhost:9000",
		S3AccessKey:   "minioadmin",
		S3SecretKey:   "minioadmin",
		S3Bucket:      "villarent-fixtures",
		CacheTTL:      30 * time.Second,
		CalendarTopic: "villa.calendar",
		KafkaGroupID:  "villarent-ingest",
		GSTRate:       0.18,
	}
}

// LoadDotEnv reads files (".env" when none are given) into the environment.
// Missing files are ignored and existing variables are never overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	def := Defaults()
	cfg := Config{
		Env:           getEnv("APP_ENV", def.Env),
		HTTPAddr:      httpAddr(def.HTTPAddr),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", def.StorageDriver)),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       getEnv("MONGO_DB", def.MongoDB),
		FixturesPath:  getEnv("FIXTURES_PATH", def.FixturesPath),
		FixturesS3Key: os.Getenv("FIXTURES_S3_KEY"),
		S3Endpoint:    getEnv("S3_ENDPOINT", def.S3Endpoint),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", def.S3AccessKey),
		S3SecretKey:   getEnv("S3_SECRET_KEY", def.S3SecretKey),
		S3Bucket:      getEnv("S3_BUCKET", def.S3Bucket),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CalendarTopic: getEnv("KAFKA_CALENDAR_TOPIC", def.CalendarTopic),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", def.KafkaGroupID),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = parseDurationEnv("CACHE_TTL", def.CacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.GSTRate, err = parseFloatEnv("GST_RATE", def.GSTRate); err != nil {
		return Config{}, err
	}
	if cfg.GSTRate < 0 {
		return Config{}, fmt.Errorf("GST_RATE must not be negative")
	}

	switch cfg.StorageDriver {
	case DriverMemory:
	case DriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_DRIVER=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}

// httpAddr prefers HTTP_ADDR and accepts a bare PORT as well.
func httpAddr(def string) string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if strings.HasPrefix(port, ":") {
			return port
		}
		return ":" + port
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %q", key, raw)
	}
	return v, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %q", key, raw)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
