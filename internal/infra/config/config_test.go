package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "STORAGE_MODE", "MONGO_URI", "KAFKA_BROKERS", "RETRY_BACKOFF", "QUOTE_CACHE_TTL", "REDIS_DB", "KAFKA_TOPICS", "KAFKA_CONSUME"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageMode != StorageMemory || cfg.HTTPAddr != ":8080" || cfg.QuoteCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[2] != 30*time.Second {
		t.Fatalf("unexpected backoff %v", cfg.RetryBackoff)
	}
	if len(cfg.KafkaTopics) != 3 || !cfg.KafkaConsume {
		t.Fatalf("unexpected kafka settings %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "mongo needs uri", env: map[string]string{"STORAGE_MODE": "mongo"}, want: "MONGO_URI"},
		{name: "mongo needs brokers", env: map[string]string{"STORAGE_MODE": "mongo", "MONGO_URI": "mongodb://localhost"}, want: "KAFKA_BROKERS"},
		{name: "unknown mode", env: map[string]string{"STORAGE_MODE": "sqlite"}, want: "STORAGE_MODE"},
		{name: "bad duration", env: map[string]string{"QUOTE_CACHE_TTL": "soon"}, want: "QUOTE_CACHE_TTL"},
		{name: "bad backoff", env: map[string]string{"RETRY_BACKOFF": "1s,later"}, want: "RETRY_BACKOFF"},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "zero"}, want: "REDIS_DB"},
		{name: "bad bool", env: map[string]string{"KAFKA_CONSUME": "maybe"}, want: "KAFKA_CONSUME"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{"STORAGE_MODE", "MONGO_URI", "KAFKA_BROKERS", "QUOTE_CACHE_TTL", "RETRY_BACKOFF", "REDIS_DB", "KAFKA_CONSUME"} {
				t.Setenv(key, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMongoMode(t *testing.T) {
	t.Setenv("STORAGE_MODE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageMode != StorageMongo || len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("HTTP_ADDR=:9191\nMONGO_DB=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("MONGO_DB", "from-env")
	os.Unsetenv("HTTP_ADDR")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("HTTP_ADDR"); got != ":9191" {
		t.Fatalf("expected HTTP_ADDR from file, got %q", got)
	}
	if got := os.Getenv("MONGO_DB"); got != "from-env" {
		t.Fatalf("existing variables must win, got %q", got)
	}
}
