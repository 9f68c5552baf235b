package config_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/example/d7-messaging/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Env != "development" {
		t.Fatalf("expected development env, got %s", cfg.App.Env)
	}
	if cfg.Provider.Backend != config.BackendD7 {
		t.Fatalf("expected d7 backend, got %s", cfg.Provider.Backend)
	}
	if cfg.Provider.SMSURL != "https://api.d7networks.com/messages/v1/send" {
		t.Fatalf("unexpected sms url %s", cfg.Provider.SMSURL)
	}
	if cfg.Provider.WhatsAppURL != "https://api.d7networks.com/whatsapp/v2/send" {
		t.Fatalf("unexpected whatsapp url %s", cfg.Provider.WhatsAppURL)
	}
	if cfg.Credentials.Source != config.SourceLiteral {
		t.Fatalf("expected literal credential source, got %s", cfg.Credentials.Source)
	}
	if cfg.Credentials.Name != "d7Api" {
		t.Fatalf("expected credential name d7Api, got %s", cfg.Credentials.Name)
	}
	if !reflect.DeepEqual(cfg.HTTP.CORSAllowedOrigins, []string{"*"}) {
		t.Fatalf("unexpected cors origins %v", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.Provider.TimeoutSeconds != 30 {
		t.Fatalf("expected default provider timeout 30, got %d", cfg.Provider.TimeoutSeconds)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PROVIDER_BACKEND", "MOCK")
	t.Setenv("CREDENTIAL_SOURCE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CREDENTIAL_ALLOWED_NAMES", "staging, eu")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Port != 9000 || cfg.App.LogLevel != "warn" {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
	if cfg.Provider.Backend != config.BackendMock {
		t.Fatalf("expected mock backend, got %s", cfg.Provider.Backend)
	}
	if cfg.Credentials.Redis.Addr != "redis:6379" || cfg.Credentials.Redis.DB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg.Credentials.Redis)
	}
	if cfg.Credentials.Redis.KeyPrefix != "d7:credentials:" {
		t.Fatalf("unexpected key prefix %q", cfg.Credentials.Redis.KeyPrefix)
	}
	if !reflect.DeepEqual(cfg.Credentials.AllowedNames, []string{"staging", "eu"}) {
		t.Fatalf("unexpected allowed credential names %v", cfg.Credentials.AllowedNames)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.HTTP.CORSAllowedOrigins, want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.HTTP.CORSAllowedOrigins)
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("PROVIDER_BACKEND", "twilio")
	t.Setenv("CREDENTIAL_SOURCE", "vault")
	t.Setenv("APP_PORT", "eighty")

	_, err := config.Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"PROVIDER_BACKEND", "CREDENTIAL_SOURCE", "APP_PORT must be a valid integer"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to mention %q, got %q", want, msg)
		}
	}
}

func TestLoadRedisRequiresAddr(t *testing.T) {
	t.Setenv("CREDENTIAL_SOURCE", "redis")

	_, err := config.Load()
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR is required") {
		t.Fatalf("expected REDIS_ADDR error, got %v", err)
	}
}

func TestLoadWorkerRequiresKafka(t *testing.T) {
	_, err := config.LoadWorker()
	if err == nil {
		t.Fatalf("expected error when kafka settings are missing")
	}
	msg := err.Error()
	for _, key := range []string{"KAFKA_BROKERS", "KAFKA_REQUEST_TOPIC", "KAFKA_RESULT_TOPIC", "KAFKA_CONSUMER_GROUP"} {
		if !strings.Contains(msg, key+" is required") {
			t.Fatalf("expected error about %s, got %q", key, msg)
		}
	}
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9093")
	t.Setenv("KAFKA_REQUEST_TOPIC", "d7.requests")
	t.Setenv("KAFKA_RESULT_TOPIC", "d7.results")
	t.Setenv("KAFKA_CONSUMER_GROUP", "d7-worker")
	t.Setenv("WORKER_CONCURRENCY", "4")

	cfg, err := config.LoadWorker()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantBrokers := []string{"broker-a:9092", "broker-b:9093"}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, wantBrokers) {
		t.Fatalf("expected brokers %v, got %v", wantBrokers, cfg.Kafka.Brokers)
	}
	if cfg.Worker.Concurrency != 4 {
		t.Fatalf("expected concurrency 4, got %d", cfg.Worker.Concurrency)
	}
}
