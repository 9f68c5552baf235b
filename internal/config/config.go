package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration for the D7 messaging hosts.
type Config struct {
	App         AppConfig
	Provider    ProviderConfig
	Credentials CredentialConfig
	HTTP        HTTPConfig
	Kafka       KafkaConfig
	Worker      WorkerConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	Port     int
	LogLevel string
}

// ProviderConfig selects and tunes the transport to D7.
type ProviderConfig struct {
	Backend        string
	TimeoutSeconds int
	BodyLimitBytes int
	SMSURL         string
	WhatsAppURL    string
}

// RedisConfig locates the redis credential store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// CredentialConfig selects how API keys are resolved.
type CredentialConfig struct {
	Source       string
	Name         string
	AllowedNames []string
	File         string
	Redis        RedisConfig
}

// HTTPConfig tunes the HTTP host.
type HTTPConfig struct {
	CORSAllowedOrigins []string
	BodyMaxBytes       int
}

// KafkaConfig defines brokers and topics for the worker host.
type KafkaConfig struct {
	Brokers       []string
	RequestTopic  string
	ResultTopic   string
	ConsumerGroup string
}

// WorkerConfig tunes the Kafka worker.
type WorkerConfig struct {
	Concurrency int
	MsgMaxBytes int
}

// Provider backends.
const (
	BackendD7   = "d7"
	BackendMock = "mock"
)

// Credential sources.
const (
	SourceLiteral = "literal"
	SourceEnv     = "env"
	SourceDotenv  = "dotenv"
	SourceRedis   = "redis"
)

// Fixed D7 endpoints.
const (
	DefaultSMSURL      = "https://api.d7networks.com/messages/v1/send"
	DefaultWhatsAppURL = "https://api.d7networks.com/whatsapp/v2/send"
)

// Load reads environment variables for the CLI and HTTP hosts, applies
// defaults, validates and returns a populated Config.
func Load() (*Config, error) {
	return load(false)
}

// LoadWorker is Load plus the Kafka settings the worker requires.
func LoadWorker() (*Config, error) {
	return load(true)
}

func load(withKafka bool) (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.Port = ldr.getInt("APP_PORT", 8080, false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.Provider.Backend = strings.ToLower(ldr.getString("PROVIDER_BACKEND", BackendD7, false))
	switch cfg.Provider.Backend {
	case BackendD7, BackendMock:
	default:
		ldr.addError(fmt.Sprintf("PROVIDER_BACKEND must be one of %s, %s", BackendD7, BackendMock))
	}
	cfg.Provider.TimeoutSeconds = ldr.getInt("PROVIDER_TIMEOUT_SECONDS", 30, false)
	cfg.Provider.BodyLimitBytes = ldr.getInt("PROVIDER_BODY_LIMIT_BYTES", 64*1024, false)
	cfg.Provider.SMSURL = ldr.getString("D7_SMS_URL", DefaultSMSURL, false)
	cfg.Provider.WhatsAppURL = ldr.getString("D7_WHATSAPP_URL", DefaultWhatsAppURL, false)

	cfg.Credentials.Source = strings.ToLower(ldr.getString("CREDENTIAL_SOURCE", SourceLiteral, false))
	cfg.Credentials.Name = ldr.getString("CREDENTIAL_NAME", "d7Api", false)
	cfg.Credentials.AllowedNames = ldr.getStringSlice("CREDENTIAL_ALLOWED_NAMES", false)
	switch cfg.Credentials.Source {
	case SourceLiteral, SourceEnv:
	case SourceDotenv:
		cfg.Credentials.File = ldr.getString("CREDENTIALS_FILE", ".credentials.env", false)
	case SourceRedis:
		cfg.Credentials.Redis.Addr = ldr.getString("REDIS_ADDR", "", true)
		cfg.Credentials.Redis.Password = ldr.getString("REDIS_PASSWORD", "", false)
		cfg.Credentials.Redis.DB = ldr.getInt("REDIS_DB", 0, false)
		cfg.Credentials.Redis.KeyPrefix = ldr.getString("REDIS_KEY_PREFIX", "d7:credentials:", false)
	default:
		ldr.addError(fmt.Sprintf("CREDENTIAL_SOURCE must be one of %s, %s, %s, %s",
			SourceLiteral, SourceEnv, SourceDotenv, SourceRedis))
	}

	cfg.HTTP.CORSAllowedOrigins = ldr.getStringSlice("CORS_ALLOWED_ORIGINS", false)
	if len(cfg.HTTP.CORSAllowedOrigins) == 0 {
		cfg.HTTP.CORSAllowedOrigins = []string{"*"}
	}
	cfg.HTTP.BodyMaxBytes = ldr.getInt("HTTP_BODY_MAX_BYTES", 64*1024, false)

	cfg.Worker.Concurrency = ldr.getInt("WORKER_CONCURRENCY", 10, false)
	cfg.Worker.MsgMaxBytes = ldr.getInt("MSG_MAX_BYTES", 200000, false)

	if withKafka {
		cfg.Kafka.Brokers = ldr.getStringSlice("KAFKA_BROKERS", true)
		cfg.Kafka.RequestTopic = ldr.getString("KAFKA_REQUEST_TOPIC", "", true)
		cfg.Kafka.ResultTopic = ldr.getString("KAFKA_RESULT_TOPIC", "", true)
		cfg.Kafka.ConsumerGroup = ldr.getString("KAFKA_CONSUMER_GROUP", "", true)
		if cfg.Worker.Concurrency < 1 {
			ldr.addError("WORKER_CONCURRENCY must be >= 1")
		}
	}

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val != "" {
			return val
		}
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getStringSlice(key string, required bool) []string {
	raw := l.getString(key, "", required)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if required && len(out) == 0 {
		l.addError(fmt.Sprintf("%s must contain at least one entry", key))
	}
	return out
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
