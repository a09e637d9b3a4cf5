package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	pkgkafka "github.com/bibbank/decision-engine/pkg/kafka"
	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	EventsTopic   string
	ConsumerGroup string
	AutoCreate    bool
	TLS           bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

type LogConfig struct {
	Level  string
	Format string
}

type JWTConfig struct {
	Secret        string
	PublicKey     string
	PublicKeyFile string
	Issuer        string
}

type Config struct {
	GRPCPort       int
	HTTPPort       int
	ServiceName    string
	Version        string
	DB             DatabaseConfig
	Kafka          KafkaConfig
	Redis          RedisConfig
	RateLimit      RateLimitConfig
	Log            LogConfig
	JWT            JWTConfig
	OTLPEndpoint   string
	GRPCReflection bool
	// TLSCertFile and TLSKeyFile enable TLS on both listeners when set.
	TLSCertFile string
	TLSKeyFile  string
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_SEC and RATE_LIMIT_BURST must be positive"))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		GRPCPort:    getEnvInt("GRPC_PORT", 9090),
		HTTPPort:    getEnvInt("HTTP_PORT", 8090),
		ServiceName: getEnv("SERVICE_NAME", "decision-engine"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_lending"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			AuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "decision-audit"),
			EventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "lending-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "decision-auditd"),
			AutoCreate:    getEnvBool("KAFKA_AUTO_CREATE_TOPICS", false),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLMechanism: os.Getenv("KAFKA_SASL_MECHANISM"),
			SASLUsername:  os.Getenv("KAFKA_SASL_USERNAME"),
			SASLPassword:  os.Getenv("KAFKA_SASL_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			PerSecond: getEnvFloat("RATE_LIMIT_PER_SEC", 1),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			PublicKey:     os.Getenv("JWT_PUBLIC_KEY"),
			PublicKeyFile: os.Getenv("JWT_PUBLIC_KEY_FILE"),
			Issuer:        getEnv("JWT_ISSUER", "bib-gateway"),
		},
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		TLSCertFile:    os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:     os.Getenv("TLS_KEY_FILE"),
	}
}

// Postgres returns the connection settings for pkg/postgres.
func (c Config) Postgres() pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		Database: c.DB.Name,
		SSLMode:  c.DB.SSLMode,
		MaxConns: int32(c.DB.MaxConns),
	}
}

// KafkaClient returns the connection settings for pkg/kafka. SASL is enabled
// when a username is configured.
func (c Config) KafkaClient() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:          c.Kafka.Brokers,
		ConsumerGroup:    c.Kafka.ConsumerGroup,
		ClientID:         c.ServiceName,
		AutoCreateTopics: c.Kafka.AutoCreate,
		TLS:              c.Kafka.TLS,
		SASLEnabled:      c.Kafka.SASLUsername != "",
		SASLMechanism:    c.Kafka.SASLMechanism,
		SASLUsername:     c.Kafka.SASLUsername,
		SASLPassword:     c.Kafka.SASLPassword,
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
