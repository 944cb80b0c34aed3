package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Booking  BookingConfig  `yaml:"booking"`
	Flights  FlightsConfig  `yaml:"flights"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address"`
	SwaggerDir  string   `yaml:"swagger_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GRPCConfig configures the gRPC health endpoint. Empty address disables it.
type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	FlightEventsTopic  string   `yaml:"flight_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type MongoConfig struct {
	URI             string `yaml:"uri"`
	Database        string `yaml:"database"`
	AuditCollection string `yaml:"audit_collection"`
}

type BookingConfig struct {
	FlightCatalogURL      string `yaml:"flight_catalog_url"`
	PassengerDirectoryURL string `yaml:"passenger_directory_url"`
	CallTimeoutMillis     int    `yaml:"call_timeout_ms"`
	PNRMaxAttempts        int    `yaml:"pnr_max_attempts"`
}

func (b BookingConfig) CallTimeout() time.Duration {
	return time.Duration(b.CallTimeoutMillis) * time.Millisecond
}

type FlightsConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

func (f FlightsConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultCallTimeoutMillis = 300
	defaultPNRMaxAttempts    = 5
	defaultCacheTTLSeconds   = 60
	defaultLogLevel          = "info"
	defaultLogFormat         = "json"
	defaultAuditCollection   = "booking_audit"
)

// LoadConfig reads a YAML file. A .env file next to the binary, if present, is
// loaded first and ${VAR} references in the YAML are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.CallTimeoutMillis <= 0 {
		c.Booking.CallTimeoutMillis = defaultCallTimeoutMillis
	}
	if c.Booking.PNRMaxAttempts <= 0 {
		c.Booking.PNRMaxAttempts = defaultPNRMaxAttempts
	}
	if c.Flights.CacheTTLSeconds <= 0 {
		c.Flights.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.Mongo.AuditCollection == "" {
		c.Mongo.AuditCollection = defaultAuditCollection
	}
}

// Path returns CONFIG_PATH or the fallback.
func Path(fallback string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return fallback
}
