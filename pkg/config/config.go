package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Broadcast modes for new-post fan-out.
const (
	BroadcastInline = "inline"
	BroadcastAsync  = "async"
)

type Config struct {
	Port                    string `mapstructure:"PORT"`
	Env                     string `mapstructure:"ENV"`
	LogLevel                string `mapstructure:"LOG_LEVEL"`
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	PostgresUrl             string `mapstructure:"POSTGRES_CONN_STR"`
	MongoURI                string `mapstructure:"MONGO_URI"`
	MongoDatabase           string `mapstructure:"MONGO_DATABASE"`
	RedisAddr               string `mapstructure:"REDIS_ADDR"`
	RedisPassword           string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                 int    `mapstructure:"REDIS_DB"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	MetricsPort             string `mapstructure:"METRICS_PORT"`
	RateLimitPerMin         int    `mapstructure:"RATE_LIMIT_PER_MIN"`

	Notify NotifyConfig `mapstructure:",squash"`
}

// NotifyConfig tunes the notification engine.
type NotifyConfig struct {
	BroadcastMode  string `mapstructure:"NOTIFY_BROADCAST_MODE"`
	BroadcastCap   int    `mapstructure:"NOTIFY_BROADCAST_CAP"`
	BroadcastBatch int    `mapstructure:"NOTIFY_BROADCAST_BATCH"`
	RetentionDays  int    `mapstructure:"NOTIFY_RETENTION_DAYS"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"FIREBASE_CREDENTIALS_PATH": "",
	"POSTGRES_CONN_STR":         "",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "campushub",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"JWT_SECRET":                "supersecretjwtkey",
	"METRICS_PORT":              "9090",
	"RATE_LIMIT_PER_MIN":        120,
	"NOTIFY_BROADCAST_MODE":     BroadcastInline,
	"NOTIFY_BROADCAST_CAP":      50,
	"NOTIFY_BROADCAST_BATCH":    500,
	"NOTIFY_RETENTION_DAYS":     30,
}

// Load reads .env (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() *Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Notify.BroadcastMode != BroadcastAsync {
		cfg.Notify.BroadcastMode = BroadcastInline
	}
	if cfg.Notify.BroadcastBatch <= 0 {
		cfg.Notify.BroadcastBatch = 500
	}
	if cfg.Notify.BroadcastCap < 0 {
		return nil, fmt.Errorf("NOTIFY_BROADCAST_CAP must be 0 (unbounded) or positive, got %d", cfg.Notify.BroadcastCap)
	}
	if cfg.Notify.RetentionDays < 0 {
		return nil, fmt.Errorf("NOTIFY_RETENTION_DAYS must not be negative, got %d", cfg.Notify.RetentionDays)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
