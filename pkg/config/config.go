package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string, preferring an explicit URL.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrationURL returns a postgres:// URL suitable for golang-migrate.
func (c DatabaseConfig) MigrationURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Configured reports whether enough settings exist to open a connection.
func (c DatabaseConfig) Configured() bool {
	return c.URL != "" || (c.Host != "" && c.DBName != "")
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// KafkaConfig holds broker settings. Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// Load reads an optional .env file and returns a Viper bound to the environment.
// Keys prefixed with the service name (e.g. COUPON_DB_NAME) take precedence.
func Load(service string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	prefix := strings.ToUpper(service) + "_"
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, prefix) {
			v.Set(strings.TrimPrefix(key, prefix), value)
		}
	}
	return v, nil
}

// GetAppEnv returns APP_ENV, defaulting to development.
func GetAppEnv(v *viper.Viper) string {
	if env := v.GetString("APP_ENV"); env != "" {
		return env
	}
	return "development"
}

// GetServicePort returns the listen address from key, defaulting to :8080.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if port == "" {
		return ":8080"
	}
	if !strings.Contains(port, ":") {
		port = ":" + port
	}
	return port
}

// LoadDatabaseConfig reads DATABASE_URL or the discrete DB_* keys.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	cfg := DatabaseConfig{
		URL:      v.GetString("DATABASE_URL"),
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
	if cfg.Port == "" {
		cfg.Port = "5432"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	return cfg
}

// LoadJWTConfig reads JWT_SECRET and JWT_TTL.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	ttl := v.GetDuration("JWT_TTL")
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return JWTConfig{Secret: v.GetString("JWT_SECRET"), TTL: ttl}
}

// LoadKafkaConfig reads KAFKA_BROKERS (comma separated) and KAFKA_TOPIC_PREFIX.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{Brokers: brokers, TopicPrefix: v.GetString("KAFKA_TOPIC_PREFIX")}
}
