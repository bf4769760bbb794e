package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/config"
)

// ServiceConfig holds all configuration for the coupon service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	DefaultRole    account.Role
	BcryptCost     int
	MigrationsPath string
}

// Load reads configuration from environment variables and returns a ServiceConfig.
// The database connection and the JWT secret are required.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("coupon")
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	if !cfg.DBConfig.Configured() {
		return nil, errors.New("database connection is not configured (set DATABASE_URL or DB_HOST and DB_NAME)")
	}
	if cfg.JWTConfig.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	role, err := loadDefaultRole(v)
	if err != nil {
		return nil, err
	}
	cfg.DefaultRole = role
	return cfg, nil
}

// loadDefaultRole reads DEFAULT_REGISTRATION_ROLE. New accounts get admin unless overridden.
func loadDefaultRole(v *viper.Viper) (account.Role, error) {
	raw := v.GetString("DEFAULT_REGISTRATION_ROLE")
	if raw == "" {
		return account.RoleAdmin, nil
	}
	role, ok := account.ParseRole(raw)
	if !ok {
		return "", fmt.Errorf("unknown DEFAULT_REGISTRATION_ROLE %q", raw)
	}
	return role, nil
}
