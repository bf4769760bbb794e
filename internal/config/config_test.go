package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("DB_HOST", "localhost")
	v.Set("DB_NAME", "coupons")
	v.Set("JWT_SECRET", "secret")
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(baseViper())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, account.RoleAdmin, cfg.DefaultRole)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Empty(t, cfg.KafkaConfig.Brokers)
}

func TestFromViper_DefaultRole(t *testing.T) {
	v := baseViper()
	v.Set("DEFAULT_REGISTRATION_ROLE", "Customer")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, account.RoleCustomer, cfg.DefaultRole)

	v.Set("DEFAULT_REGISTRATION_ROLE", "owner")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_RequiredSettings(t *testing.T) {
	v := baseViper()
	v.Set("JWT_SECRET", "")
	_, err := fromViper(v)
	assert.ErrorContains(t, err, "JWT_SECRET")

	v = viper.New()
	v.Set("JWT_SECRET", "secret")
	_, err = fromViper(v)
	assert.ErrorContains(t, err, "database connection")

	v.Set("DATABASE_URL", "postgres://u:p@db:5432/coupons")
	_, err = fromViper(v)
	assert.NoError(t, err)
}
