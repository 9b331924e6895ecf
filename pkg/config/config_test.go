package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, time.Hour, cfg.Cache.ProductTTL)
	assert.Equal(t, 5000, cfg.Import.MaxRows)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_ADDR la caché queda desactivada")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Empty(t, cfg.Admin.Password)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "6543")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("CACHE_PRODUCT_TTL_SECONDS", 60)
	v.Set("IMPORT_MAX_ROWS", "no-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Cache.ProductTTL)
	assert.Equal(t, 5000, cfg.Import.MaxRows, "un valor inválido vuelve al default")
}

func TestFromViper_ProductionRequiereSecret(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss/word", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%2Fword@db:5432/pos?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
