package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperAppliesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 2*time.Minute, cfg.ResultsCacheTTL)
	require.Equal(t, "jwtToken", cfg.AuthCookieName)
	require.False(t, cfg.StrictTaskOwnership)
	require.Equal(t, 30, cfg.JudgingRateLimit)
	require.Equal(t, 60, cfg.VoteRateLimit)
}

func TestFromViperReadsSeparateRateLimits(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("rate_limit.judging", 5)
	v.Set("rate_limit.votes", 12)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.JudgingRateLimit)
	require.Equal(t, 12, cfg.VoteRateLimit)
}

func TestFromViperRequiresSecret(t *testing.T) {
	_, err := fromViper(viper.New())
	require.Error(t, err)
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("database.driver", "mysql")

	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViperRejectsBadDuration(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("results.cache_ttl", "soon")

	_, err := fromViper(v)
	require.Error(t, err)
}
