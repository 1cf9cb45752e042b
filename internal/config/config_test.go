package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"TRAVEL_ENV", "SERVER_PORT", "DATABASE_URL", "NATS_URL", "JWT_SECRET",
		"SBT_CONTRACT", "CORS_ALLOWED_ORIGINS", "ADMIN_ALLOWED_IPS", "SIGNATURE_POLL_TIMEOUT_SEC",
		"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_TOTP_SECRET", "ADMIN_JWT_SECRET"} {
		t.Setenv(k, "")
	}
}

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"":            EnvDevelopment,
		"dev":         EnvDevelopment,
		"Production":  EnvProduction,
		" prod ":      EnvProduction,
		"test":        EnvTest,
		"development": EnvDevelopment,
	}
	for raw, want := range cases {
		got, err := ParseEnvironment(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseEnvironment("staging")
	assert.Error(t, err)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, EnvTest, cfg.Environment)
	assert.Equal(t, "0.0.0.0:8088", cfg.Server.Address())
	assert.Equal(t, 1000, cfg.Mint.SignaturePollIntervalMs)
	assert.Equal(t, 300, cfg.Mint.SignaturePollTimeoutSec)
	assert.Equal(t, uint64(400000), cfg.Mint.CrossChainGasLimit)
	assert.Equal(t, uint64(1_400_000_000), cfg.Mint.CrossChainGasPrice)
	assert.Equal(t, int64(200), cfg.Mint.LaunchStartOffsetSec)
	assert.Equal(t, int64(60000), cfg.Mint.LaunchDeadlineOffsetSec)
	assert.Equal(t, "travel", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "local_key", cfg.Wallet.Connector)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRAVEL_ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SBT_CONTRACT", "0x00000000000000000000000000000000000000a1")
	t.Setenv("ADMIN_ALLOWED_IPS", "10.0.0.0/8, 192.168.1.5,")

	path := writeConfig(t, `
environment: development
server:
  port: 8000
contracts:
  production:
    launch_pad: "0x00000000000000000000000000000000000000b2"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.5"}, cfg.Server.AdminAllowedIPs)

	set := cfg.Contracts.ForEnvironment(EnvProduction)
	assert.Equal(t, "0x00000000000000000000000000000000000000a1", set.SBT)
	assert.Equal(t, "0x00000000000000000000000000000000000000b2", set.LaunchPadFor(42161))
}

func TestLoadConfigAdminLogin(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "session-secret")

	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, 60, cfg.Admin.TokenTTLMinutes)
	assert.Equal(t, "session-secret", cfg.Admin.JWTSecret)
	assert.False(t, cfg.Admin.Configured())

	t.Setenv("ADMIN_USERNAME", "ops")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("ADMIN_TOTP_SECRET", "JBSWY3DPEHPK3PXP")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret")
	cfg, err = LoadConfig(writeConfig(t, "admin:\n  token_ttl_minutes: 15\n"))
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.Admin.Username)
	assert.Equal(t, 15, cfg.Admin.TokenTTLMinutes)
	assert.Equal(t, "admin-secret", cfg.Admin.JWTSecret)
	assert.True(t, cfg.Admin.Configured())
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	_, err := LoadConfig(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
}

func TestLaunchPadOverride(t *testing.T) {
	set := ContractSet{LaunchPad: "0xdefault", LaunchPads: map[int64]string{10: "0xoptimism"}}
	assert.Equal(t, "0xoptimism", set.LaunchPadFor(10))
	assert.Equal(t, "0xdefault", set.LaunchPadFor(8453))
}

func TestExternalURLsFillDefaults(t *testing.T) {
	urls := ExternalURLsConfig{Production: ExternalURLs{Homepage: "https://travel.example"}}.ForEnvironment(EnvProduction)
	assert.Equal(t, "https://travel.example", urls.Homepage)
	assert.Equal(t, "https://bridge.vizing.com", urls.Bridge)
	assert.NotEmpty(t, urls.Twitter)
}
