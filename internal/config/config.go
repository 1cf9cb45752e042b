package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment deployment environment, selects chain table, contracts and external URLs
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// ParseEnvironment maps a raw value onto a known environment
func ParseEnvironment(raw string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(raw))) {
	case EnvDevelopment, "dev", "":
		return EnvDevelopment, nil
	case EnvProduction, "prod":
		return EnvProduction, nil
	case EnvTest:
		return EnvTest, nil
	}
	return "", fmt.Errorf("unknown environment %q", raw)
}

// Config application configuration structure
type Config struct {
	Environment  Environment        `yaml:"environment"`
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	NATS         NATSConfig         `yaml:"nats"`
	TravelAPI    TravelAPIConfig    `yaml:"travel_api"`
	Chains       ChainsConfig       `yaml:"chains"`
	Mint         MintConfig         `yaml:"mint"`
	Wallet       WalletConfig       `yaml:"wallet"`
	Auth         AuthConfig         `yaml:"auth"`
	Admin        AdminConfig        `yaml:"admin"`
	CORS         CORSConfig         `yaml:"cors"`
	Contracts    ContractsConfig    `yaml:"contracts"`     // per-environment contract addresses
	ExternalURLs ExternalURLsConfig `yaml:"external_urls"` // per-environment links
}

// ServerConfig server configuration
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	AdminAllowedIPs []string `yaml:"admin_allowed_ips"` // IPs or CIDRs allowed on operator routes besides localhost
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// DatabaseConfig Database configuration
type DatabaseConfig struct {
	DSN     string `yaml:"dsn"`
	Enabled bool   `yaml:"enabled"` // attempts are kept in memory when disabled
}

// NATSConfig NATS event bus configuration
type NATSConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"`        // seconds
	ReconnectWait int    `yaml:"reconnect_wait"` // seconds
	MaxReconnects int    `yaml:"max_reconnects"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Enabled       bool   `yaml:"enabled"`
}

// TravelAPIConfig bookkeeping backend configuration
type TravelAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// ChainsConfig chain registry tuning
type ChainsConfig struct {
	RPCOverrides          map[int64]string `yaml:"rpc_overrides"`           // chain id -> rpc url
	BalanceTimeout        int              `yaml:"balance_timeout"`         // seconds per chain
	BalanceMaxConcurrency int              `yaml:"balance_max_concurrency"` // parallel RPC calls
}

// MintConfig mint orchestration policy
type MintConfig struct {
	SignaturePollIntervalMs   int    `yaml:"signature_poll_interval_ms"`
	SignaturePollTimeoutSec   int    `yaml:"signature_poll_timeout_sec"`
	CrossChainGasLimit        uint64 `yaml:"cross_chain_gas_limit"`
	CrossChainGasPrice        uint64 `yaml:"cross_chain_gas_price"`
	LaunchStartOffsetSec      int64  `yaml:"launch_start_offset_sec"`
	LaunchDeadlineOffsetSec   int64  `yaml:"launch_deadline_offset_sec"`
	ConfirmationTimeoutSec    int    `yaml:"confirmation_timeout_sec"`
	ConfirmationPollIntervalS int    `yaml:"confirmation_poll_interval_sec"`
}

// WalletConfig operator wallet used by the mint endpoint and CLI
type WalletConfig struct {
	Connector  string            `yaml:"connector"`   // local_key | metamask | okx | walletconnect
	PrivateKey string            `yaml:"private_key"` // hex, only for local_key
	Endpoints  map[string]string `yaml:"endpoints"`   // connector -> JSON-RPC signer endpoint
}

// AuthConfig session token configuration
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

// AdminConfig operator login guarding the mint routes.
// Password and TOTP secret are expected from the environment, never from the yaml file.
type AdminConfig struct {
	Username        string `yaml:"username"`
	Password        string `yaml:"-"`
	TOTPSecret      string `yaml:"-"` // base32
	JWTSecret       string `yaml:"-"` // falls back to auth.jwt_secret
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// Configured reports whether operator login can succeed at all
func (a AdminConfig) Configured() bool {
	return a.Password != "" && a.TOTPSecret != ""
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// SignaturePollInterval interval between relay signature lookups
func (m MintConfig) SignaturePollInterval() time.Duration {
	return time.Duration(m.SignaturePollIntervalMs) * time.Millisecond
}

// SignaturePollTimeout upper bound for the relay signature wait
func (m MintConfig) SignaturePollTimeout() time.Duration {
	return time.Duration(m.SignaturePollTimeoutSec) * time.Second
}

// ConfirmationTimeout upper bound for waiting on a receipt
func (m MintConfig) ConfirmationTimeout() time.Duration {
	return time.Duration(m.ConfirmationTimeoutSec) * time.Second
}

// ConfirmationPollInterval receipt lookup interval
func (m MintConfig) ConfirmationPollInterval() time.Duration {
	return time.Duration(m.ConfirmationPollIntervalS) * time.Second
}

// Address server listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig Load configuration file, apply environment overrides and defaults
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
			log.Printf("🔧 Using local configuration file: config.local.yaml")
		}
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Printf("✅ Loading configuration from %s", configPath)
	case os.IsNotExist(err):
		log.Printf("⚠️ Config file %s not found, using defaults and environment", configPath)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := overrideFromEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	env, err := ParseEnvironment(string(cfg.Environment))
	if err != nil {
		return nil, err
	}
	cfg.Environment = env

	log.Printf("📋 [Config] environment=%s travel_api=%s connector=%s", cfg.Environment, cfg.TravelAPI.BaseURL, cfg.Wallet.Connector)
	return &cfg, nil
}

// overrideFromEnv Override configuration from environment variables
func overrideFromEnv(cfg *Config) error {
	if env := os.Getenv("TRAVEL_ENV"); env != "" {
		cfg.Environment = Environment(env)
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
		cfg.Server.Port = p
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
		cfg.Database.Enabled = true
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.NATS.URL = natsURL
		cfg.NATS.Enabled = true
	}

	if baseURL := os.Getenv("TRAVEL_API_BASE_URL"); baseURL != "" {
		cfg.TravelAPI.BaseURL = baseURL
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if username := os.Getenv("ADMIN_USERNAME"); username != "" {
		cfg.Admin.Username = username
	}
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
	cfg.Admin.TOTPSecret = os.Getenv("ADMIN_TOTP_SECRET")
	cfg.Admin.JWTSecret = os.Getenv("ADMIN_JWT_SECRET")
	if cfg.Admin.JWTSecret == "" {
		cfg.Admin.JWTSecret = cfg.Auth.JWTSecret
	}

	if connector := os.Getenv("WALLET_CONNECTOR"); connector != "" {
		cfg.Wallet.Connector = connector
	}
	if privateKey := os.Getenv("WALLET_PRIVATE_KEY"); privateKey != "" {
		cfg.Wallet.PrivateKey = privateKey
	}

	if timeout := os.Getenv("SIGNATURE_POLL_TIMEOUT_SEC"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return fmt.Errorf("invalid SIGNATURE_POLL_TIMEOUT_SEC: %w", err)
		}
		cfg.Mint.SignaturePollTimeoutSec = t
	}

	if sbt := os.Getenv("SBT_CONTRACT"); sbt != "" {
		env, _ := ParseEnvironment(string(cfg.Environment))
		set := cfg.Contracts.ForEnvironment(env)
		set.SBT = sbt
		cfg.Contracts.set(env, set)
	}

	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		cfg.CORS.AllowedOrigins = splitList(corsOrigins)
	}
	if allowed := os.Getenv("ADMIN_ALLOWED_IPS"); allowed != "" {
		cfg.Server.AdminAllowedIPs = splitList(allowed)
	}
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		cfg.Server.TrustedProxies = splitList(proxies)
	}
	return nil
}

// splitList comma separated list with blanks dropped
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8088
	}
	if cfg.NATS.Timeout == 0 {
		cfg.NATS.Timeout = 10
	}
	if cfg.NATS.ReconnectWait == 0 {
		cfg.NATS.ReconnectWait = 2
	}
	if cfg.NATS.MaxReconnects == 0 {
		cfg.NATS.MaxReconnects = 10
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "travel"
	}
	if cfg.TravelAPI.Timeout == 0 {
		cfg.TravelAPI.Timeout = 15
	}
	if cfg.Chains.BalanceTimeout == 0 {
		cfg.Chains.BalanceTimeout = 10
	}
	if cfg.Chains.BalanceMaxConcurrency == 0 {
		cfg.Chains.BalanceMaxConcurrency = 8
	}

	if cfg.Mint.SignaturePollIntervalMs == 0 {
		cfg.Mint.SignaturePollIntervalMs = 1000
	}
	if cfg.Mint.SignaturePollTimeoutSec == 0 {
		cfg.Mint.SignaturePollTimeoutSec = 300
	}
	if cfg.Mint.CrossChainGasLimit == 0 {
		cfg.Mint.CrossChainGasLimit = 400000
	}
	if cfg.Mint.CrossChainGasPrice == 0 {
		cfg.Mint.CrossChainGasPrice = 1_400_000_000
	}
	if cfg.Mint.LaunchStartOffsetSec == 0 {
		cfg.Mint.LaunchStartOffsetSec = 200
	}
	if cfg.Mint.LaunchDeadlineOffsetSec == 0 {
		cfg.Mint.LaunchDeadlineOffsetSec = 60000
	}
	if cfg.Mint.ConfirmationTimeoutSec == 0 {
		cfg.Mint.ConfirmationTimeoutSec = 180
	}
	if cfg.Mint.ConfirmationPollIntervalS == 0 {
		cfg.Mint.ConfirmationPollIntervalS = 3
	}

	if cfg.Wallet.Connector == "" {
		cfg.Wallet.Connector = "local_key"
	}
	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.Admin.TokenTTLMinutes == 0 {
		cfg.Admin.TokenTTLMinutes = 60
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 43200
	}
}
