package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Token    TokenConfig
	Solana   SolanaConfig
	Redis    RedisConfig
	Jobs     JobsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           string
	FrontendURL    string
	RateLimitRPS   float64
	RateLimitBurst int
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret     string
	PassSecret    string
	OwnerAddress  string
	LedgerAddress string
}

// TokenConfig selects the token ledger payments settle against
type TokenConfig struct {
	Backend       string // memory, database or solana
	Symbol        string
	Decimals      uint8
	InitialSupply uint64 // whole tokens
}

// SolanaConfig holds Solana RPC and wallet settings
type SolanaConfig struct {
	Network                string
	RPCURL                 string
	TokenMint              string
	ServerWalletPrivateKey string
}

// RedisConfig holds notification fan-out settings. An empty Addr disables publishing.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// JobsConfig holds background job intervals
type JobsConfig struct {
	ReconcileInterval time.Duration
}

const (
	TokenBackendMemory   = "memory"
	TokenBackendDatabase = "database"
	TokenBackendSolana   = "solana"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "event_ticketing"),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		App: AppConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			OwnerAddress:  getEnv("REGISTRY_OWNER", ""),
			LedgerAddress: getEnv("LEDGER_ADDRESS", ""),
		},
		Token: TokenConfig{
			Backend: getEnv("TOKEN_BACKEND", TokenBackendDatabase),
			Symbol:  getEnv("TOKEN_SYMBOL", "USDC"),
		},
		Solana: SolanaConfig{
			Network:                getEnv("SOLANA_NETWORK", "devnet"),
			RPCURL:                 getEnv("SOLANA_RPC_URL", ""),
			TokenMint:              getEnv("SOLANA_TOKEN_MINT", ""),
			ServerWalletPrivateKey: getEnv("SOLANA_SERVER_WALLET_PRIVATE_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			Channel:  getEnv("REDIS_CHANNEL", "ticketing-events"),
		},
	}
	config.App.PassSecret = getEnv("PASS_SECRET", config.App.JWTSecret)

	var err error
	if config.Server.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if config.Server.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	decimals, err := strconv.ParseUint(getEnv("TOKEN_DECIMALS", "6"), 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_DECIMALS: %w", err)
	}
	config.Token.Decimals = uint8(decimals)
	if config.Token.InitialSupply, err = strconv.ParseUint(getEnv("TOKEN_INITIAL_SUPPLY", "1000000"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_INITIAL_SUPPLY: %w", err)
	}
	if config.Redis.DB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if config.Jobs.ReconcileInterval, err = time.ParseDuration(getEnv("RECONCILE_INTERVAL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.App.OwnerAddress == "" {
		return nil, fmt.Errorf("REGISTRY_OWNER is required")
	}

	switch config.Token.Backend {
	case TokenBackendMemory, TokenBackendDatabase:
	case TokenBackendSolana:
		if config.Solana.TokenMint == "" {
			return nil, fmt.Errorf("SOLANA_TOKEN_MINT is required for the solana token backend")
		}
		if config.Solana.ServerWalletPrivateKey == "" {
			return nil, fmt.Errorf("SOLANA_SERVER_WALLET_PRIVATE_KEY is required for the solana token backend")
		}
	default:
		return nil, fmt.Errorf("unknown TOKEN_BACKEND %q", config.Token.Backend)
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
