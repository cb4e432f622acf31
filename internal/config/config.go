package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Blockchain BlockchainConfig
	Validation ValidationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// BlockchainConfig holds RPC and contract configuration for the toll chain.
type BlockchainConfig struct {
	RPCURL              string
	ChainID             int64
	TollContractAddress string
	StableTokenAddress  string
	TopUpFactoryAddress string
	OperatorPrivateKey  string
	// GasLimit is the fixed ceiling applied to every payment submission.
	GasLimit uint64
}

// ValidationConfig holds QR validation policy.
type ValidationConfig struct {
	// QRExpiry is the data-validity window for scanned payloads.
	QRExpiry time.Duration
	// AllowUnverifiedSigner enables the permissive signature mode: any
	// syntactically valid recovered signer (and the all-zero mock signature)
	// passes. Default is strict signer == walletAddress.
	AllowUnverifiedSigner bool
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

// IsPlaceholderAddress reports whether an address value is absent or a known
// placeholder. A placeholder disables the corresponding contract gateway
// instead of crashing the process.
func IsPlaceholderAddress(addr string) bool {
	a := strings.TrimSpace(strings.ToLower(addr))
	return a == "" || a == strings.ToLower(zeroAddress) || a == "0x" || a == "todo" || a == "deploy-me"
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "tollchain"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Blockchain: BlockchainConfig{
			RPCURL:              getEnv("CHAIN_RPC_URL", "http://localhost:8545"),
			ChainID:             int64(getEnvAsInt("CHAIN_ID", 31337)),
			TollContractAddress: getEnv("TOLL_CONTRACT_ADDRESS", ""),
			StableTokenAddress:  getEnv("STABLE_TOKEN_ADDRESS", ""),
			TopUpFactoryAddress: getEnv("TOPUP_FACTORY_ADDRESS", ""),
			OperatorPrivateKey:  getEnv("OPERATOR_PRIVATE_KEY", ""),
			GasLimit:            uint64(getEnvAsInt("TX_GAS_LIMIT", 500000)),
		},
		Validation: ValidationConfig{
			QRExpiry:              getEnvAsDuration("QR_EXPIRY", 5*time.Minute),
			AllowUnverifiedSigner: getEnvAsBool("VALIDATION_ALLOW_UNVERIFIED_SIGNER", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
