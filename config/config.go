package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the service configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port int
	Mode string // debug, release, test
	// AuthEnabled toggles bearer-key authentication. When disabled,
	// every request is attributed to DefaultFacility.
	AuthEnabled     bool
	DefaultFacility string
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
	TTL      int // seconds
}

// StorageConfig holds the attachment blob store configuration
type StorageConfig struct {
	BasePath string
}

// NewRelicConfig holds the New Relic configuration
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// InitConfig initializes the configuration using Viper
func InitConfig(cfgFile string) error {
	// Set defaults for configuration
	setDefaults()

	// Use config file from the flag if provided
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common directories with name "config"
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/recinto-api")
		viper.SetConfigName("config")
	}

	// Set environment variable prefix for config overrides
	viper.SetEnvPrefix("RECINTO")

	// Enable automatic environment variable binding
	// For example, RECINTO_SERVER_PORT will override server.port
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("No config file found, using defaults and environment variables")
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	return nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.authenabled", false)
	viper.SetDefault("server.defaultfacility", "00001")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "recinto")
	viper.SetDefault("database.password", "recinto")
	viper.SetDefault("database.dbname", "recinto_api_db")
	viper.SetDefault("database.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.ttl", 300)

	// Storage defaults
	viper.SetDefault("storage.basepath", "files")

	// New Relic defaults
	viper.SetDefault("newrelic.appname", "Recinto API Local")
	viper.SetDefault("newrelic.enabled", false)
}

// Load loads the configuration
func Load() (*Config, error) {
	serverConfig := ServerConfig{
		Port:            viper.GetInt("server.port"),
		Mode:            viper.GetString("server.mode"),
		AuthEnabled:     viper.GetBool("server.authenabled"),
		DefaultFacility: viper.GetString("server.defaultfacility"),
	}

	dbConfig := DatabaseConfig{
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.dbname"),
		SSLMode:  viper.GetString("database.sslmode"),
	}

	redisConfig := RedisConfig{
		Host:     viper.GetString("redis.host"),
		Port:     viper.GetInt("redis.port"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
		Enabled:  viper.GetBool("redis.enabled"),
		TTL:      viper.GetInt("redis.ttl"),
	}

	storageConfig := StorageConfig{
		BasePath: viper.GetString("storage.basepath"),
	}

	newRelicConfig := NewRelicConfig{
		AppName:    viper.GetString("newrelic.appname"),
		LicenseKey: viper.GetString("newrelic.licensekey"),
		Enabled:    viper.GetBool("newrelic.enabled"),
	}

	return &Config{
		Server:   serverConfig,
		Database: dbConfig,
		Redis:    redisConfig,
		Storage:  storageConfig,
		NewRelic: newRelicConfig,
	}, nil
}
