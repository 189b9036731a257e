package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrConfigNotFound = errors.New("config file does not exist")

type Config struct {
	Env        string           `yaml:"env"`        // Env is the current environment: local, development, production.
	Postgres   PostgresConfig   `yaml:"postgres"`   // Postgres holds the database configuration
	HTTP       HTTPConfig       `yaml:"http"`       // HTTP holds the employee API server configuration
	Monitoring MonitoringConfig `yaml:"monitoring"` // Monitoring holds the metrics/health server configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Dbname   string `yaml:"db_name"`  // Dbname is the name of the database.
}

// HTTPConfig struct holds the configuration of the employee API server.
type HTTPConfig struct {
	Address         string        `yaml:"address"`          // Address is the listen address in format `host:port`.
	Timeout         time.Duration `yaml:"timeout"`          // Timeout bounds reading and writing a single request.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ShutdownTimeout is the grace period for in-flight requests.
}

// MonitoringConfig struct holds the configuration of the metrics and health server.
type MonitoringConfig struct {
	Port int `yaml:"port"` // Port is the port serving /metrics and /healthz.
}

// envBindings maps configuration keys to the environment variables overriding them.
var envBindings = map[string]string{
	"env":                   "ATHENA_ENV",
	"postgres.host":         "DB_HOST",
	"postgres.port":         "DB_PORT",
	"postgres.user":         "DB_USERNAME",
	"postgres.password":     "DB_PASSWORD",
	"postgres.db_name":      "DB_NAME",
	"http.address":          "HTTP_ADDRESS",
	"http.timeout":          "HTTP_TIMEOUT",
	"http.shutdown_timeout": "HTTP_SHUTDOWN_TIMEOUT",
	"monitoring.port":       "MONITORING_PORT",
}

// MustLoad loads the configuration and panics if it cannot be built.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load builds the configuration from an optional .env file, an optional YAML file
// referenced by CONFIG_PATH and environment variables, in increasing priority.
func Load() (*Config, error) {
	// .env is optional; variables already present in the environment win.
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetConfigType("yaml")

	vpr.SetDefault("env", "local")
	vpr.SetDefault("postgres.port", "5432")
	vpr.SetDefault("http.address", ":8080")
	vpr.SetDefault("http.timeout", "10s")
	vpr.SetDefault("http.shutdown_timeout", "15s")
	vpr.SetDefault("monitoring.port", 9090) //nolint:mnd // default monitoring port

	for key, env := range envBindings {
		if err := vpr.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}

		vpr.SetConfigFile(configPath)
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(vpr.GetString("http.timeout"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse http timeout from configuration: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(vpr.GetString("http.shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse shutdown timeout from configuration: %w", err)
	}

	return &Config{
		Env: vpr.GetString("env"),
		Postgres: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Dbname:   vpr.GetString("postgres.db_name"),
		},
		HTTP: HTTPConfig{
			Address:         vpr.GetString("http.address"),
			Timeout:         timeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Monitoring: MonitoringConfig{
			Port: vpr.GetInt("monitoring.port"),
		},
	}, nil
}
