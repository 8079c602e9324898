package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Data source kinds accepted by DATA_SOURCE.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as server settings, where the panel dataset comes from, chart rendering
// defaults and the optional Postgres store.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	DATA_SOURCE=csv
//	DATA_PATH=./data/Fed_rate_panel_data.csv
//	CHART_WIDTH=1024
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=polypulse
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Data     DataConfig     // Panel dataset location
	Chart    ChartConfig    // PNG rendering defaults
	Postgres PostgresConfig // PostgreSQL connection settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimitPerMinute int    // Requests per client IP per minute
}

// DataConfig tells the entry point where the panel comes from.
//
// Fields:
//   - Source: "csv" reads Path directly; "postgres" reads the observations table.
//   - Path: a CSV file or a directory of CSV files.
//   - Parallel: files parsed concurrently when Path is a directory (0 = auto).
type DataConfig struct {
	Source   string
	Path     string
	Parallel int
}

// ChartConfig holds the default PNG size.
type ChartConfig struct {
	Width  int
	Height int
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read by the entry point, which
// passes the relevant parts down explicitly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() will
//     terminate the app with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("DATA_SOURCE", SourceCSV)
	viper.SetDefault("DATA_PATH", "./data/Fed_rate_panel_data.csv")
	viper.SetDefault("DATA_PARALLEL", 0)

	viper.SetDefault("CHART_WIDTH", 1024)
	viper.SetDefault("CHART_HEIGHT", 576)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "polypulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Data: DataConfig{
			Source:   strings.ToLower(viper.GetString("DATA_SOURCE")),
			Path:     viper.GetString("DATA_PATH"),
			Parallel: viper.GetInt("DATA_PARALLEL"),
		},
		Chart: ChartConfig{
			Width:  viper.GetInt("CHART_WIDTH"),
			Height: viper.GetInt("CHART_HEIGHT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	// Validate critical fields
	validateConfig()
}

// DSN builds the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// UsesPostgres reports whether the configuration needs a database.
func (c Config) UsesPostgres() bool {
	return c.Data.Source == SourcePostgres
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	if problems := AppConfig.problems(); len(problems) > 0 {
		log.Fatalf("❌ Missing or invalid environment variables: %v\n", problems)
	}
}

// problems lists the keys that are missing or invalid.
func (c Config) problems() []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.Path == "" {
			missing = append(missing, "DATA_PATH")
		}
	case SourcePostgres:
	default:
		missing = append(missing, "DATA_SOURCE")
	}
	if c.Chart.Width <= 0 {
		missing = append(missing, "CHART_WIDTH")
	}
	if c.Chart.Height <= 0 {
		missing = append(missing, "CHART_HEIGHT")
	}

	if c.UsesPostgres() {
		if c.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if c.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	}

	return missing
}
