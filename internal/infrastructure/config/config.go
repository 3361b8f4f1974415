package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LINKSCRIBE_SERVER_PORT.
const EnvPrefix = "LINKSCRIBE"

// DefaultLabels is the LinkScribe category taxonomy, ordered by the model's class index.
var DefaultLabels = []string{
	"Adult",
	"Business/Corporate",
	"Computers and Technology",
	"E-Commerce",
	"Education",
	"Food",
	"Forums",
	"Games",
	"Health and Fitness",
	"Law and Government",
	"News",
	"Photography",
	"Social Networking and Messaging",
	"Sports",
	"Streaming Services",
	"Travel",
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Model    ModelConfig    `mapstructure:"model"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig identifies the classifier artifact and its label taxonomy
type ModelConfig struct {
	Name      string   `mapstructure:"name"`
	Path      string   `mapstructure:"path"`
	Framework string   `mapstructure:"framework"`
	Version   int      `mapstructure:"version"`
	Labels    []string `mapstructure:"labels"`
}

// FetchConfig holds page fetching configuration
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxRetries   uint64        `mapstructure:"max_retries"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// PreviewConfig holds screenshot rendering configuration
type PreviewConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
	Width   int64         `mapstructure:"width"`
	Height  int64         `mapstructure:"height"`
	// ChromePath overrides the browser binary; empty uses the one on PATH.
	ChromePath string `mapstructure:"chrome_path"`
}

// DatabaseConfig holds link history database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from defaults and environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from defaults, an optional YAML file and
// environment variables. Environment variables take precedence over the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// PORT is what the original deployment platform injects.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_SERVER_PORT") == "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		v.Set("server.port", p)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that viper cannot type-check
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model path is required")
	}
	if len(c.Model.Labels) == 0 {
		return fmt.Errorf("model labels are required")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Model
	v.SetDefault("model.name", "LScribe-Model")
	v.SetDefault("model.path", "models/sklearn/linkscribe.json")
	v.SetDefault("model.framework", "sklearn")
	v.SetDefault("model.version", 1)
	v.SetDefault("model.labels", DefaultLabels)

	// Fetch
	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.user_agent", "LinkScribe/1.0 (+https://github.com/linkscribe/api-service)")
	v.SetDefault("fetch.max_retries", 0)
	v.SetDefault("fetch.max_body_bytes", 10*1024*1024)

	// Preview
	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.timeout", 45*time.Second)
	v.SetDefault("preview.width", 1920)
	v.SetDefault("preview.height", 1080)
	v.SetDefault("preview.chrome_path", "")

	// Database
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "linkscribe")
	v.SetDefault("database.password", "linkscribe")
	v.SetDefault("database.dbname", "linkscribe")
	v.SetDefault("database.sslmode", "disable")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// CORS
	v.SetDefault("cors.allowed_origins", []string{"*"})
}
