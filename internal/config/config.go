package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the collabsearch service configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	SearchEngine SearchEngineConfig `yaml:"search_engine"`
	Relational   RelationalConfig   `yaml:"relational"`
	Search       SearchConfig       `yaml:"search"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds caller identity settings.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	JWTIssuer   string `yaml:"jwt_issuer"`
	AdminBypass bool   `yaml:"admin_bypass"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchEngineConfig holds search-engine connection settings.
type SearchEngineConfig struct {
	Driver           string   `yaml:"driver"` // redis (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RelationalConfig holds relational database settings.
type RelationalConfig struct {
	Driver             string `yaml:"driver"` // postgres, sqlite (default: postgres)
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	IndexPattern   string `yaml:"index_pattern"`
	MaxResults     int    `yaml:"max_results"`
	MaxPageSize    int    `yaml:"max_page_size"`
	SizeMultiplier int    `yaml:"size_multiplier"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.SearchEngine.Driver == "" {
		c.SearchEngine.Driver = "redis"
	}
	if c.SearchEngine.ReadinessTimeout <= 0 {
		c.SearchEngine.ReadinessTimeout = 10
	}
	if c.Relational.Driver == "" {
		c.Relational.Driver = "postgres"
	}
	if c.Relational.MaxOpenConns <= 0 {
		c.Relational.MaxOpenConns = 20
	}
	if c.Relational.MaxIdleConns <= 0 {
		c.Relational.MaxIdleConns = 5
	}
	if c.Relational.ConnMaxLifetimeSec <= 0 {
		c.Relational.ConnMaxLifetimeSec = 300
	}
	if c.Search.IndexPattern == "" {
		c.Search.IndexPattern = "collab-data-"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 25
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 50
	}
	if c.Search.SizeMultiplier <= 0 {
		c.Search.SizeMultiplier = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.SearchEngine.Driver != "redis" {
		return fmt.Errorf("search_engine.driver must be \"redis\", got %q", c.SearchEngine.Driver)
	}
	if len(c.SearchEngine.Addrs) == 0 {
		return fmt.Errorf("search_engine.addrs is required")
	}
	switch c.Relational.Driver {
	case "postgres", "sqlite":
		// ok
	default:
		return fmt.Errorf(
			"relational.driver must be \"postgres\" or \"sqlite\", got %q", c.Relational.Driver,
		)
	}
	if c.Relational.DSN == "" {
		return fmt.Errorf("relational.dsn is required")
	}
	if strings.ContainsAny(c.Search.IndexPattern, " \t{}") {
		return fmt.Errorf("search.index_pattern contains invalid characters: %q", c.Search.IndexPattern)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
