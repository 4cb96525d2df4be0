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

// Reference policies for linked-item fields whose items span multiple types.
const (
	// PolicyFirstTypeWins resolves the field against the first type
	// encountered and logs a warning for the rest.
	PolicyFirstTypeWins = "first-type-wins"
	// PolicyStrict rejects multi-type fields and aborts the load.
	PolicyStrict = "strict"
)

// Config holds the sitegraph configuration.
type Config struct {
	Delivery DeliveryConfig `yaml:"delivery"`
	Store    StoreConfig    `yaml:"store"`
	Graph    GraphConfig    `yaml:"graph"`
	Serve    ServeConfig    `yaml:"serve"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeliveryConfig holds remote content API settings.
type DeliveryConfig struct {
	Endpoint   string `yaml:"endpoint"`
	ProjectID  string `yaml:"project_id"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
	// Depth controls how many levels of linked items the API resolves
	// into the response side table.
	Depth int `yaml:"depth"`
}

// StoreConfig holds graph store backend settings.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// GraphConfig holds materialization settings.
type GraphConfig struct {
	// ReferencePolicy decides how multi-type linked-item fields resolve:
	// first-type-wins (default) or strict.
	ReferencePolicy string `yaml:"reference_policy"`
	// PathPrefix is prepended to derived item-link paths.
	PathPrefix string `yaml:"path_prefix"`
}

// ServeConfig holds preview HTTP server settings.
type ServeConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
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
	if c.Delivery.TimeoutSec <= 0 {
		c.Delivery.TimeoutSec = 30
	}
	if c.Delivery.Depth <= 0 {
		c.Delivery.Depth = 3
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "sitegraph:"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Graph.ReferencePolicy == "" {
		c.Graph.ReferencePolicy = PolicyFirstTypeWins
	}
	if c.Serve.Port <= 0 {
		c.Serve.Port = 8090
	}
	if c.Serve.ReadTimeoutSec <= 0 {
		c.Serve.ReadTimeoutSec = 10
	}
	if c.Serve.WriteTimeoutSec <= 0 {
		c.Serve.WriteTimeoutSec = 10
	}
	if c.Serve.ShutdownSec <= 0 {
		c.Serve.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Delivery.Endpoint == "" {
		return fmt.Errorf("delivery.endpoint is required")
	}
	if c.Delivery.ProjectID == "" {
		return fmt.Errorf("delivery.project_id is required")
	}
	switch c.Store.Driver {
	case "memory":
		// ok
	case "redis":
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("store.driver must be \"memory\" or \"redis\", got %q", c.Store.Driver)
	}
	switch c.Graph.ReferencePolicy {
	case PolicyFirstTypeWins, PolicyStrict:
		// ok
	default:
		return fmt.Errorf(
			"graph.reference_policy must be %q or %q, got %q",
			PolicyFirstTypeWins, PolicyStrict, c.Graph.ReferencePolicy,
		)
	}
	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 1 and 65535, got %d", c.Serve.Port)
	}
	return nil
}

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
