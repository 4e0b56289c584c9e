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

// DefaultDashboard is the dashboard used when a session names none.
const DefaultDashboard = "default"

// Config holds the resultgrid API configuration.
type Config struct {
	HTTP       HTTPConfig               `yaml:"http"`
	Database   DatabaseConfig           `yaml:"database"`
	Index      IndexConfig              `yaml:"index"`
	Table      TableConfig              `yaml:"table"`
	Breaker    BreakerConfig            `yaml:"breaker"`
	NATS       NATSConfig               `yaml:"nats"`
	Logging    LoggingConfig            `yaml:"logging"`
	Dashboards map[string][]FieldConfig `yaml:"dashboards"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig describes the search index backing the query layer.
type IndexConfig struct {
	Name      string `yaml:"name"`
	KeyPrefix string `yaml:"key_prefix"`
	// SortableFields are document attributes declared SORTABLE in the index.
	SortableFields []string `yaml:"sortable_fields"`
	MaxBatchSize   int      `yaml:"max_batch_size"`
}

// TableConfig holds session and paging settings.
type TableConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	SessionTTLSec   int `yaml:"session_ttl_sec"`
	MaxSessions     int `yaml:"max_sessions"`
	TemplateCache   int `yaml:"template_cache_size"`
}

// BreakerConfig holds circuit breaker settings for the query layer.
type BreakerConfig struct {
	MaxRequests         uint32 `yaml:"max_requests"`
	IntervalSec         int    `yaml:"interval_sec"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
}

// NATSConfig holds the optional sort intent publisher settings.
// An empty URL disables publishing.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// FieldConfig is one field descriptor of a dashboard.
type FieldConfig struct {
	Key          string `yaml:"key"`
	Title        string `yaml:"title"`
	DataIndex    string `yaml:"data_index"`
	Sortable     bool   `yaml:"sortable"`
	DisplayIndex int    `yaml:"display_index"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the YAML file at path.
func LoadFile(configPath string) (Config, error) {
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

// LoadFields reads a standalone YAML list of field descriptors.
func LoadFields(path string) ([]FieldConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read fields %s: %w", path, err)
	}
	var fields []FieldConfig
	if err := yaml.Unmarshal(expandEnvVars(data), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse fields: %w", err)
	}
	if err := validateFields("fields", fields); err != nil {
		return nil, err
	}
	return fields, nil
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
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.Name == "" {
		c.Index.Name = "resultgrid_hits"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "resultgrid:hit:"
	}
	if len(c.Index.SortableFields) == 0 {
		c.Index.SortableFields = []string{"label", "_project", "_constrainedBy", "@type", "_createdAt", "_updatedAt"}
	}
	if c.Index.MaxBatchSize <= 0 {
		c.Index.MaxBatchSize = 500
	}
	if c.Table.DefaultPageSize <= 0 {
		c.Table.DefaultPageSize = 20
	}
	if c.Table.MaxPageSize <= 0 {
		c.Table.MaxPageSize = 100
	}
	if c.Table.SessionTTLSec <= 0 {
		c.Table.SessionTTLSec = 1800
	}
	if c.Table.MaxSessions <= 0 {
		c.Table.MaxSessions = 1024
	}
	if c.Table.TemplateCache <= 0 {
		c.Table.TemplateCache = 512
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	if c.Breaker.IntervalSec <= 0 {
		c.Breaker.IntervalSec = 60
	}
	if c.Breaker.TimeoutSec <= 0 {
		c.Breaker.TimeoutSec = 30
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = 5
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "resultgrid.tables"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Table.DefaultPageSize > c.Table.MaxPageSize {
		return fmt.Errorf(
			"table.default_page_size (%d) must not exceed table.max_page_size (%d)",
			c.Table.DefaultPageSize, c.Table.MaxPageSize,
		)
	}
	for name, fields := range c.Dashboards {
		if err := validateFields("dashboards."+name, fields); err != nil {
			return err
		}
	}
	return nil
}

// Dashboard returns the field list of the named dashboard. The default
// dashboard may be absent, in which case ok is true and fields is nil.
func (c *Config) Dashboard(name string) (fields []FieldConfig, ok bool) {
	if name == "" {
		name = DefaultDashboard
	}
	fields, ok = c.Dashboards[name]
	if !ok && name == DefaultDashboard {
		return nil, true
	}
	return fields, ok
}

func validateFields(path string, fields []FieldConfig) error {
	titles := make(map[string]bool, len(fields))
	keys := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Key == "" {
			return fmt.Errorf("%s[%d].key is required", path, i)
		}
		if f.Title == "" {
			return fmt.Errorf("%s[%d].title is required", path, i)
		}
		if titles[f.Title] {
			return fmt.Errorf("%s[%d].title %q is duplicated", path, i, f.Title)
		}
		if keys[f.Key] {
			return fmt.Errorf("%s[%d].key %q is duplicated", path, i, f.Key)
		}
		titles[f.Title] = true
		keys[f.Key] = true
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
