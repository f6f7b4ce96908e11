package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "DTI"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Charts   ChartsConfig   `yaml:"charts" envconfig:"CHARTS"`
	OTel     OTelConfig     `yaml:"otel" envconfig:"OTEL"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DatasetConfig describes where the record table lives and how its columns are named.
type DatasetConfig struct {
	Path         string   `yaml:"path" envconfig:"FILE"`
	EntityColumn string   `yaml:"entity_column" envconfig:"ENTITY_COLUMN"`
	YearColumn   string   `yaml:"year_column" envconfig:"YEAR_COLUMN"`
	NameColumn   string   `yaml:"name_column" envconfig:"NAME_COLUMN"`
	Keywords     []string `yaml:"keywords" envconfig:"KEYWORDS"`
	// IndexColumn overrides keyword discovery when set. It must name an existing column.
	IndexColumn string `yaml:"index_column" envconfig:"INDEX_COLUMN"`
	PreviewRows int    `yaml:"preview_rows" envconfig:"PREVIEW_ROWS"`
	ExportBOM   bool   `yaml:"export_bom" envconfig:"EXPORT_BOM"`
}

// RequiredColumns returns the columns whose absence rejects the dataset.
func (d DatasetConfig) RequiredColumns() []string {
	return []string{d.EntityColumn, d.YearColumn, d.NameColumn}
}

// ChartsConfig controls PNG chart rendering.
type ChartsConfig struct {
	WidthInches  float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES"`
	HeightInches float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES"`
	Bins         int     `yaml:"bins" envconfig:"BINS"`
	DensityGrid  int     `yaml:"density_grid" envconfig:"DENSITY_GRID"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	ServiceVersion string `yaml:"service_version" envconfig:"SERVICE_VERSION"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then an optional YAML file,
// then DTI_* environment variables. Later sources win.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset path must be set")
	}

	for _, col := range c.Dataset.RequiredColumns() {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("required column names must not be empty")
		}
	}

	if len(c.Dataset.Keywords) == 0 && c.Dataset.IndexColumn == "" {
		return fmt.Errorf("either index keywords or an explicit index column must be configured")
	}

	if c.Dataset.PreviewRows < 0 {
		return fmt.Errorf("preview rows must not be negative")
	}

	if c.Charts.Bins <= 0 {
		return fmt.Errorf("histogram bins must be positive")
	}

	if c.Charts.WidthInches <= 0 || c.Charts.HeightInches <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Dataset: DatasetConfig{
			Path:         "两版合并后的年报数据_完整版.xlsx",
			EntityColumn: "股票代码",
			YearColumn:   "年份",
			NameColumn:   "企业名称",
			Keywords:     []string{"数字化", "转型", "指数"},
			PreviewRows:  10,
			ExportBOM:    true,
		},
		Charts: ChartsConfig{
			WidthInches:  8,
			HeightInches: 4.5,
			Bins:         20,
			DensityGrid:  100,
		},
		OTel: OTelConfig{
			ServiceName:    "dtindex",
			ServiceVersion: "dev",
			Environment:    "development",
			TracingEnabled: false,
			MetricsEnabled: true,
		},
	}
}
