// Package config loads stockdesk settings from $STOCKDESK_HOME/config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/stockdesk/internal/pagination"
	"github.com/rshade/stockdesk/internal/query"
	"github.com/rshade/stockdesk/internal/storage"
)

// Defaults.
const (
	DefaultBaseURL     = "http://localhost:8080"
	DefaultTimeout     = 30 * time.Second
	DefaultOutput      = "table"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	configFileName     = "config.yaml"
	dataDirName        = "data"
	envHome            = "STOCKDESK_HOME"
	envAPIURL          = "STOCKDESK_API_URL"
	envAPITimeout      = "STOCKDESK_API_TIMEOUT"
	envLogLevel        = "STOCKDESK_LOG_LEVEL"
	envLogFormat       = "STOCKDESK_LOG_FORMAT"
	envLogFile         = "STOCKDESK_LOG_FILE"
	envStorageBackend  = "STOCKDESK_STORAGE_BACKEND"
	envStorageDir      = "STOCKDESK_STORAGE_DIR"
	envRedisAddr       = "STOCKDESK_REDIS_ADDR"
	envSQLDriver       = "STOCKDESK_SQL_DRIVER"
	envSQLDSN          = "STOCKDESK_SQL_DSN"
	envPageSize        = "STOCKDESK_PAGE_SIZE"
	envDefaultCategory = "STOCKDESK_CATEGORY"
)

// EnvToken names the environment variable that may carry a bearer token.
const EnvToken = "STOCKDESK_TOKEN"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full stockdesk configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	List    ListConfig    `yaml:"list"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// APIConfig locates the dashboard backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ListConfig tunes list views.
type ListConfig struct {
	PageSize   int            `yaml:"page_size"`
	MaxVisible int            `yaml:"max_visible"`
	Siblings   int            `yaml:"siblings"`
	Debounce   time.Duration  `yaml:"debounce"`
	Category   query.Category `yaml:"category"`
}

// StorageConfig selects the durable store for carts and sessions.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	Dir           string `yaml:"dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	SQLDriver     string `yaml:"sql_driver"`
	SQLDSN        string `yaml:"sql_dsn"`
	Namespace     string `yaml:"namespace"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// New returns a Config populated with defaults and environment overrides.
func New() *Config {
	cfg := defaults()
	cfg.ApplyEnv()
	return cfg
}

func defaults() *Config {
	dataDir := dataDirName
	if dir, err := GetConfigDir(); err == nil {
		dataDir = filepath.Join(dir, dataDirName)
	}

	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		List: ListConfig{
			PageSize:   pagination.DefaultPageSize,
			MaxVisible: pagination.DefaultMaxVisible,
			Siblings:   pagination.DefaultSiblings,
			Debounce:   query.DefaultDebounce,
			Category:   query.CategoryCompany,
		},
		Storage: StorageConfig{
			Backend:   storage.BackendFile,
			Dir:       dataDir,
			SQLDriver: storage.DriverSQLite,
			Namespace: "stockdesk",
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output: OutputConfig{
			DefaultFormat: DefaultOutput,
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path means DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, unmarshalErr)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// DefaultPath returns $STOCKDESK_HOME/config.yaml.
func DefaultPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// ApplyEnv overrides fields from STOCKDESK_* environment variables. Unparseable
// numeric values are ignored.
func (c *Config) ApplyEnv() {
	setString(&c.API.BaseURL, envAPIURL)
	if v := os.Getenv(envAPITimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	setString(&c.Logging.Level, envLogLevel)
	setString(&c.Logging.Format, envLogFormat)
	setString(&c.Logging.File, envLogFile)
	setString(&c.Storage.Backend, envStorageBackend)
	setString(&c.Storage.Dir, envStorageDir)
	setString(&c.Storage.RedisAddr, envRedisAddr)
	setString(&c.Storage.SQLDriver, envSQLDriver)
	setString(&c.Storage.SQLDSN, envSQLDSN)
	if v := os.Getenv(envPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.List.PageSize = n
		}
	}
	if v := os.Getenv(envDefaultCategory); v != "" {
		c.List.Category = query.Category(strings.ToLower(v))
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate reports every invalid field, joined.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if err := pagination.ValidatePageSize(c.List.PageSize); err != nil {
		errs = append(errs, fmt.Errorf("list.page_size: %w", err))
	}
	if c.List.MaxVisible < pagination.MinMaxVisible {
		errs = append(errs, fmt.Errorf("list.max_visible must be >= %d, got %d", pagination.MinMaxVisible, c.List.MaxVisible))
	}
	if c.List.Siblings < 0 {
		errs = append(errs, fmt.Errorf("list.siblings must be >= 0, got %d", c.List.Siblings))
	}
	if c.List.Debounce < 0 {
		errs = append(errs, fmt.Errorf("list.debounce must be >= 0, got %s", c.List.Debounce))
	}
	if !c.List.Category.Valid() {
		errs = append(errs, fmt.Errorf("list.category: %w", query.ErrInvalidCategory))
	}

	switch c.Storage.Backend {
	case storage.BackendMemory:
	case storage.BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("storage.dir is required for the file backend"))
		}
	case storage.BackendRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for the redis backend"))
		}
	case storage.BackendSQL:
		if c.Storage.SQLDriver != storage.DriverSQLite && c.Storage.SQLDriver != storage.DriverMySQL {
			errs = append(errs, fmt.Errorf("storage.sql_driver must be sqlite or mysql, got %q", c.Storage.SQLDriver))
		}
		if c.Storage.SQLDSN == "" {
			errs = append(errs, errors.New("storage.sql_dsn is required for the sql backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be memory, file, redis or sql, got %q", c.Storage.Backend))
	}

	switch c.Output.DefaultFormat {
	case "table", "json":
	default:
		errs = append(errs, fmt.Errorf("output.default_format must be table or json, got %q", c.Output.DefaultFormat))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ToStorageConfig converts the storage section for storage.Open.
func (sc StorageConfig) ToStorageConfig() storage.Config {
	return storage.Config{
		Backend:       sc.Backend,
		Dir:           sc.Dir,
		RedisAddr:     sc.RedisAddr,
		RedisPassword: sc.RedisPassword,
		RedisDB:       sc.RedisDB,
		SQLDriver:     sc.SQLDriver,
		SQLDSN:        sc.SQLDSN,
		Namespace:     sc.Namespace,
	}
}
