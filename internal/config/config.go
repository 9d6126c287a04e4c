package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"policyscraper/internal/log"
)

const (
	LISTEN_ADDR                     = "LISTEN_ADDR"
	METRICS_ADDR                    = "METRICS_ADDR"
	IS_DEV                          = "IS_DEV"
	BASIC_AUTH_USER                 = "BASIC_AUTH_USER"
	BASIC_AUTH_PASS                 = "BASIC_AUTH_PASS"
	USER_AGENT                      = "USER_AGENT"
	FETCH_TIMEOUT                   = "FETCH_TIMEOUT"
	FETCH_RETRIES                   = "FETCH_RETRIES"
	REQUEST_DELAY                   = "REQUEST_DELAY"
	BATCH_DEADLINE                  = "BATCH_DEADLINE"
	MIN_CONTENT_CHARS               = "MIN_CONTENT_CHARS"
	EXTRACT_MAIN_CONTENT            = "EXTRACT_MAIN_CONTENT"
	REGISTRY_FILE                   = "REGISTRY_FILE"
	STORAGE_BACKEND                 = "STORAGE_BACKEND"
	STORAGE_DIR                     = "STORAGE_DIR"
	STORAGE_CONTAINER               = "STORAGE_CONTAINER"
	AZURE_STORAGE_CONNECTION_STRING = "AZURE_STORAGE_CONNECTION_STRING"
	CACHE_TTL                       = "CACHE_TTL"
	RATE_LIMIT_RPS                  = "RATE_LIMIT_RPS"
	RATE_LIMIT_BURST                = "RATE_LIMIT_BURST"
)

// Storage backends.
const (
	StorageNone  = "none"
	StorageFile  = "file"
	StorageAzure = "azure"
)

type Config struct {
	ListenAddr  string `mapstructure:"LISTEN_ADDR"`
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	IsDev       bool   `mapstructure:"IS_DEV"`

	BasicAuthUser string `mapstructure:"BASIC_AUTH_USER"`
	BasicAuthPass string `mapstructure:"BASIC_AUTH_PASS"`

	UserAgent       string        `mapstructure:"USER_AGENT"`
	FetchTimeout    time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchRetries    int           `mapstructure:"FETCH_RETRIES"`
	RequestDelay    time.Duration `mapstructure:"REQUEST_DELAY"`
	BatchDeadline   time.Duration `mapstructure:"BATCH_DEADLINE"`
	MinContentChars int           `mapstructure:"MIN_CONTENT_CHARS"`
	MainContentOnly bool          `mapstructure:"EXTRACT_MAIN_CONTENT"`
	RegistryFile    string        `mapstructure:"REGISTRY_FILE"`

	StorageBackend   string `mapstructure:"STORAGE_BACKEND"`
	StorageDir       string `mapstructure:"STORAGE_DIR"`
	StorageContainer string `mapstructure:"STORAGE_CONTAINER"`
	AzureConnString  string `mapstructure:"AZURE_STORAGE_CONNECTION_STRING"`

	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
}

var AppConfig *Config

// LoadEnv loads .env and the process environment into AppConfig.
func LoadEnv() {
	cfg, err := Load(".env")
	if err != nil {
		log.Logger.Fatal("Failed to load config", zap.Error(err))
	}
	AppConfig = cfg
}

// Load reads configuration from an optional env-format file and the
// environment, which takes precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			log.Logger.Debug("config file not found, using environment", zap.String("path", path))
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(LISTEN_ADDR, ":8080")
	v.SetDefault(METRICS_ADDR, ":8081")
	v.SetDefault(IS_DEV, false)
	v.SetDefault(BASIC_AUTH_USER, "")
	v.SetDefault(BASIC_AUTH_PASS, "")
	v.SetDefault(USER_AGENT, "")
	v.SetDefault(FETCH_TIMEOUT, 30*time.Second)
	v.SetDefault(FETCH_RETRIES, 0)
	v.SetDefault(REQUEST_DELAY, 2*time.Second)
	v.SetDefault(BATCH_DEADLINE, 230*time.Second)
	v.SetDefault(MIN_CONTENT_CHARS, 0)
	v.SetDefault(EXTRACT_MAIN_CONTENT, false)
	v.SetDefault(REGISTRY_FILE, "")
	v.SetDefault(STORAGE_BACKEND, StorageNone)
	v.SetDefault(STORAGE_DIR, "")
	v.SetDefault(STORAGE_CONTAINER, "meta-standards")
	v.SetDefault(AZURE_STORAGE_CONNECTION_STRING, "")
	v.SetDefault(CACHE_TTL, 10*time.Minute)
	v.SetDefault(RATE_LIMIT_RPS, 1.0)
	v.SetDefault(RATE_LIMIT_BURST, 3)
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageNone, StorageFile:
	case StorageAzure:
		if c.AzureConnString == "" {
			return fmt.Errorf("%s must be set when %s=%s", AZURE_STORAGE_CONNECTION_STRING, STORAGE_BACKEND, StorageAzure)
		}
	default:
		return fmt.Errorf("unknown %s %q", STORAGE_BACKEND, c.StorageBackend)
	}

	if (c.BasicAuthUser == "") != (c.BasicAuthPass == "") {
		return fmt.Errorf("%s and %s must be set together", BASIC_AUTH_USER, BASIC_AUTH_PASS)
	}
	if c.RequestDelay < 0 || c.FetchRetries < 0 || c.MinContentChars < 0 {
		return errors.New("delays, retries and minimum content length must not be negative")
	}
	return nil
}

// BasicAuthEnabled reports whether API credentials are configured.
func (c *Config) BasicAuthEnabled() bool {
	return c.BasicAuthUser != "" && c.BasicAuthPass != ""
}
