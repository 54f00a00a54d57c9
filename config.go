package mediapager

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment override, e.g. MEDIAPAGER_PAGE_SIZE or
// MEDIAPAGER_RETRY_MAX_RETRIES.
const EnvPrefix = "MEDIAPAGER"

// Config holds the tunables shared by all pagers of a process.
type Config struct {
	PageSize         int         `mapstructure:"page_size"`
	MaxBufferedItems int         `mapstructure:"max_buffered_items"`
	FetchSize        int         `mapstructure:"fetch_size"`
	Locale           string      `mapstructure:"locale"`
	Retry            RetryConfig `mapstructure:"retry"`
}

func DefaultConfig() Config {
	return Config{
		PageSize:         DefaultPageSize,
		MaxBufferedItems: MaxBufferedItems,
		FetchSize:        RemoteFetchSize,
		Locale:           language.Und.String(),
		Retry:            DefaultRetryConfig(),
	}
}

// LoadConfig reads configuration from the optional file at path and from MEDIAPAGER_*
// environment variables. envFiles are loaded into the environment first; missing ones are
// skipped.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file '%s': %w", envFile, err)
		}
	}

	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("page_size", def.PageSize)
	v.SetDefault("max_buffered_items", def.MaxBufferedItems)
	v.SetDefault("fetch_size", def.FetchSize)
	v.SetDefault("locale", def.Locale)
	v.SetDefault("retry.max_retries", def.Retry.MaxRetries)
	v.SetDefault("retry.initial_backoff", def.Retry.InitialBackoff)
	v.SetDefault("retry.max_backoff", def.Retry.MaxBackoff)
	v.SetDefault("retry.trip_after", def.Retry.TripAfter)
	v.SetDefault("retry.open_timeout", def.Retry.OpenTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config '%s': %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg.normalized(), nil
}

func (c Config) validate() error {
	if c.Locale == "" {
		return nil
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("locale '%s': %w", c.Locale, err)
	}

	return nil
}

// normalized clamps sizes into their valid ranges.
func (c Config) normalized() Config {
	c.PageSize = NormalizePageSize(c.PageSize)
	c.MaxBufferedItems = normalizeBufferCap(c.MaxBufferedItems)
	if c.FetchSize <= 0 {
		c.FetchSize = RemoteFetchSize
	}

	return c
}

func (c Config) language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}

	return tag
}
