// Package config loads stocklens settings from an optional YAML file,
// a .env file and STOCKLENS_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raykavin/stocklens/pkg/indicator"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

const (
	EnvPrefix = "STOCKLENS"

	ProviderYahoo = "yahoo"
	ProviderCSV   = "csv"
)

// Config holds the application configuration
type Config struct {
	Log        LogConfig
	Provider   ProviderConfig
	Chart      ChartConfig
	Indicators IndicatorsConfig
	Storage    StorageConfig
	Telegram   TelegramConfig
	Mail       MailConfig
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	TimeFormat string `mapstructure:"time_format"`
	Colored    bool   `mapstructure:"colored"`
	JSON       bool   `mapstructure:"json"`
}

// ProviderConfig selects where daily history comes from.
// With kind yahoo and a csv_dir, the CSV files are the fallback.
type ProviderConfig struct {
	Kind     string        `mapstructure:"kind"`
	Lookback string        `mapstructure:"lookback"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
	CSVDir   string        `mapstructure:"csv_dir"`
	BaseURL  string        `mapstructure:"base_url"`
}

type ChartConfig struct {
	Port          int    `mapstructure:"port"`
	Window        int    `mapstructure:"window"`
	Debug         bool   `mapstructure:"debug"`
	DefaultTicker string `mapstructure:"default_ticker"`
}

type IndicatorsConfig struct {
	Variant string `mapstructure:"variant"`
}

type StorageConfig struct {
	Path    string `mapstructure:"path"`
	History int    `mapstructure:"history"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	Users   []int  `mapstructure:"-"`
}

type MailConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Server   string        `mapstructure:"server"`
	Port     int           `mapstructure:"port"`
	From     string        `mapstructure:"from"`
	To       string        `mapstructure:"to"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.time_format", "2006-01-02 15:04:05")
	v.SetDefault("log.colored", true)
	v.SetDefault("log.json", false)

	v.SetDefault("provider.kind", ProviderYahoo)
	v.SetDefault("provider.lookback", "365d")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.retries", 3)
	v.SetDefault("provider.csv_dir", "")
	v.SetDefault("provider.base_url", "")

	v.SetDefault("chart.port", 8080)
	v.SetDefault("chart.window", 60)
	v.SetDefault("chart.debug", false)
	v.SetDefault("chart.default_ticker", "7203.T")

	v.SetDefault("indicators.variant", indicator.VariantFull)

	v.SetDefault("storage.path", ":memory:")
	v.SetDefault("storage.history", 50)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.users", "")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.server", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.timeout", 30*time.Second)
}

// Load reads the configuration. An empty path reads no file; a missing
// .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	users, err := parseUsers(v.Get("telegram.users"))
	if err != nil {
		return nil, err
	}
	config.Telegram.Users = users

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that would otherwise fail later at start-up
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderYahoo:
	case ProviderCSV:
		if c.Provider.CSVDir == "" {
			return errors.New("provider.csv_dir is required for the csv provider")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Kind)
	}

	if _, err := c.Lookback(); err != nil {
		return err
	}
	if c.Provider.Retries < 0 {
		return fmt.Errorf("provider.retries must not be negative: %d", c.Provider.Retries)
	}
	if _, err := c.IndicatorConfig(); err != nil {
		return err
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || len(c.Telegram.Users) == 0) {
		return errors.New("telegram needs a token and at least one user")
	}
	if c.Mail.Enabled && (c.Mail.Server == "" || c.Mail.To == "") {
		return errors.New("mail needs a server and a recipient")
	}
	return nil
}

// Lookback returns the parsed provider lookback
func (c *Config) Lookback() (time.Duration, error) {
	lookback, err := str2duration.ParseDuration(c.Provider.Lookback)
	if err != nil {
		return 0, fmt.Errorf("invalid provider.lookback %q: %w", c.Provider.Lookback, err)
	}
	if lookback <= 0 {
		return 0, fmt.Errorf("provider.lookback must be positive: %q", c.Provider.Lookback)
	}
	return lookback, nil
}

// IndicatorConfig returns the preset named by indicators.variant
func (c *Config) IndicatorConfig() (indicator.Config, error) {
	return indicator.ParseVariant(c.Indicators.Variant)
}

// parseUsers accepts a YAML list or a comma separated string such as "123,456"
func parseUsers(raw any) ([]int, error) {
	var items []string
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case string:
		items = strings.Split(value, ",")
	case []any:
		items = lo.Map(value, func(item any, _ int) string { return fmt.Sprint(item) })
	case []int:
		return value, nil
	default:
		return nil, fmt.Errorf("invalid telegram.users %v", raw)
	}

	items = lo.Filter(lo.Map(items, func(item string, _ int) string {
		return strings.TrimSpace(item)
	}), func(item string, _ int) bool { return item != "" })

	users := make([]int, 0, len(items))
	for _, item := range items {
		user, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram user %q: %w", item, err)
		}
		users = append(users, user)
	}
	return users, nil
}
