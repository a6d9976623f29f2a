package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Prices    PricesConfig    `yaml:"prices" mapstructure:"prices"`
	Collector CollectorConfig `yaml:"collector" mapstructure:"collector"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Formulas  FormulasConfig  `yaml:"formulas" mapstructure:"formulas"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PricesConfig configures the WarEra price endpoint.
type PricesConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerMinute float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// CollectorConfig configures a collection run.
type CollectorConfig struct {
	// RequireCompleteSnapshot fails a run when any known product is absent
	// from the fetched prices.
	RequireCompleteSnapshot bool `yaml:"require_complete_snapshot" mapstructure:"require_complete_snapshot"`
}

// ScheduleConfig configures the cron trigger.
type ScheduleConfig struct {
	Cron string `yaml:"cron" mapstructure:"cron"`
}

// FormulasConfig points at an optional formula table file. Empty means the
// built-in table.
type FormulasConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the read API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first; it never overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "market-history.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("prices.base_url", "https://api2.warera.io")
	v.SetDefault("prices.timeout_secs", 30)
	v.SetDefault("prices.user_agent", "market-history/1.0")
	v.SetDefault("prices.rate_per_minute", 30)
	v.SetDefault("collector.require_complete_snapshot", false)
	v.SetDefault("schedule.cron", "*/5 * * * *")
	v.SetDefault("formulas.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command needs. Mode is one of "collect",
// "schedule", "serve", or "store".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	if mode == "collect" || mode == "schedule" || mode == "serve" {
		if c.Prices.BaseURL == "" {
			errs = append(errs, "prices.base_url is required")
		}
		if c.Prices.TimeoutSecs <= 0 {
			errs = append(errs, "prices.timeout_secs must be positive")
		}
	}
	if mode == "schedule" && c.Schedule.Cron == "" {
		errs = append(errs, "schedule.cron is required")
	}
	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
