package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig says where the flight workbook lives.
type DataConfig struct {
	Source   string `yaml:"source" mapstructure:"source"`       // path, directory, URL or database DSN
	Format   string `yaml:"format" mapstructure:"format"`       // auto, xlsx, csv or db
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"` // where remote workbooks are downloaded
}

// ClassifyConfig holds the delay thresholds in minutes.
type ClassifyConfig struct {
	OnTimeMaxMinutes   int `yaml:"on_time_max_minutes" mapstructure:"on_time_max_minutes"`
	ModerateMaxMinutes int `yaml:"moderate_max_minutes" mapstructure:"moderate_max_minutes"`
	LabelMinCount      int `yaml:"label_min_count" mapstructure:"label_min_count"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// StoreConfig configures the database backend used by import.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	// TrustProxy keys clients on X-Forwarded-For / X-Real-IP. Only enable
	// behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy" mapstructure:"trust_proxy"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml, when present, and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory; a named file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("FLIGHTDELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.source", "data/flight_data.xlsx")
	v.SetDefault("data.format", "auto")
	v.SetDefault("data.cache_dir", "/tmp/flightdelay")
	v.SetDefault("classify.on_time_max_minutes", 15)
	v.SetDefault("classify.moderate_max_minutes", 60)
	v.SetDefault("classify.label_min_count", 3200)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_limit", 5)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sqlite://data/flightdelay.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.trust_proxy", false)
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

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "report", "domains", "import":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		errs = append(errs, "data.source is required")
	}
	switch strings.ToLower(c.Data.Format) {
	case "", "auto", "xlsx", "csv", "db":
	default:
		errs = append(errs, "data.format must be one of auto, xlsx, csv, db")
	}
	if c.Classify.OnTimeMaxMinutes < 0 {
		errs = append(errs, "classify.on_time_max_minutes must be >= 0")
	}
	if c.Classify.ModerateMaxMinutes <= c.Classify.OnTimeMaxMinutes {
		errs = append(errs, "classify.moderate_max_minutes must be greater than classify.on_time_max_minutes")
	}
	if c.Classify.LabelMinCount < 0 {
		errs = append(errs, "classify.label_min_count must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
			errs = append(errs, "server.rate_limit and server.rate_burst must be >= 0")
		}
	case "import":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger sets up the global zap logger.
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
