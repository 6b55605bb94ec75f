package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "4h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Scenario is a named growth-rate pair for simulation presets.
type Scenario struct {
	Name           string  `yaml:"name"`
	PriceGrowth    float64 `yaml:"price_growth"`
	DividendGrowth float64 `yaml:"dividend_growth"`
}

// Config holds all application configuration.
type Config struct {
	Source struct {
		Kind        string `yaml:"kind"` // yahoo | function | sheet | fmp | mock
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		ProxyPrefix string `yaml:"proxy_prefix"`
		SheetURL    string `yaml:"sheet_url"`
	} `yaml:"source"`
	Portfolio struct {
		Tickers    []string `yaml:"tickers"`
		BatchSize  int      `yaml:"batch_size"`
		MaxRetries int      `yaml:"max_retries"`
	} `yaml:"portfolio"`
	Cache struct {
		Path     string   `yaml:"path"`
		Duration Duration `yaml:"duration"`
	} `yaml:"cache"`
	Refresh struct {
		Cron   string   `yaml:"cron"`
		Margin Duration `yaml:"margin"`
	} `yaml:"refresh"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("QUOTE_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("QUOTE_PROXY_PREFIX"); v != "" {
		cfg.Source.ProxyPrefix = v
	}
	if v := os.Getenv("SHEET_URL"); v != "" {
		cfg.Source.SheetURL = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		var tickers []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		cfg.Portfolio.Tickers = tickers
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "yahoo"
	}
	if cfg.Portfolio.BatchSize == 0 {
		cfg.Portfolio.BatchSize = 10
	}
	if cfg.Portfolio.MaxRetries == 0 {
		cfg.Portfolio.MaxRetries = 3
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/quotes_cache.json"
	}
	if cfg.Cache.Duration == 0 {
		cfg.Cache.Duration = Duration(4 * time.Hour)
	}
	if cfg.Refresh.Cron == "" {
		cfg.Refresh.Cron = "0 */5 * * * *"
	}
	if cfg.Refresh.Margin == 0 {
		cfg.Refresh.Margin = Duration(5 * time.Minute)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if len(cfg.Scenarios) == 0 {
		cfg.Scenarios = []Scenario{
			{Name: "pessimistic", PriceGrowth: 0.03, DividendGrowth: 0.02},
			{Name: "realistic", PriceGrowth: 0.07, DividendGrowth: 0.05},
			{Name: "optimistic", PriceGrowth: 0.10, DividendGrowth: 0.08},
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable before any work begins.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "yahoo", "mock":
	case "function":
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url is required for the function source")
		}
	case "sheet":
		if c.Source.SheetURL == "" {
			return fmt.Errorf("source.sheet_url is required for the sheet source")
		}
	case "fmp":
		if c.Source.APIKey == "" {
			return fmt.Errorf("source.api_key is required for the fmp source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if len(c.Portfolio.Tickers) == 0 {
		return fmt.Errorf("portfolio.tickers must not be empty")
	}
	if c.Portfolio.BatchSize <= 0 {
		return fmt.Errorf("portfolio.batch_size must be positive")
	}
	if c.Portfolio.MaxRetries < 1 {
		return fmt.Errorf("portfolio.max_retries must be at least 1")
	}
	if c.Cache.Duration <= 0 {
		return fmt.Errorf("cache.duration must be positive")
	}
	return nil
}
