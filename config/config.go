package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketcrawler/pkg/binance"
	"marketcrawler/pkg/market"

	"github.com/spf13/viper"
)

type Config struct {
	Binance  BinanceConfig  `mapstructure:"binance"`
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type BinanceConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	SpotBaseURL string        `mapstructure:"spot_base_url"`
	SwapBaseURL string        `mapstructure:"swap_base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// WSConfig overrides the default websocket endpoints when the URLs are set.
type WSConfig struct {
	SpotURL              string        `mapstructure:"spot_url"`
	SwapURL              string        `mapstructure:"swap_url"`
	HandshakeTimeout     time.Duration `mapstructure:"handshake_timeout"`
	MaxReconnectInterval time.Duration `mapstructure:"max_reconnect_interval"`
}

// URL returns the configured endpoint of a market type, or "" for the default.
func (c WSConfig) URL(mt market.MarketType) string {
	if mt == market.Swap {
		return c.SwapURL
	}
	return c.SpotURL
}

type CrawlConfig struct {
	MarketType     string   `mapstructure:"market_type"`    // "Spot" or "Swap"
	Channels       []string `mapstructure:"channels"`       // "BBO", "OrderBook", "Kline", "Trade"
	Pairs          []string `mapstructure:"pairs"`          // canonical pairs, e.g. "BTC_USDT"
	TradeStream    string   `mapstructure:"trade_stream"`   // "aggTrade" (default) or "trade"
	CatalogRefresh bool     `mapstructure:"catalog_refresh"` // reload the catalog at UTC midnight
}

// Options are the parsed crawl settings.
type Options struct {
	MarketType   market.MarketType
	ChannelTypes []market.ChannelType
	Pairs        []string
	TradeStream  binance.StreamKind
}

// Parse validates the crawl section. Errors wrap market.ErrInvalidConfig.
func (c CrawlConfig) Parse() (Options, error) {
	mt, err := market.ParseMarketType(c.MarketType)
	if err != nil {
		return Options{}, err
	}
	if len(c.Channels) == 0 {
		return Options{}, fmt.Errorf("%w: crawl.channels is empty", market.ErrInvalidConfig)
	}
	cts := make([]market.ChannelType, 0, len(c.Channels))
	for _, name := range c.Channels {
		ct, err := market.ParseChannelType(name)
		if err != nil {
			return Options{}, err
		}
		cts = append(cts, ct)
	}
	if len(c.Pairs) == 0 {
		return Options{}, fmt.Errorf("%w: crawl.pairs is empty", market.ErrInvalidConfig)
	}
	pairs := make([]string, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		pairs = append(pairs, strings.ToUpper(strings.TrimSpace(p)))
	}
	tradeStream, err := binance.ParseTradeStream(c.TradeStream)
	if err != nil {
		return Options{}, err
	}

	return Options{
		MarketType:   mt,
		ChannelTypes: cts,
		Pairs:        pairs,
		TradeStream:  tradeStream,
	}, nil
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	cfg, err := LoadFrom(defaultConfigPaths()...)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

// LoadFrom reads config.yaml from the first of paths that contains one.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	// Support environment variables with dot notation (e.g., CRAWL_MARKET_TYPE)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func defaultConfigPaths() []string {
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		return []string{filepath.Join(pwd, "../../config"), "./config"}
	}
	return []string{filepath.Join(filepath.Dir(ex), "../config"), "./config"}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("binance.rest.timeout", 10*time.Second)
	v.SetDefault("binance.ws.handshake_timeout", 10*time.Second)
	v.SetDefault("binance.ws.max_reconnect_interval", 30*time.Second)
	v.SetDefault("crawl.market_type", string(market.Spot))
	v.SetDefault("crawl.trade_stream", "aggTrade")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")
}
