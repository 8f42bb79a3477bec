package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/core"
)

// Config is the root AATM configuration container. It is built once at
// process start and treated as read-only after validation.
type Config struct {
	TradingMode core.TradingMode `mapstructure:"trading_mode"`
	ModuleName  string           `mapstructure:"module_name"`
	LogLevel    string           `mapstructure:"log_level"`

	Market   MarketConfig   `mapstructure:"market"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Store    StoreConfig    `mapstructure:"store"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Features FeatureFlags   `mapstructure:"features"`
}

// MarketConfig holds market-specific settings.
type MarketConfig struct {
	Exchange             string          `mapstructure:"exchange"`
	Symbol               string          `mapstructure:"symbol"`
	Timeframe            string          `mapstructure:"timeframe"`
	AssetClass           core.AssetClass `mapstructure:"asset_class"`
	MaxHistoricalCandles int             `mapstructure:"max_historical_candles"`
	RealtimeIntervalSec  int             `mapstructure:"realtime_interval_sec"`
}

// StrategyConfig holds strategy evolution settings.
type StrategyConfig struct {
	PopulationSize        int     `mapstructure:"population_size"`
	EvolutionIntervalHrs  int     `mapstructure:"evolution_interval_hours"`
	PerformanceWindowDays int     `mapstructure:"performance_window_days"`
	MutationRate          float64 `mapstructure:"mutation_rate"`
	CrossoverRate         float64 `mapstructure:"crossover_rate"`
	ElitismCount          int     `mapstructure:"elitism_count"`
	MaxComplexity         int     `mapstructure:"max_complexity"`
}

// RiskConfig holds risk management settings. Percentages are human-readable
// units: 2.0 means 2%.
type RiskConfig struct {
	MaxPositionSizePct  float64 `mapstructure:"max_position_size_pct"`
	MaxPortfolioRiskPct float64 `mapstructure:"max_portfolio_risk_pct"`
	StopLossPct         float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct       float64 `mapstructure:"take_profit_pct"`
	MaxDailyLossPct     float64 `mapstructure:"max_daily_loss_pct"`
	MaxConcurrentTrades int     `mapstructure:"max_concurrent_trades"`
}

// StoreConfig holds document store settings. ProjectID and CredentialsFile
// come from the environment (AATM_STORE_PROJECT_ID, AATM_STORE_CREDENTIALS_FILE)
// unless set in the config file.
type StoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`

	CollectionStrategies  string `mapstructure:"collection_strategies"`
	CollectionPerformance string `mapstructure:"collection_performance"`
	CollectionMarketState string `mapstructure:"collection_market_state"`
	CollectionTradeLogs   string `mapstructure:"collection_trade_logs"`

	ProbeTimeoutSec int `mapstructure:"probe_timeout_sec"`
}

// ArchiveConfig holds cold archive settings.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

// S3Config holds S3 archive backend settings.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// FeatureFlags toggles optional subsystems.
type FeatureFlags struct {
	AutoEvolution       bool `mapstructure:"auto_evolution"`
	Alerts              bool `mapstructure:"alerts"`
	PerformanceTracking bool `mapstructure:"performance_tracking"`
	RegimeDetection     bool `mapstructure:"regime_detection"`
}

// Load reads configuration from defaults, an optional YAML file, and the
// process environment (AATM_ prefix, dots replaced by underscores). It does
// no network I/O.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AATM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		// Expand environment variables in string values
		for _, key := range v.AllKeys() {
			val := v.GetString(key)
			if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
				envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
				v.Set(key, os.Getenv(envKey))
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if !cfg.TradingMode.IsValid() {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown trading mode %q", cfg.TradingMode))
	}
	if !cfg.Market.AssetClass.IsValid() {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown asset class %q", cfg.Market.AssetClass))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading_mode", string(core.ModePaper))
	v.SetDefault("module_name", "aatm_v1")
	v.SetDefault("log_level", "info")

	v.SetDefault("market.exchange", "binance")
	v.SetDefault("market.symbol", "BTC/USDT")
	v.SetDefault("market.timeframe", "1h")
	v.SetDefault("market.asset_class", string(core.AssetCrypto))
	v.SetDefault("market.max_historical_candles", 1000)
	v.SetDefault("market.realtime_interval_sec", 60)

	v.SetDefault("strategy.population_size", 10)
	v.SetDefault("strategy.evolution_interval_hours", 24)
	v.SetDefault("strategy.performance_window_days", 30)
	v.SetDefault("strategy.mutation_rate", 0.1)
	v.SetDefault("strategy.crossover_rate", 0.7)
	v.SetDefault("strategy.elitism_count", 2)
	v.SetDefault("strategy.max_complexity", 50)

	v.SetDefault("risk.max_position_size_pct", 2.0)
	v.SetDefault("risk.max_portfolio_risk_pct", 5.0)
	v.SetDefault("risk.stop_loss_pct", 2.0)
	v.SetDefault("risk.take_profit_pct", 4.0)
	v.SetDefault("risk.max_daily_loss_pct", 3.0)
	v.SetDefault("risk.max_concurrent_trades", 5)

	v.SetDefault("store.project_id", "")
	v.SetDefault("store.credentials_file", "./store_credentials.json")
	v.SetDefault("store.collection_strategies", "aatm_strategies")
	v.SetDefault("store.collection_performance", "aatm_performance")
	v.SetDefault("store.collection_market_state", "aatm_market_state")
	v.SetDefault("store.collection_trade_logs", "aatm_trade_logs")
	v.SetDefault("store.probe_timeout_sec", 10)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.type", "localfs")
	v.SetDefault("archive.path", "./archive")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("features.auto_evolution", true)
	v.SetDefault("features.alerts", true)
	v.SetDefault("features.performance_tracking", true)
	v.SetDefault("features.regime_detection", true)
}

// Defaults returns a config with the stock defaults and nothing from the
// environment.
func Defaults() *Config {
	return &Config{
		TradingMode: core.ModePaper,
		ModuleName:  "aatm_v1",
		LogLevel:    "info",
		Market: MarketConfig{
			Exchange:             "binance",
			Symbol:               "BTC/USDT",
			Timeframe:            "1h",
			AssetClass:           core.AssetCrypto,
			MaxHistoricalCandles: 1000,
			RealtimeIntervalSec:  60,
		},
		Strategy: StrategyConfig{
			PopulationSize:        10,
			EvolutionIntervalHrs:  24,
			PerformanceWindowDays: 30,
			MutationRate:          0.1,
			CrossoverRate:         0.7,
			ElitismCount:          2,
			MaxComplexity:         50,
		},
		Risk: RiskConfig{
			MaxPositionSizePct:  2.0,
			MaxPortfolioRiskPct: 5.0,
			StopLossPct:         2.0,
			TakeProfitPct:       4.0,
			MaxDailyLossPct:     3.0,
			MaxConcurrentTrades: 5,
		},
		Store: StoreConfig{
			CredentialsFile:       "./store_credentials.json",
			CollectionStrategies:  "aatm_strategies",
			CollectionPerformance: "aatm_performance",
			CollectionMarketState: "aatm_market_state",
			CollectionTradeLogs:   "aatm_trade_logs",
			ProbeTimeoutSec:       10,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "./archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Features: FeatureFlags{
			AutoEvolution:       true,
			Alerts:              true,
			PerformanceTracking: true,
			RegimeDetection:     true,
		},
	}
}

// Validate checks the configuration and logs diagnostics. It returns false
// only when the store project id is empty; an oversized position risk is
// advisory and does not block startup. Other fields are intentionally
// unchecked.
func (c *Config) Validate(log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}

	if c.Store.ProjectID == "" {
		log.Error("store project id not configured",
			zap.String("env", "AATM_STORE_PROJECT_ID"))
		return false
	}

	if c.Risk.MaxPositionSizePct > 10 {
		log.Warn("position size exceeds recommended maximum",
			zap.Float64("max_position_size_pct", c.Risk.MaxPositionSizePct))
	}

	return true
}
