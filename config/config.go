package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del analizador.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// AnalysisConfig controla el comportamiento del engine de análisis.
type AnalysisConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	Workers         int `yaml:"workers"` // 0 = NumCPU × 2

	MaxStrategies int     `yaml:"max_strategies"`
	StrategyMode  string  `yaml:"strategy_mode"` // bullish | bearish | relative
	OrderSize     float64 `yaml:"order_size"`
	SizeNotional  bool    `yaml:"size_notional"` // true: order_size en USDC, false: shares
	RiskCapUSDC   float64 `yaml:"risk_cap_usdc"`
	// HedgeWeight fija el peso del leg de cobertura. 0 = barrer los pesos
	// estándar y quedarse con el de mejor EV en el peor caso.
	HedgeWeight  float64 `yaml:"hedge_weight"`
	HalfLifeDays float64 `yaml:"half_life_days"`

	// Tolerancia de alineado de series en segundos. 0 = join exacto.
	AlignToleranceSeconds int `yaml:"align_tolerance_seconds"`
	// Ventana de búsqueda de lead-lag en períodos. 0 = default del análisis.
	LeadLagWindow int `yaml:"lead_lag_window"`

	// Umbrales del filtro de señales.
	MinSignalScore      float64 `yaml:"min_signal_score"`
	MinSignalConfidence float64 `yaml:"min_signal_confidence"`

	// Features de microestructura. Cero/vacío = defaults del extractor.
	TopLevels     int       `yaml:"top_levels"`
	SlippageSizes []float64 `yaml:"slippage_sizes"` // exactamente 3 tamaños en USDC

	// Umbrales de los detectores de ineficiencias. Cero = default del detector.
	MomentumWindow       int     `yaml:"momentum_window"`
	MomentumCutoff       float64 `yaml:"momentum_cutoff"`
	MomentumConfidence   float64 `yaml:"momentum_confidence"`
	ZScoreCutoff         float64 `yaml:"zscore_cutoff"`
	MeanRevConfidence    float64 `yaml:"meanrev_confidence"`
	DivergenceCorrMin    float64 `yaml:"divergence_corr_min"`
	DivergenceRatio      float64 `yaml:"divergence_ratio"`
	DivergenceConfidence float64 `yaml:"divergence_confidence"`

	// Proyección de payoff. Cero/vacío = defaults de la proyección.
	EVStep        float64   `yaml:"ev_step"`
	DecayHorizons []float64 `yaml:"decay_horizons"` // días

	// Umbrales del scanner de consistencia. Cero = default del scanner.
	OverroundMax     float64 `yaml:"overround_max"`
	UnderroundMin    float64 `yaml:"underround_min"`
	MaxSpread        float64 `yaml:"max_spread"`
	MinLiquidityUSDC float64 `yaml:"min_liquidity_usdc"`
	StaleMinutes     int     `yaml:"stale_minutes"`
	MaxFindings      int     `yaml:"max_findings"`
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ScanInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Analysis.IntervalSeconds) * time.Second
}

// AlignTolerance devuelve la tolerancia de alineado como time.Duration.
func (c *Config) AlignTolerance() time.Duration {
	return time.Duration(c.Analysis.AlignToleranceSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYLENS_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Analysis.IntervalSeconds <= 0 {
		cfg.Analysis.IntervalSeconds = 60
	}
	if cfg.Analysis.MaxStrategies <= 0 {
		cfg.Analysis.MaxStrategies = 3
	}
	if cfg.Analysis.StrategyMode == "" {
		cfg.Analysis.StrategyMode = "relative"
	}
	if cfg.Analysis.OrderSize <= 0 {
		cfg.Analysis.OrderSize = 1000
		cfg.Analysis.SizeNotional = true
	}
	if cfg.Analysis.RiskCapUSDC <= 0 {
		cfg.Analysis.RiskCapUSDC = 1500
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polylens.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
