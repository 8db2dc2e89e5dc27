package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/polylens/config"
	"github.com/alejandrodnm/polylens/internal/adapters/notify"
	"github.com/alejandrodnm/polylens/internal/adapters/polymarket"
	"github.com/alejandrodnm/polylens/internal/adapters/storage"
	"github.com/alejandrodnm/polylens/internal/analysis"
	"github.com/alejandrodnm/polylens/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one analysis cycle and exit")
	dryRun := flag.Bool("dry-run", false, "single cycle, no persistence")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")
	mode := flag.String("mode", "", "strategy mode: bullish|bearish|relative (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *mode != "" {
		cfg.Analysis.StrategyMode = *mode
	}
	setupLogger(cfg.Log)

	slog.Info("polylens starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"mode", cfg.Analysis.StrategyMode,
		"dry_run", *dryRun,
		"once", *once,
	)

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)

	// Con -dry-run no se abre la base: el engine tolera storage nil.
	var store ports.Storage
	if !*dryRun {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	}

	notifier := notify.NewConsole(*table)

	engCfg := engineConfig(cfg)
	engCfg.DryRun = *dryRun || *once

	eng := analysis.New(engCfg, client, client, client, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := eng.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("polylens stopped cleanly")
}

// engineConfig mapea la configuración YAML al config del engine.
func engineConfig(cfg *config.Config) analysis.Config {
	engCfg := analysis.DefaultConfig()
	engCfg.ScanInterval = cfg.ScanInterval()
	engCfg.Workers = cfg.Analysis.Workers
	engCfg.MaxStrategies = cfg.Analysis.MaxStrategies
	engCfg.StrategyMode = cfg.Analysis.StrategyMode
	engCfg.Size = cfg.Analysis.OrderSize
	engCfg.Notional = cfg.Analysis.SizeNotional
	engCfg.RiskCap = cfg.Analysis.RiskCapUSDC
	engCfg.Weight = cfg.Analysis.HedgeWeight
	if cfg.Analysis.HalfLifeDays > 0 {
		engCfg.HalfLifeDays = cfg.Analysis.HalfLifeDays
	}
	engCfg.Align.Tolerance = cfg.AlignTolerance()
	engCfg.Align.MaxLagPeriods = cfg.Analysis.LeadLagWindow
	engCfg.Filter.MinScore = cfg.Analysis.MinSignalScore
	engCfg.Filter.MinConfidence = cfg.Analysis.MinSignalConfidence

	if cfg.Analysis.TopLevels > 0 {
		engCfg.Features.TopLevels = cfg.Analysis.TopLevels
	}
	if s := cfg.Analysis.SlippageSizes; len(s) == 3 {
		engCfg.Features.SlippageSizes = [3]float64{s[0], s[1], s[2]}
	}

	if cfg.Analysis.MomentumWindow > 0 {
		engCfg.Detector.MomentumWindow = cfg.Analysis.MomentumWindow
	}
	if cfg.Analysis.MomentumCutoff > 0 {
		engCfg.Detector.MomentumCutoff = cfg.Analysis.MomentumCutoff
	}
	if cfg.Analysis.MomentumConfidence > 0 {
		engCfg.Detector.MomentumConfidence = cfg.Analysis.MomentumConfidence
	}
	if cfg.Analysis.ZScoreCutoff > 0 {
		engCfg.Detector.ZScoreCutoff = cfg.Analysis.ZScoreCutoff
	}
	if cfg.Analysis.MeanRevConfidence > 0 {
		engCfg.Detector.MeanRevConfidence = cfg.Analysis.MeanRevConfidence
	}
	if cfg.Analysis.DivergenceCorrMin > 0 {
		engCfg.Detector.DivergenceCorrMin = cfg.Analysis.DivergenceCorrMin
	}
	if cfg.Analysis.DivergenceRatio > 0 {
		engCfg.Detector.DivergenceRatio = cfg.Analysis.DivergenceRatio
	}
	if cfg.Analysis.DivergenceConfidence > 0 {
		engCfg.Detector.DivergenceConfidence = cfg.Analysis.DivergenceConfidence
	}

	if cfg.Analysis.EVStep > 0 {
		engCfg.Payoff.EVStep = cfg.Analysis.EVStep
	}
	if len(cfg.Analysis.DecayHorizons) > 0 {
		engCfg.Payoff.DecayHorizons = cfg.Analysis.DecayHorizons
	}

	if cfg.Analysis.OverroundMax > 0 {
		engCfg.Scan.OverroundMax = cfg.Analysis.OverroundMax
	}
	if cfg.Analysis.UnderroundMin > 0 {
		engCfg.Scan.UnderroundMin = cfg.Analysis.UnderroundMin
	}
	if cfg.Analysis.MaxSpread > 0 {
		engCfg.Scan.MaxSpread = cfg.Analysis.MaxSpread
	}
	if cfg.Analysis.MinLiquidityUSDC > 0 {
		engCfg.Scan.MinLiquidity = cfg.Analysis.MinLiquidityUSDC
	}
	if cfg.Analysis.StaleMinutes > 0 {
		engCfg.Scan.StaleAfter = time.Duration(cfg.Analysis.StaleMinutes) * time.Minute
	}
	if cfg.Analysis.MaxFindings > 0 {
		engCfg.Scan.MaxFindings = cfg.Analysis.MaxFindings
	}
	return engCfg
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
