package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polylens/internal/domain"
	"github.com/alejandrodnm/polylens/internal/ports"
	"github.com/alejandrodnm/polylens/internal/strategy"
)

// Config contiene la configuración del engine de análisis.
type Config struct {
	ScanInterval time.Duration
	// Workers para el análisis paralelo (0 = NumCPU × 2).
	Workers int
	// DryRun ejecuta un solo ciclo y no persiste.
	DryRun bool

	// MaxStrategies limita cuántas estrategias se construyen por ciclo.
	MaxStrategies int
	// StrategyMode es el modo del builder: bullish | bearish | relative.
	StrategyMode string
	// Size y Notional dimensionan el leg primario.
	Size     float64
	Notional bool
	// RiskCap es el capital máximo en riesgo por estrategia.
	RiskCap float64
	// Weight es el peso de correlación del leg de cobertura. 0 activa el
	// barrido sobre strategy.DefaultWeights.
	Weight float64
	// HalfLifeDays para la proyección de decay.
	HalfLifeDays float64

	Features domain.FeaturesConfig
	Detector domain.DetectorConfig
	Scan     domain.ScanConfig
	Align    domain.AlignConfig
	Sim      domain.SimConfig
	Payoff   domain.PayoffConfig
	Filter   FilterConfig
}

// DefaultConfig devuelve la configuración estándar del engine.
func DefaultConfig() Config {
	return Config{
		ScanInterval:  60 * time.Second,
		MaxStrategies: 3,
		StrategyMode:  "relative",
		Size:          1000,
		Notional:      true,
		RiskCap:       1500,
		HalfLifeDays:  domain.DefaultHalfLifeDays,
		Features:      domain.DefaultFeaturesConfig(),
		Detector:      domain.DefaultDetectorConfig(),
		Scan:          domain.DefaultScanConfig(),
		Sim:           domain.DefaultSimConfig(),
		Filter:        DefaultFilterConfig(),
	}
}

// Engine es el orquestador del ciclo de análisis: fetch → análisis
// concurrente por mercado → correlaciones → señales → findings →
// estrategias → notify/persist.
type Engine struct {
	cfg      Config
	markets  ports.MarketProvider
	books    ports.BookProvider
	history  ports.HistoryProvider
	storage  ports.Storage
	notifier ports.Notifier
	builders strategy.Registry
	filter   *Filter

	// High findings del ciclo anterior para alertar solo los nuevos.
	previousHigh map[string]bool
}

// New crea un Engine con todas las dependencias inyectadas.
// storage puede ser nil (dry-run).
func New(
	cfg Config,
	markets ports.MarketProvider,
	books ports.BookProvider,
	history ports.HistoryProvider,
	storage ports.Storage,
	notifier ports.Notifier,
) *Engine {
	// El detector de divergencia re-alinea pares por su cuenta: tiene que
	// compartir el modo de alineado del resto del ciclo o con feeds
	// muestreados asíncronamente nunca verá puntos alineados.
	cfg.Detector.Align = cfg.Align
	return &Engine{
		cfg:          cfg,
		markets:      markets,
		books:        books,
		history:      history,
		storage:      storage,
		notifier:     notifier,
		builders:     strategy.NewRegistry(),
		filter:       NewFilter(cfg.Filter),
		previousHigh: make(map[string]bool),
	}
}

// Run ejecuta el loop de análisis hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"interval", e.cfg.ScanInterval,
		"dry_run", e.cfg.DryRun,
		"workers", e.cfg.Workers,
		"mode", e.cfg.StrategyMode,
	)

	if err := e.runCycle(ctx); err != nil {
		slog.Error("analysis cycle failed", "err", err)
		if e.cfg.DryRun {
			return err
		}
	}

	if e.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-ticker.C:
			if err := e.runCycle(ctx); err != nil {
				slog.Error("analysis cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve el report.
func (e *Engine) RunOnce(ctx context.Context) (domain.Report, error) {
	return e.cycle(ctx)
}

// runCycle ejecuta un ciclo completo y notifica/persiste los resultados.
func (e *Engine) runCycle(ctx context.Context) error {
	start := time.Now()

	report, err := e.cycle(ctx)
	if err != nil {
		return err
	}

	e.emitHighAlerts(report)

	if err := e.notifier.Notify(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if e.storage != nil {
		if err := e.storage.SaveReport(ctx, report); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	summary := report.Summary()
	slog.Info("analysis cycle complete",
		"markets", summary.Markets,
		"signals", summary.Signals,
		"findings", summary.Findings,
		"strategies", len(report.Strategies),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → analyze → detect → build y devuelve el report.
func (e *Engine) cycle(ctx context.Context) (domain.Report, error) {
	now := time.Now()
	report := domain.Report{RunID: uuid.New().String(), ScannedAt: now}

	markets, err := e.markets.FetchMarkets(ctx)
	if err != nil {
		return report, fmt.Errorf("engine.cycle: fetch markets: %w", err)
	}
	if len(markets) == 0 {
		return report, fmt.Errorf("engine.cycle: no markets: %w", domain.ErrUpstreamDataGap)
	}

	books, err := e.books.FetchOrderBooks(ctx, collectTokenIDs(markets))
	if err != nil {
		return report, fmt.Errorf("engine.cycle: fetch books: %w", err)
	}

	markets = enrichFromBooks(markets, books, now)

	histories, err := e.history.FetchPriceHistories(ctx, yesTokenIDs(markets))
	if err != nil {
		// Las series son opcionales: sin historia seguimos con features y
		// consistencia, adjuntando el gap a los slots afectados.
		slog.Warn("price history fetch failed, continuing without series", "err", err)
		histories = map[string][]domain.PricePoint{}
	}
	series := seriesByMarket(markets, histories)

	report.Results = e.analyzeMarketsConcurrent(ctx, markets, books, series)
	report.Edges = e.correlatePairsConcurrent(ctx, markets, series)

	e.attachDivergence(report.Results, report.Edges, series)
	e.filter.Apply(report.Results)

	report.Findings = domain.ScanConsistency(markets, now, e.cfg.Scan)
	report.Strategies = e.buildStrategies(report, markets, books)

	return report, nil
}

// emitHighAlerts loguea los findings High nuevos respecto al ciclo anterior.
func (e *Engine) emitHighAlerts(report domain.Report) {
	current := make(map[string]bool)
	for _, f := range report.HighFindings() {
		key := f.Title + "|" + f.Detail
		current[key] = true
		if !e.previousHigh[key] {
			slog.Warn("new high-severity finding", "title", f.Title, "detail", f.Detail)
		}
	}
	e.previousHigh = current
}

// collectTokenIDs junta los token IDs YES y NO de todos los mercados.
func collectTokenIDs(markets []domain.Market) []string {
	ids := make([]string, 0, len(markets)*2)
	for _, m := range markets {
		if m.YesTokenID != "" {
			ids = append(ids, m.YesTokenID)
		}
		if m.NoTokenID != "" {
			ids = append(ids, m.NoTokenID)
		}
	}
	return ids
}

// yesTokenIDs junta los token IDs YES, que son los que llevan la serie.
func yesTokenIDs(markets []domain.Market) []string {
	ids := make([]string, 0, len(markets))
	for _, m := range markets {
		if m.YesTokenID != "" {
			ids = append(ids, m.YesTokenID)
		}
	}
	return ids
}

// enrichFromBooks deriva mids, spread y frescura de los books recibidos.
// Produce una copia: los inputs nunca se mutan.
func enrichFromBooks(markets []domain.Market, books map[string]domain.OrderBook, now time.Time) []domain.Market {
	out := make([]domain.Market, len(markets))
	for i, m := range markets {
		if yes, ok := books[m.YesTokenID]; ok {
			if mid := yes.Midpoint(); mid > 0 {
				m.YesMid = mid
			}
			m.Spread = yes.Spread()
			m.UpdatedAt = yes.Timestamp
			if m.UpdatedAt.IsZero() {
				m.UpdatedAt = now
			}
		}
		if no, ok := books[m.NoTokenID]; ok {
			if mid := no.Midpoint(); mid > 0 {
				m.NoMid = mid
			}
		}
		if m.NoMid == 0 && m.YesMid > 0 {
			m.NoMid = 1 - m.YesMid
		}
		out[i] = m
	}
	return out
}

// seriesByMarket remapea las series token→market.
func seriesByMarket(markets []domain.Market, histories map[string][]domain.PricePoint) map[string][]domain.PricePoint {
	series := make(map[string][]domain.PricePoint, len(markets))
	for _, m := range markets {
		if h, ok := histories[m.YesTokenID]; ok && len(h) > 0 {
			series[m.ID] = h
		}
	}
	return series
}
