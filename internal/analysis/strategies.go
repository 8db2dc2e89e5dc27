package analysis

// strategies.go — construcción de estrategias para los mercados con las
// mejores señales del ciclo, con simulación de ejecución por leg.

import (
	"log/slog"

	"github.com/alejandrodnm/polylens/internal/domain"
	"github.com/alejandrodnm/polylens/internal/strategy"
)

// buildStrategies construye hasta MaxStrategies estrategias para los
// mercados con señales de mayor score, y simula la ejecución de cada leg
// contra el book real cuando existe o contra profundidad sintética.
func (e *Engine) buildStrategies(
	report domain.Report,
	markets []domain.Market,
	books map[string]domain.OrderBook,
) []domain.StrategyResult {
	maxStrategies := e.cfg.MaxStrategies
	if maxStrategies <= 0 {
		return nil
	}

	builder, ok := e.builders.Get(e.cfg.StrategyMode)
	if !ok {
		slog.Warn("unknown strategy mode, skipping strategies", "mode", e.cfg.StrategyMode)
		return nil
	}

	byID := make(map[string]domain.Market, len(markets))
	for _, m := range markets {
		byID[m.ID] = m
	}

	var out []domain.StrategyResult
	seen := make(map[string]bool)
	for _, sig := range report.TopSignals() {
		if len(out) >= maxStrategies {
			break
		}
		if seen[sig.PrimaryMarket] {
			continue
		}
		seen[sig.PrimaryMarket] = true

		primary, ok := byID[sig.PrimaryMarket]
		if !ok {
			continue
		}

		// Con Weight=0 BuildBest barre los pesos estándar de cobertura.
		s, err := strategy.BuildBest(builder, strategy.Request{
			Primary:      primary,
			Candidates:   candidatesFor(primary, markets),
			Weight:       e.cfg.Weight,
			Notional:     e.cfg.Notional,
			Size:         e.cfg.Size,
			RiskCap:      e.cfg.RiskCap,
			HalfLifeDays: e.cfg.HalfLifeDays,
			Payoff:       e.cfg.Payoff,
		})
		if err != nil {
			slog.Debug("strategy build failed", "market", primary.ID, "err", err)
			continue
		}

		out = append(out, domain.StrategyResult{
			Strategy: s,
			Fills:    e.simulateLegs(s, books),
		})
	}
	return out
}

// candidatesFor devuelve los candidatos para el mercado primario: los del
// mismo cluster si existe, o el resto de mercados del ciclo.
func candidatesFor(primary domain.Market, markets []domain.Market) []domain.Market {
	var cluster, others []domain.Market
	for _, m := range markets {
		if m.ID == primary.ID {
			continue
		}
		if primary.ClusterKey != "" && m.ClusterKey == primary.ClusterKey {
			cluster = append(cluster, m)
		}
		others = append(others, m)
	}
	if len(cluster) > 0 {
		return cluster
	}
	return others
}

// simulateLegs simula la ejecución de cada leg: book real del token del
// outcome si lo tenemos, profundidad sintética si no.
func (e *Engine) simulateLegs(s domain.Strategy, books map[string]domain.OrderBook) []domain.FillResult {
	fills := make([]domain.FillResult, 0, len(s.Legs))
	for _, leg := range s.Legs {
		tokenID := leg.Market.YesTokenID
		if leg.Outcome == domain.OutcomeNo {
			tokenID = leg.Market.NoTokenID
		}

		if book, ok := books[tokenID]; ok && (len(book.Asks) > 0 || len(book.Bids) > 0) {
			fills = append(fills, domain.SimulateFill(leg, book))
			continue
		}
		fills = append(fills, domain.SimulateFillSynthetic(leg, e.cfg.Sim))
	}
	return fills
}
