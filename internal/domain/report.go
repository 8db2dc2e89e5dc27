package domain

import (
	"sort"
	"time"
)

// MarketResult es el slot de análisis de un mercado individual dentro de un
// ciclo. En operaciones batch un mercado que falla no aborta el ciclo: su
// error queda adjunto al slot y el resto continúa.
type MarketResult struct {
	Market   Market
	Features Features
	Signals  []Signal
	Err      error
}

// StrategyResult empareja una estrategia construida con la simulación de
// ejecución de cada leg.
type StrategyResult struct {
	Strategy Strategy
	Fills    []FillResult
}

// Report es el resultado completo de un ciclo de análisis.
type Report struct {
	RunID      string
	ScannedAt  time.Time
	Results    []MarketResult // en el orden de los mercados de entrada
	Edges      []CorrelationEdge
	Findings   []Finding
	Strategies []StrategyResult
}

// TopSignals devuelve todas las señales del report ordenadas por score
// descendente, con empates resueltos por market ID para orden determinista.
func (r Report) TopSignals() []Signal {
	var all []Signal
	for _, res := range r.Results {
		all = append(all, res.Signals...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].PrimaryMarket != all[j].PrimaryMarket {
			return all[i].PrimaryMarket < all[j].PrimaryMarket
		}
		return all[i].Type < all[j].Type
	})
	return all
}

// HighFindings devuelve solo los findings de severidad High.
func (r Report) HighFindings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			out = append(out, f)
		}
	}
	return out
}

// CycleSummary es el resumen ligero de un ciclo persistido.
type CycleSummary struct {
	RunID     string
	ScannedAt time.Time
	Markets   int
	Signals   int
	Findings  int
	TopScore  float64
}

// Summary construye el resumen ligero del report.
func (r Report) Summary() CycleSummary {
	s := CycleSummary{
		RunID:     r.RunID,
		ScannedAt: r.ScannedAt,
		Markets:   len(r.Results),
		Findings:  len(r.Findings),
	}
	for _, res := range r.Results {
		s.Signals += len(res.Signals)
		for _, sig := range res.Signals {
			if sig.Score > s.TopScore {
				s.TopScore = sig.Score
			}
		}
	}
	return s
}
