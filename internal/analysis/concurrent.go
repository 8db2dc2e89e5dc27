package analysis

// concurrent.go — worker pools para el análisis paralelo.
//
// El análisis por mercado y el de pares de correlación son embarazosamente
// paralelos: sin estado compartido, solo recolección de resultados. El
// orden de salida es estable (index-preserving para mercados, ordenado por
// par para edges) para que las aserciones de tests sean deterministas.

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/alejandrodnm/polylens/internal/domain"
)

// workers devuelve el número efectivo de workers.
func (e *Engine) workers() int {
	if e.cfg.Workers > 0 {
		return e.cfg.Workers
	}
	return runtime.NumCPU() * 2
}

// analyzeMarketsConcurrent ejecuta el análisis por mercado (features +
// señales de serie única) en un worker pool. Cada mercado escribe en su
// slot por índice: un mercado que falla no aborta el batch, su error queda
// adjunto al slot.
func (e *Engine) analyzeMarketsConcurrent(
	ctx context.Context,
	markets []domain.Market,
	books map[string]domain.OrderBook,
	series map[string][]domain.PricePoint,
) []domain.MarketResult {
	results := make([]domain.MarketResult, len(markets))

	indexCh := make(chan int, len(markets))
	for i := range markets {
		indexCh <- i
	}
	close(indexCh)

	var wg sync.WaitGroup
	for w := 0; w < e.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				if ctx.Err() != nil {
					return
				}
				results[i] = e.analyzeMarket(markets[i], books, series)
			}
		}()
	}
	wg.Wait()

	return results
}

// analyzeMarket calcula features y señales de serie única de un mercado.
func (e *Engine) analyzeMarket(
	m domain.Market,
	books map[string]domain.OrderBook,
	series map[string][]domain.PricePoint,
) domain.MarketResult {
	result := domain.MarketResult{Market: m}

	book, hasBook := books[m.YesTokenID]
	if hasBook {
		result.Features = domain.ExtractFeatures(book, e.cfg.Features)
	} else {
		result.Err = fmt.Errorf("market %s: no YES book: %w", m.ID, domain.ErrUpstreamDataGap)
	}

	history, hasSeries := series[m.ID]
	if !hasSeries {
		if result.Err == nil {
			result.Err = fmt.Errorf("market %s: no price history: %w", m.ID, domain.ErrUpstreamDataGap)
		}
		return result
	}

	if sig, ok, err := domain.DetectMomentum(m.ID, history, e.cfg.Detector); err != nil {
		result.Err = err
	} else if ok {
		result.Signals = append(result.Signals, sig)
	}

	if sig, ok, err := domain.DetectMeanReversion(m.ID, history, e.cfg.Detector); err != nil {
		if result.Err == nil {
			result.Err = err
		}
	} else if ok {
		result.Signals = append(result.Signals, sig)
	}

	return result
}

// correlatePairsConcurrent calcula el edge de correlación de cada par de
// mercados con serie disponible. La salida va ordenada por (TokenA, TokenB).
func (e *Engine) correlatePairsConcurrent(
	ctx context.Context,
	markets []domain.Market,
	series map[string][]domain.PricePoint,
) []domain.CorrelationEdge {
	ids := make([]string, 0, len(series))
	for _, m := range markets {
		if _, ok := series[m.ID]; ok {
			ids = append(ids, m.ID)
		}
	}
	sort.Strings(ids)

	type pair struct{ a, b string }
	var pairs []pair
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, pair{ids[i], ids[j]})
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	pairCh := make(chan pair, len(pairs))
	for _, p := range pairs {
		pairCh <- p
	}
	close(pairCh)

	edgeCh := make(chan domain.CorrelationEdge, len(pairs))
	var wg sync.WaitGroup
	for w := 0; w < e.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range pairCh {
				if ctx.Err() != nil {
					return
				}
				edge, err := domain.AnalyzeCorrelation(p.a, p.b, series[p.a], series[p.b], e.cfg.Align)
				if err != nil {
					// Pares sin puntos alineados suficientes se omiten.
					continue
				}
				edgeCh <- edge
			}
		}()
	}
	wg.Wait()
	close(edgeCh)

	edges := make([]domain.CorrelationEdge, 0, len(pairs))
	for edge := range edgeCh {
		edges = append(edges, edge)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].TokenA != edges[j].TokenA {
			return edges[i].TokenA < edges[j].TokenA
		}
		return edges[i].TokenB < edges[j].TokenB
	})
	return edges
}

// attachDivergence añade las señales de divergencia de pares a cada slot.
// El detector ya filtra los edges por correlación mínima, así que recibe la
// lista completa del ciclo.
func (e *Engine) attachDivergence(
	results []domain.MarketResult,
	edges []domain.CorrelationEdge,
	series map[string][]domain.PricePoint,
) {
	for i := range results {
		m := results[i].Market
		primary, ok := series[m.ID]
		if !ok {
			continue
		}
		signals := domain.DetectDivergence(m.ID, primary, series, edges, e.cfg.Detector)
		results[i].Signals = append(results[i].Signals, signals...)
	}
}
