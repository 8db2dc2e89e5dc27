package domain

// features.go — extracción de features de microestructura de un orderbook.
//
// Todos los umbrales de interpretación y los tamaños de referencia de
// slippage son constantes con nombre, sobreescribibles vía FeaturesConfig.
// Los defaults reproducen el comportamiento documentado del analizador.

import (
	"fmt"
	"strings"
)

// Defaults de FeaturesConfig.
const (
	DefaultTopLevels = 10

	DefaultSlippageSmall  = 100.0
	DefaultSlippageMedium = 500.0
	DefaultSlippageLarge  = 1000.0

	// Umbrales de interpretación de spread (en % sobre best ask).
	SpreadVeryTightPct = 0.5
	SpreadTightPct     = 2.0
	SpreadModeratePct  = 5.0

	// Umbral de presión de imbalance (|imbalance| > 0.3).
	ImbalancePressure = 0.3

	// Umbrales de profundidad total (en unidades de token).
	DepthDeep     = 1000.0
	DepthAdequate = 100.0

	// Slippage medio/grande por encima de esto dispara el warning.
	SlippageWarn = 0.05
)

// FeaturesConfig parametriza la extracción de features.
type FeaturesConfig struct {
	// TopLevels limita los niveles por lado para display y slippage.
	TopLevels int
	// SlippageSizes son los tamaños de referencia small/medium/large.
	SlippageSizes [3]float64
}

// DefaultFeaturesConfig devuelve la configuración estándar.
func DefaultFeaturesConfig() FeaturesConfig {
	return FeaturesConfig{
		TopLevels:     DefaultTopLevels,
		SlippageSizes: [3]float64{DefaultSlippageSmall, DefaultSlippageMedium, DefaultSlippageLarge},
	}
}

// SlippageResult es el resultado del cálculo de slippage para un tamaño.
// Unfillable=true indica que el book no tiene liquidez suficiente: en ese
// caso AvgFillPrice y Slippage no son significativos y el caller debe
// ramificar sobre el flag, nunca leer el número.
type SlippageResult struct {
	Size         float64
	AvgFillPrice float64
	Slippage     float64 // (avgFill - bestAsk) / bestAsk
	Unfillable   bool
	Available    float64 // liquidez total disponible cuando Unfillable
}

// Features contiene las métricas de microestructura derivadas de un book.
type Features struct {
	TokenID       string
	BestBid       float64
	BestAsk       float64
	Spread        float64
	SpreadPercent float64
	BidDepth      float64
	AskDepth      float64
	TotalDepth    float64
	Imbalance     float64 // (bid-ask)/(bid+ask), en [-1,1]

	SlippageSmall  SlippageResult
	SlippageMedium SlippageResult
	SlippageLarge  SlippageResult

	TopBids []BookEntry
	TopAsks []BookEntry

	Interpretation string
}

// ExtractFeatures calcula las features de microestructura de un book
// normalizado. Un book vacío en uno o ambos lados no es error: las métricas
// degradan a 0/neutral y la interpretación omite las cláusulas afectadas.
func ExtractFeatures(ob OrderBook, cfg FeaturesConfig) Features {
	if cfg.TopLevels <= 0 {
		cfg.TopLevels = DefaultTopLevels
	}
	if cfg.SlippageSizes == [3]float64{} {
		cfg.SlippageSizes = [3]float64{DefaultSlippageSmall, DefaultSlippageMedium, DefaultSlippageLarge}
	}

	f := Features{
		TokenID:  ob.TokenID,
		BestBid:  ob.BestBid(),
		BestAsk:  ob.BestAsk(),
		BidDepth: ob.BidDepth(),
		AskDepth: ob.AskDepth(),
		TopBids:  capLevels(ob.Bids, cfg.TopLevels),
		TopAsks:  capLevels(ob.Asks, cfg.TopLevels),
	}
	f.TotalDepth = f.BidDepth + f.AskDepth

	if f.BestBid > 0 && f.BestAsk > 0 {
		f.Spread = f.BestAsk - f.BestBid
	}
	if f.BestAsk > 0 {
		f.SpreadPercent = f.Spread / f.BestAsk * 100
	}

	if f.TotalDepth > 0 {
		f.Imbalance = (f.BidDepth - f.AskDepth) / f.TotalDepth
	}

	f.SlippageSmall = EstimateSlippage(f.TopAsks, cfg.SlippageSizes[0])
	f.SlippageMedium = EstimateSlippage(f.TopAsks, cfg.SlippageSizes[1])
	f.SlippageLarge = EstimateSlippage(f.TopAsks, cfg.SlippageSizes[2])

	f.Interpretation = interpret(f)

	return f
}

// EstimateSlippage recorre los asks desde el mejor precio acumulando fills
// hasta cubrir size. Si la liquidez disponible es menor que size devuelve un
// resultado Unfillable en vez de un número parcial.
func EstimateSlippage(asks []BookEntry, size float64) SlippageResult {
	result := SlippageResult{Size: size}
	if size <= 0 || len(asks) == 0 {
		result.Unfillable = true
		return result
	}

	bestAsk := asks[0].Price
	remaining := size
	totalCost := 0.0
	available := 0.0

	for _, ask := range asks {
		available += ask.Size
		if remaining <= 0 {
			continue
		}
		fill := ask.Size
		if fill > remaining {
			fill = remaining
		}
		totalCost += fill * ask.Price
		remaining -= fill
	}

	if remaining > 0 {
		result.Unfillable = true
		result.Available = available
		return result
	}

	result.AvgFillPrice = totalCost / size
	if bestAsk > 0 {
		result.Slippage = (result.AvgFillPrice - bestAsk) / bestAsk
	}
	return result
}

// interpret construye la lectura cualitativa del book.
// Orden de cláusulas: spread, imbalance, profundidad, warning de slippage.
func interpret(f Features) string {
	var clauses []string

	if f.BestBid > 0 && f.BestAsk > 0 {
		if f.Spread < 0 {
			clauses = append(clauses, "crossed book (bid above ask)")
		} else {
			switch {
			case f.SpreadPercent < SpreadVeryTightPct:
				clauses = append(clauses, "very tight spread, high liquidity")
			case f.SpreadPercent < SpreadTightPct:
				clauses = append(clauses, "tight spread, good liquidity")
			case f.SpreadPercent < SpreadModeratePct:
				clauses = append(clauses, "moderate spread")
			default:
				clauses = append(clauses, "wide spread, low liquidity or high uncertainty")
			}
		}
	}

	if f.TotalDepth > 0 {
		switch {
		case f.Imbalance > ImbalancePressure:
			clauses = append(clauses, "bid pressure (buyers dominate)")
		case f.Imbalance < -ImbalancePressure:
			clauses = append(clauses, "ask pressure (sellers dominate)")
		default:
			clauses = append(clauses, "balanced book")
		}

		switch {
		case f.TotalDepth > DepthDeep:
			clauses = append(clauses, "deep book")
		case f.TotalDepth > DepthAdequate:
			clauses = append(clauses, "adequate depth")
		default:
			clauses = append(clauses, "shallow book")
		}
	}

	medHigh := !f.SlippageMedium.Unfillable && f.SlippageMedium.Slippage > SlippageWarn
	largeHigh := !f.SlippageLarge.Unfillable && f.SlippageLarge.Slippage > SlippageWarn
	if medHigh || largeHigh {
		clauses = append(clauses, fmt.Sprintf("high slippage above %.0f units", f.SlippageMedium.Size))
	}

	return strings.Join(clauses, "; ")
}

// capLevels devuelve como máximo n niveles sin mutar el original.
func capLevels(levels []BookEntry, n int) []BookEntry {
	if len(levels) <= n {
		return append([]BookEntry(nil), levels...)
	}
	return append([]BookEntry(nil), levels[:n]...)
}
