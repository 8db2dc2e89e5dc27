package domain

// execution.go — simulación greedy de ejecución de un leg contra un book
// real o contra profundidad sintética.
//
// La profundidad sintética es una función pura y determinista de (mid,
// liquidity): mismos inputs, mismo book. Cualquier jitter de display vive
// fuera del core.

import "math"

// Defaults del generador de profundidad sintética.
const (
	// DefaultSyntheticTick separa los niveles sintéticos del mid.
	DefaultSyntheticTick = 0.01
	// DefaultSizeGrowth multiplica el size de cada nivel sobre el anterior.
	DefaultSizeGrowth = 1.3
	// DefaultSyntheticLevels por lado.
	DefaultSyntheticLevels = 10
	// DefaultTouchFraction es la fracción de la liquidez del mercado
	// disponible en el primer nivel.
	DefaultTouchFraction = 0.05
)

// SimConfig parametriza la generación de profundidad sintética.
type SimConfig struct {
	Tick          float64
	SizeGrowth    float64
	Levels        int
	TouchFraction float64
}

// DefaultSimConfig devuelve la configuración estándar.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Tick:          DefaultSyntheticTick,
		SizeGrowth:    DefaultSizeGrowth,
		Levels:        DefaultSyntheticLevels,
		TouchFraction: DefaultTouchFraction,
	}
}

// FillResult es el resultado de simular la ejecución de un leg.
// Partial=true indica que la profundidad se agotó antes de llenar la orden;
// Filled refleja lo realmente ejecutado, nunca se silencia el shortfall.
type FillResult struct {
	Requested float64
	Filled    float64
	VWAP      float64 // coste / filled
	Mid       float64 // mid de referencia del book
	Slippage  float64 // VWAP - mid
	Levels    int     // niveles consumidos
	Partial   bool
	Synthetic bool // true si el book era generado
}

// SyntheticBook genera un book determinista a partir del mid y la liquidez
// del mercado. Los niveles se separan tick a tick del mid y crecen
// geométricamente en size, imitando la forma típica de un book de CLOB.
func SyntheticBook(tokenID string, mid, liquidity float64, cfg SimConfig) OrderBook {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultSyntheticTick
	}
	if cfg.SizeGrowth <= 0 {
		cfg.SizeGrowth = DefaultSizeGrowth
	}
	if cfg.Levels <= 0 {
		cfg.Levels = DefaultSyntheticLevels
	}
	if cfg.TouchFraction <= 0 {
		cfg.TouchFraction = DefaultTouchFraction
	}

	if mid <= 0 || mid >= 1 || liquidity <= 0 {
		return OrderBook{TokenID: tokenID}
	}

	baseShares := liquidity * cfg.TouchFraction / mid

	var bids, asks []BookEntry
	size := baseShares
	for i := 1; i <= cfg.Levels; i++ {
		offset := cfg.Tick * float64(i)
		if ask := mid + offset; ask < 1 {
			asks = append(asks, BookEntry{Price: ask, Size: size})
		}
		if bid := mid - offset; bid > 0 {
			bids = append(bids, BookEntry{Price: bid, Size: size})
		}
		size *= cfg.SizeGrowth
	}

	return OrderBook{TokenID: tokenID, Bids: bids, Asks: asks}
}

// SimulateFill ejecuta el walk greedy del leg contra el book dado: consume
// niveles en orden de distancia creciente al lado del leg hasta llenar las
// shares solicitadas o agotar la profundidad.
func SimulateFill(leg StrategyLeg, book OrderBook) FillResult {
	result := FillResult{Requested: leg.Shares, Mid: book.Midpoint()}
	if leg.Shares <= 0 {
		return result
	}

	// Una compra cruza contra los asks; una venta contra los bids.
	levels := book.Asks
	if leg.Side == LegSell {
		levels = book.Bids
	}

	remaining := leg.Shares
	cost := 0.0
	for _, lvl := range levels {
		if remaining <= 0 {
			break
		}
		fill := math.Min(lvl.Size, remaining)
		cost += fill * lvl.Price
		remaining -= fill
		result.Levels++
	}

	result.Filled = leg.Shares - remaining
	result.Partial = remaining > 0

	if result.Filled > 0 {
		result.VWAP = cost / result.Filled
		if result.Mid > 0 {
			result.Slippage = result.VWAP - result.Mid
		}
	}
	return result
}

// SimulateFillSynthetic simula el leg contra profundidad generada a partir
// del mid y la liquidez del mercado del leg. Para un leg NO usa la
// probabilidad complementaria como mid del token.
func SimulateFillSynthetic(leg StrategyLeg, cfg SimConfig) FillResult {
	mid := leg.Market.YesMid
	if leg.Outcome == OutcomeNo {
		mid = 1 - leg.Market.YesMid
		if leg.Market.NoMid > 0 {
			mid = leg.Market.NoMid
		}
	}

	book := SyntheticBook(leg.Market.ID, mid, leg.Market.Liquidity, cfg)
	result := SimulateFill(leg, book)
	result.Synthetic = true
	if result.Mid == 0 {
		result.Mid = mid
	}
	return result
}
