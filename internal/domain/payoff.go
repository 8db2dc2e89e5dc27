package domain

// payoff.go — proyección de payoff de una estrategia: barrido de EV sobre
// la probabilidad verdadera asumida, y decay temporal por half-life.

import "math"

// Defaults de PayoffConfig.
const (
	// DefaultEVStep produce 21 puntos en [0,1].
	DefaultEVStep = 0.05
	// DefaultHalfLifeDays para la proyección de decay.
	DefaultHalfLifeDays = 30.0
)

// DefaultDecayHorizons son los horizontes estándar de la proyección.
var DefaultDecayHorizons = []float64{7, 30, 90, 180}

// PayoffConfig parametriza el proyector.
type PayoffConfig struct {
	// EVStep es el paso del grid de pTrue (0 → DefaultEVStep).
	EVStep float64
	// Weight acopla los mercados no primarios al movimiento del primario.
	Weight float64
	// DecayHorizons en días (nil → DefaultDecayHorizons).
	DecayHorizons []float64
}

// ProjectEV barre pTrue de 0 a 1 y devuelve la curva de EV del portfolio.
// El leg primario usa pTrue directamente; los demás ajustan su mid por
// pAdj = clamp(mid + (pTrue - primaryMid) × w, 0, 1).
//
// En los extremos pTrue=0 y pTrue=1 el EV del leg primario es el valor de
// liquidación determinista, sin mezcla probabilística.
func ProjectEV(primary Market, legs []StrategyLeg, cfg PayoffConfig) []CurvePoint {
	step := cfg.EVStep
	if step <= 0 {
		step = DefaultEVStep
	}

	var curve []CurvePoint
	for pTrue := 0.0; pTrue <= 1.0+1e-9; pTrue += step {
		p := math.Min(pTrue, 1.0)
		var ev float64
		for _, leg := range legs {
			ev += legEV(leg, primary, p, cfg.Weight)
		}
		curve = append(curve, CurvePoint{PTrue: p, EV: ev})
	}
	return curve
}

// legEV calcula el valor esperado de un leg para un pTrue asumido.
func legEV(leg StrategyLeg, primary Market, pTrue, weight float64) float64 {
	pAdj := pTrue
	if leg.Market.ID != primary.ID {
		pAdj = clamp01(leg.Market.YesMid + (pTrue-primary.YesMid)*weight)
	}

	// EV de una compra: rama favorable paga (1 - precio), la desfavorable
	// pierde el precio pagado.
	var ev float64
	switch leg.Outcome {
	case OutcomeNo:
		ev = leg.Shares * ((1-pAdj)*(1-leg.Price) + pAdj*(-leg.Price))
	default:
		ev = leg.Shares * (pAdj*(1-leg.Price) + (1-pAdj)*(-leg.Price))
	}

	if leg.Side == LegSell {
		ev = -ev
	}
	return ev
}

// ProjectDecay proyecta la convergencia del precio hacia el target pStar
// bajo el modelo de half-life: el precio recorre la mitad de la distancia
// al target cada halfLifeDays.
func ProjectDecay(primary Market, legs []StrategyLeg, pStar, halfLifeDays float64, cfg PayoffConfig) []DecayRow {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	horizons := cfg.DecayHorizons
	if len(horizons) == 0 {
		horizons = DefaultDecayHorizons
	}

	rows := make([]DecayRow, 0, len(horizons))
	for _, days := range horizons {
		multiplier := math.Exp2(-days / halfLifeDays)

		var mtm float64
		for _, leg := range legs {
			mid := leg.Market.YesMid
			expected := pStar + (mid-pStar)*multiplier
			delta := leg.Shares * (expected - mid)
			if leg.Outcome == OutcomeNo {
				delta = -delta
			}
			if leg.Side == LegSell {
				delta = -delta
			}
			mtm += delta
		}

		rows = append(rows, DecayRow{
			Days:          days,
			Multiplier:    multiplier,
			ExpectedPrice: pStar + (primary.YesMid-pStar)*multiplier,
			MarkToMarket:  mtm,
		})
	}
	return rows
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
