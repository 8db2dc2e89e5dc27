package domain

// strategy.go — value objects de estructuras de cobertura multi-leg.

// LegSide es el lado de la orden de un leg.
type LegSide string

const (
	LegBuy  LegSide = "buy"
	LegSell LegSide = "sell"
)

// Outcome es el resultado binario sobre el que opera un leg.
type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// StrategyLeg es una pata de la estructura: mercado, lado, outcome, precio
// de entrada y tamaño en shares.
type StrategyLeg struct {
	Market    Market
	Side      LegSide
	Outcome   Outcome
	Price     float64 // entrada, en [0,1]
	Shares    float64
	Rationale string
}

// Notional devuelve el capital comprometido por el leg.
func (l StrategyLeg) Notional() float64 {
	return l.Shares * l.Price
}

// CurvePoint es un punto de la curva de EV: (pTrue asumido, EV del portfolio).
type CurvePoint struct {
	PTrue float64
	EV    float64
}

// DecayRow es la proyección mark-to-market a un horizonte dado bajo el
// modelo de convergencia por half-life.
type DecayRow struct {
	Days          float64
	Multiplier    float64 // 2^(-days/halfLife)
	ExpectedPrice float64 // precio esperado del mercado primario
	MarkToMarket  float64 // P&L del portfolio al precio esperado
}

// Strategy es una estructura de cobertura construida: legs, curva de payoff
// y las decisiones estructurales tomadas al construirla.
type Strategy struct {
	ID          string
	Mode        string // bullish | bearish | relative
	Primary     Market
	Legs        []StrategyLeg
	PayoffCurve []CurvePoint
	Decay       []DecayRow
	Rationale   []string
}

// CapitalAtRisk devuelve el capital total comprometido en todos los legs.
func (s Strategy) CapitalAtRisk() float64 {
	var total float64
	for _, l := range s.Legs {
		total += l.Notional()
	}
	return total
}

// CapShares convierte el tamaño solicitado a shares y lo limita al
// presupuesto de riesgo: nunca más de riskCap/entryPrice.
//   - notional=true: shares = size / entryPrice
//   - notional=false: shares = size
func CapShares(size, entryPrice, riskCap float64, notional bool) float64 {
	if entryPrice <= 0 || size <= 0 {
		return 0
	}
	shares := size
	if notional {
		shares = size / entryPrice
	}
	if riskCap > 0 {
		if maxShares := riskCap / entryPrice; shares > maxShares {
			shares = maxShares
		}
	}
	return shares
}
