package strategy

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polylens/internal/domain"
)

// Pesos de correlación estándar que barre BuildBest cuando la request no
// fija peso.
var DefaultWeights = []float64{0.3, 0.5, 0.7}

// DefaultWeight se usa cuando el caller no especifica peso y no hay barrido.
const DefaultWeight = 0.5

// Builder define el contrato para construir estructuras de cobertura.
// Cada modo (bullish, bearish, relative) encapsula una lógica distinta.
type Builder interface {
	// Name devuelve el identificador único del modo.
	Name() string

	// Build construye la estructura para la request dada. Devuelve error si
	// los datos del mercado primario son insuficientes para dimensionar.
	Build(req Request) (domain.Strategy, error)
}

// Request contiene los inputs para construir una estrategia.
type Request struct {
	Primary    domain.Market
	Candidates []domain.Market

	// Weight es el peso de correlación w ∈ (0,1) del leg de cobertura.
	Weight float64
	// Notional interpreta Size como USDC; si es false, Size son shares.
	Notional bool
	Size     float64
	// RiskCap es el capital máximo en riesgo; las shares nunca exceden
	// RiskCap / entryPrice.
	RiskCap float64

	// PStar y HalfLifeDays alimentan la proyección de decay.
	PStar        float64
	HalfLifeDays float64

	Payoff domain.PayoffConfig
}

// weight devuelve el peso efectivo de la request.
func (r Request) weight() float64 {
	if r.Weight > 0 && r.Weight < 1 {
		return r.Weight
	}
	return DefaultWeight
}

// Registry mantiene los builders disponibles indexados por nombre.
type Registry map[string]Builder

// NewRegistry crea un registry con los tres modos estándar.
func NewRegistry() Registry {
	r := make(Registry)
	r.Register(Bullish{})
	r.Register(Bearish{})
	r.Register(Relative{})
	return r
}

// Register añade un builder al registry.
func (r Registry) Register(b Builder) {
	r[b.Name()] = b
}

// Get devuelve el builder por nombre.
func (r Registry) Get(name string) (Builder, bool) {
	b, ok := r[name]
	return b, ok
}

// BuildBest construye la estrategia con el builder dado. Si la request fija
// un peso válido construye una sola vez; si no, barre DefaultWeights y se
// queda con la estructura de mejor EV en el peor caso de la curva. Los
// empates conservan el peso menor.
func BuildBest(b Builder, req Request) (domain.Strategy, error) {
	if req.Weight > 0 && req.Weight < 1 {
		return b.Build(req)
	}

	var best domain.Strategy
	bestFloor := math.Inf(-1)
	bestWeight := 0.0
	for _, w := range DefaultWeights {
		req.Weight = w
		s, err := b.Build(req)
		if err != nil {
			// El error no depende del peso: con un peso falla, fallan todos.
			return domain.Strategy{}, err
		}
		floor := curveFloor(s.PayoffCurve)
		if floor > bestFloor {
			best = s
			bestFloor = floor
			bestWeight = w
		}
	}

	best.Rationale = append(best.Rationale,
		fmt.Sprintf("hedge weight %.1f chosen from standard sweep (worst-case EV $%.0f)", bestWeight, bestFloor))
	return best, nil
}

// curveFloor devuelve el EV mínimo de la curva, -Inf si está vacía.
func curveFloor(curve []domain.CurvePoint) float64 {
	floor := math.Inf(1)
	if len(curve) == 0 {
		return math.Inf(-1)
	}
	for _, p := range curve {
		if p.EV < floor {
			floor = p.EV
		}
	}
	return floor
}

// finalize completa la estrategia: auto-hedge si quedó un solo leg con
// candidatos disponibles, curva de payoff y proyección de decay.
func finalize(s domain.Strategy, req Request) domain.Strategy {
	s.ID = uuid.New().String()

	if len(s.Legs) == 1 && len(req.Candidates) > 0 {
		if hedge, ok := autoHedgeLeg(s.Legs[0], req); ok {
			s.Legs = append(s.Legs, hedge)
			s.Rationale = append(s.Rationale,
				fmt.Sprintf("auto-hedged with %s (highest YES mid among candidates), sized at %.0f%% of primary",
					hedge.Market.Label(40), req.weight()*100))
		}
	}

	cfg := req.Payoff
	cfg.Weight = req.weight()
	s.PayoffCurve = domain.ProjectEV(s.Primary, s.Legs, cfg)

	pStar := req.PStar
	if pStar <= 0 {
		pStar = s.Primary.YesMid
	}
	s.Decay = domain.ProjectDecay(s.Primary, s.Legs, pStar, req.HalfLifeDays, cfg)

	return s
}

// autoHedgeLeg construye el segundo leg del par de cobertura: el candidato
// con mayor YES mid, con el outcome opuesto al leg primario, dimensionado a
// shares × w.
func autoHedgeLeg(primary domain.StrategyLeg, req Request) (domain.StrategyLeg, bool) {
	var best domain.Market
	found := false
	for _, c := range req.Candidates {
		if c.ID == primary.Market.ID {
			continue
		}
		if !found || c.YesMid > best.YesMid {
			best = c
			found = true
		}
	}
	if !found {
		return domain.StrategyLeg{}, false
	}

	outcome := domain.OutcomeNo
	price := hedgePrice(best, domain.OutcomeNo)
	if primary.Outcome == domain.OutcomeNo {
		outcome = domain.OutcomeYes
		price = best.YesMid
	}
	if price <= 0 {
		return domain.StrategyLeg{}, false
	}

	return domain.StrategyLeg{
		Market:    best,
		Side:      domain.LegBuy,
		Outcome:   outcome,
		Price:     price,
		Shares:    primary.Shares * req.weight(),
		Rationale: "hedge pair against primary exposure",
	}, true
}

// hedgePrice devuelve el mid del outcome pedido, derivando el NO como
// 1 - yesMid cuando la metadata no lo trae.
func hedgePrice(m domain.Market, outcome domain.Outcome) float64 {
	if outcome == domain.OutcomeYes {
		return m.YesMid
	}
	if m.NoMid > 0 {
		return m.NoMid
	}
	if m.YesMid > 0 && m.YesMid < 1 {
		return 1 - m.YesMid
	}
	return 0
}

// sizedLeg dimensiona el leg primario aplicando el modo de sizing y el
// risk cap, y anota el rationale de la decisión.
func sizedLeg(req Request, outcome domain.Outcome, price float64, objective string) (domain.StrategyLeg, []string, error) {
	if price <= 0 {
		return domain.StrategyLeg{}, nil, fmt.Errorf("strategy: primary %s has no %s mid: %w",
			req.Primary.ID, outcome, domain.ErrUpstreamDataGap)
	}

	shares := domain.CapShares(req.Size, price, req.RiskCap, req.Notional)
	if shares <= 0 {
		return domain.StrategyLeg{}, nil, fmt.Errorf("strategy: size %.2f at price %.3f yields no shares: %w",
			req.Size, price, domain.ErrInvalidInput)
	}

	rationale := []string{objective}
	if req.RiskCap > 0 && shares*price >= req.RiskCap-1e-9 {
		rationale = append(rationale,
			fmt.Sprintf("sized to risk cap: %.0f shares = $%.0f / %.2f entry", shares, req.RiskCap, price))
	}

	leg := domain.StrategyLeg{
		Market:    req.Primary,
		Side:      domain.LegBuy,
		Outcome:   outcome,
		Price:     price,
		Shares:    shares,
		Rationale: objective,
	}
	return leg, rationale, nil
}
