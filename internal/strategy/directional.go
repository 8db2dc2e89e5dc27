package strategy

import "github.com/alejandrodnm/polylens/internal/domain"

// Bullish construye un solo leg: compra YES en el primario a su mid.
// Si hay candidatos, finalize añade automáticamente el par de cobertura.
type Bullish struct{}

func (Bullish) Name() string { return "bullish" }

func (Bullish) Build(req Request) (domain.Strategy, error) {
	leg, rationale, err := sizedLeg(req, domain.OutcomeYes, req.Primary.YesMid,
		"long YES on primary: express upside on the event")
	if err != nil {
		return domain.Strategy{}, err
	}

	return finalize(domain.Strategy{
		Mode:      "bullish",
		Primary:   req.Primary,
		Legs:      []domain.StrategyLeg{leg},
		Rationale: rationale,
	}, req), nil
}

// Bearish construye un solo leg: compra NO en el primario a su mid.
type Bearish struct{}

func (Bearish) Name() string { return "bearish" }

func (Bearish) Build(req Request) (domain.Strategy, error) {
	leg, rationale, err := sizedLeg(req, domain.OutcomeNo, hedgePrice(req.Primary, domain.OutcomeNo),
		"long NO on primary: fade the event")
	if err != nil {
		return domain.Strategy{}, err
	}

	return finalize(domain.Strategy{
		Mode:      "bearish",
		Primary:   req.Primary,
		Legs:      []domain.StrategyLeg{leg},
		Rationale: rationale,
	}, req), nil
}
