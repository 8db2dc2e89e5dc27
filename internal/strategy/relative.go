package strategy

import (
	"fmt"

	"github.com/alejandrodnm/polylens/internal/domain"
)

// Relative construye el par de valor relativo: compra NO en el primario
// (fade) y compra YES en un candidato alternativo, con el leg alternativo
// escalado por el peso de correlación w.
//
// Para el alternativo preferimos un mercado distinto del mismo cluster con
// mayor liquidez; sin cluster compartido cae al candidato más líquido.
type Relative struct{}

func (Relative) Name() string { return "relative" }

func (Relative) Build(req Request) (domain.Strategy, error) {
	fade, rationale, err := sizedLeg(req, domain.OutcomeNo, hedgePrice(req.Primary, domain.OutcomeNo),
		"fade primary via NO: relative value against a correlated market")
	if err != nil {
		return domain.Strategy{}, err
	}

	alt, source, ok := pickAlternative(req)
	if !ok {
		// Sin alternativa el resultado es un solo leg; finalize intentará
		// el auto-hedge con lo que haya.
		return finalize(domain.Strategy{
			Mode:      "relative",
			Primary:   req.Primary,
			Legs:      []domain.StrategyLeg{fade},
			Rationale: rationale,
		}, req), nil
	}

	if alt.YesMid <= 0 {
		return domain.Strategy{}, fmt.Errorf("strategy: alternative %s has no YES mid: %w",
			alt.ID, domain.ErrUpstreamDataGap)
	}

	long := domain.StrategyLeg{
		Market:    alt,
		Side:      domain.LegBuy,
		Outcome:   domain.OutcomeYes,
		Price:     alt.YesMid,
		Shares:    fade.Shares * req.weight(),
		Rationale: "long YES on alternative: capture the relative repricing",
	}
	rationale = append(rationale,
		fmt.Sprintf("alternative selected from %s: %s", source, alt.Label(40)))

	return finalize(domain.Strategy{
		Mode:      "relative",
		Primary:   req.Primary,
		Legs:      []domain.StrategyLeg{fade, long},
		Rationale: rationale,
	}, req), nil
}

// pickAlternative elige el candidato para el leg largo y reporta la fuente
// de la selección para el rationale.
func pickAlternative(req Request) (domain.Market, string, bool) {
	var best domain.Market
	found := false
	sameCluster := false

	for _, c := range req.Candidates {
		if c.ID == req.Primary.ID {
			continue
		}
		inCluster := req.Primary.ClusterKey != "" && c.ClusterKey == req.Primary.ClusterKey

		switch {
		case inCluster && !sameCluster:
			// Primer candidato del cluster desbanca a cualquiera de fuera.
			best, found, sameCluster = c, true, true
		case inCluster == sameCluster:
			if !found || c.Liquidity > best.Liquidity {
				best, found = c, true
			}
		}
	}

	if !found {
		return domain.Market{}, "", false
	}
	source := "candidate set (most liquid)"
	if sameCluster {
		source = "same cluster (higher liquidity)"
	}
	return best, source, true
}
