package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polylens/internal/domain"
)

func primaryMarket() domain.Market {
	return domain.Market{
		ID:         "primary",
		Question:   "Will the incumbent win?",
		YesMid:     0.60,
		NoMid:      0.40,
		Liquidity:  200000,
		ClusterKey: "election",
	}
}

func candidateMarkets() []domain.Market {
	return []domain.Market{
		{ID: "alt-a", Question: "Will candidate A win?", YesMid: 0.25, NoMid: 0.75, Liquidity: 80000, ClusterKey: "election"},
		{ID: "alt-b", Question: "Will candidate B win?", YesMid: 0.15, NoMid: 0.85, Liquidity: 150000, ClusterKey: "election"},
		{ID: "other", Question: "Unrelated market", YesMid: 0.90, NoMid: 0.10, Liquidity: 500000, ClusterKey: "sports"},
	}
}

func baseRequest() Request {
	return Request{
		Primary:    primaryMarket(),
		Candidates: candidateMarkets(),
		Weight:     0.5,
		Notional:   true,
		Size:       1000,
		RiskCap:    1500,
	}
}

func TestRegistry_HasThreeModes(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"bullish", "bearish", "relative"} {
		_, ok := r.Get(name)
		assert.True(t, ok, name)
	}
	_, ok := r.Get("unknown")
	assert.False(t, ok)
}

// --- Bullish ---

func TestBullish_PrimaryLegLongYes(t *testing.T) {
	s, err := Bullish{}.Build(baseRequest())
	assert.NoError(t, err)
	assert.Equal(t, "bullish", s.Mode)
	assert.NotEmpty(t, s.ID)

	leg := s.Legs[0]
	assert.Equal(t, domain.LegBuy, leg.Side)
	assert.Equal(t, domain.OutcomeYes, leg.Outcome)
	assert.Equal(t, 0.60, leg.Price)
	// $1000 notional / 0.60 = 1666.7 shares, bajo el cap de 1500/0.60 = 2500
	assert.InDelta(t, 1666.67, leg.Shares, 0.01)
}

func TestBullish_AutoHedgeAppendsSecondLeg(t *testing.T) {
	s, err := Bullish{}.Build(baseRequest())
	assert.NoError(t, err)
	assert.Len(t, s.Legs, 2)

	hedge := s.Legs[1]
	// El candidato con mayor YES mid es "other" (0.90); outcome opuesto (NO).
	assert.Equal(t, "other", hedge.Market.ID)
	assert.Equal(t, domain.OutcomeNo, hedge.Outcome)
	// shares = primario × w = 1666.7 × 0.5
	assert.InDelta(t, s.Legs[0].Shares*0.5, hedge.Shares, 1e-9)
}

func TestBullish_NoCandidatesSingleLeg(t *testing.T) {
	req := baseRequest()
	req.Candidates = nil

	s, err := Bullish{}.Build(req)
	assert.NoError(t, err)
	assert.Len(t, s.Legs, 1)
}

func TestBullish_ZeroMidFails(t *testing.T) {
	req := baseRequest()
	req.Primary.YesMid = 0

	_, err := Bullish{}.Build(req)
	assert.ErrorIs(t, err, domain.ErrUpstreamDataGap)
}

func TestBullish_RiskCapClampsShares(t *testing.T) {
	req := baseRequest()
	req.Size = 3000 // 5000 shares sin cap

	s, err := Bullish{}.Build(req)
	assert.NoError(t, err)
	// cap = 1500/0.60 = 2500 shares
	assert.InDelta(t, 2500.0, s.Legs[0].Shares, 1e-9)
}

// --- Bearish ---

func TestBearish_PrimaryLegLongNo(t *testing.T) {
	s, err := Bearish{}.Build(baseRequest())
	assert.NoError(t, err)
	assert.Equal(t, "bearish", s.Mode)

	leg := s.Legs[0]
	assert.Equal(t, domain.OutcomeNo, leg.Outcome)
	assert.Equal(t, 0.40, leg.Price)
}

func TestBearish_HedgeUsesYesOutcome(t *testing.T) {
	s, err := Bearish{}.Build(baseRequest())
	assert.NoError(t, err)
	assert.Len(t, s.Legs, 2)
	// Primario NO → hedge con el outcome opuesto (YES).
	assert.Equal(t, domain.OutcomeYes, s.Legs[1].Outcome)
}

func TestBearish_DerivesNoMidFromComplement(t *testing.T) {
	req := baseRequest()
	req.Primary.NoMid = 0 // metadata sin NO mid → 1 - 0.60

	s, err := Bearish{}.Build(req)
	assert.NoError(t, err)
	assert.InDelta(t, 0.40, s.Legs[0].Price, 1e-9)
}

// --- Relative ---

func TestRelative_FadePlusAlternative(t *testing.T) {
	s, err := Relative{}.Build(baseRequest())
	assert.NoError(t, err)
	assert.Equal(t, "relative", s.Mode)
	assert.Len(t, s.Legs, 2)

	fade, long := s.Legs[0], s.Legs[1]
	assert.Equal(t, domain.OutcomeNo, fade.Outcome)
	assert.Equal(t, "primary", fade.Market.ID)
	assert.Equal(t, domain.OutcomeYes, long.Outcome)
	// Del mismo cluster gana el de mayor liquidez: alt-b (150k > 80k).
	assert.Equal(t, "alt-b", long.Market.ID)
	assert.InDelta(t, fade.Shares*0.5, long.Shares, 1e-9)
}

func TestRelative_FallsBackToMostLiquidCandidate(t *testing.T) {
	req := baseRequest()
	req.Primary.ClusterKey = "isolated"

	s, err := Relative{}.Build(req)
	assert.NoError(t, err)
	// Sin cluster compartido: el candidato más líquido es "other" (500k).
	assert.Equal(t, "other", s.Legs[1].Market.ID)
}

func TestRelative_CurveAndDecayPopulated(t *testing.T) {
	s, err := Relative{}.Build(baseRequest())
	assert.NoError(t, err)
	assert.Len(t, s.PayoffCurve, 21)
	assert.Len(t, s.Decay, 4)
}

func TestRequest_WeightDefaults(t *testing.T) {
	assert.Equal(t, DefaultWeight, Request{}.weight())
	assert.Equal(t, DefaultWeight, Request{Weight: 1.5}.weight())
	assert.Equal(t, 0.3, Request{Weight: 0.3}.weight())
}

// --- BuildBest ---

func TestBuildBest_SweepsStandardWeightsWhenUnset(t *testing.T) {
	req := baseRequest()
	req.Weight = 0

	s, err := BuildBest(Relative{}, req)
	assert.NoError(t, err)
	assert.Len(t, s.Legs, 2)

	// El peor caso de la curva es pTrue=1: EV = -1000 + 1000w², que mejora
	// con el mayor peso del barrido → gana w=0.7.
	ratio := s.Legs[1].Shares / s.Legs[0].Shares
	assert.InDelta(t, 0.7, ratio, 1e-9)
	assert.Contains(t, strings.Join(s.Rationale, " | "), "standard sweep")
}

func TestBuildBest_ExplicitWeightSkipsSweep(t *testing.T) {
	s, err := BuildBest(Relative{}, baseRequest())
	assert.NoError(t, err)

	ratio := s.Legs[1].Shares / s.Legs[0].Shares
	assert.InDelta(t, 0.5, ratio, 1e-9)
	assert.NotContains(t, strings.Join(s.Rationale, " | "), "standard sweep")
}

func TestBuildBest_PropagatesBuildError(t *testing.T) {
	req := baseRequest()
	req.Weight = 0
	req.Primary.YesMid = 0
	req.Primary.NoMid = 0

	_, err := BuildBest(Relative{}, req)
	assert.ErrorIs(t, err, domain.ErrUpstreamDataGap)
}
