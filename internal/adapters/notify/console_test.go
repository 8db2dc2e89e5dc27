package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polylens/internal/domain"
)

func sampleReport() domain.Report {
	return domain.Report{
		RunID:     "0f8fad5b-d9cb-469f-a165-70867728950e",
		ScannedAt: time.Date(2026, 1, 10, 12, 30, 0, 0, time.UTC),
		Results: []domain.MarketResult{
			{
				Market: domain.Market{ID: "mkt-a", Question: "Will A happen?"},
				Signals: []domain.Signal{
					{Type: domain.SignalMomentum, PrimaryMarket: "mkt-a", Score: 0.42, Confidence: 0.7, Description: "upward momentum of 42.0% over last 10 points"},
				},
			},
		},
		Findings: []domain.Finding{
			{Severity: domain.SeverityHigh, Title: "overround", Detail: "group sums to 1.2"},
		},
		Strategies: []domain.StrategyResult{{
			Strategy: domain.Strategy{
				ID:      "a1b2c3d4-0000-0000-0000-000000000000",
				Mode:    "relative",
				Primary: domain.Market{ID: "mkt-a", Question: "Will A happen?", YesMid: 0.60},
				Legs: []domain.StrategyLeg{
					{Market: domain.Market{ID: "mkt-a", Question: "Will A happen?"}, Side: domain.LegBuy, Outcome: domain.OutcomeNo, Price: 0.40, Shares: 2500},
				},
				PayoffCurve: []domain.CurvePoint{{PTrue: 0, EV: 1500}, {PTrue: 1, EV: -1000}},
				Decay:       []domain.DecayRow{{Days: 30, Multiplier: 0.5, ExpectedPrice: 0.75, MarkToMarket: 15}},
				Rationale:   []string{"fade primary via NO"},
			},
			Fills: []domain.FillResult{{Requested: 2500, Filled: 2500, VWAP: 0.41, Mid: 0.40, Slippage: 0.01}},
		}},
	}
}

func TestNotify_CompactIsSingleLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	err := c.Notify(context.Background(), sampleReport())
	assert.NoError(t, err)

	out := strings.TrimRight(buf.String(), "\n")
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "1 mkts")
	assert.Contains(t, out, "sig:1")
	assert.Contains(t, out, "!overround")
}

func TestNotify_FullContainsSignalsTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	err := c.Notify(context.Background(), sampleReport())
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "momentum")
	assert.Contains(t, out, "0.420")
	assert.Contains(t, out, "CONSISTENCY")
	assert.Contains(t, out, "overround")
}

func TestNotify_FullContainsStrategySection(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	err := c.Notify(context.Background(), sampleReport())
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "STRATEGY")
	assert.Contains(t, out, "relative")
	assert.Contains(t, out, "capital at risk: $1000.00")
	assert.Contains(t, out, "decay")
	assert.Contains(t, out, "payoff")
}

func TestNotify_EmptyReportCompact(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	err := c.Notify(context.Background(), domain.Report{ScannedAt: time.Now()})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "0 mkts")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "-", shortID("", 8))
	assert.Equal(t, "abc", shortID("abc", 8))
	assert.Equal(t, "abcdefgh…", shortID("abcdefghijk", 8))
}

func TestShortID_MultibyteSafe(t *testing.T) {
	// El corte cae en medio de "ñ" si se trunca por bytes.
	out := shortID("niño-año-café", 6)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "niño-a…", out)
}

func TestTruncate_MultibyteSafe(t *testing.T) {
	out := truncate("divergió 2.5x del mercado correlacionado", 12)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "divergió 2.…", out)
	// Los strings cortos no se tocan.
	assert.Equal(t, "café", truncate("café", 4))
}
