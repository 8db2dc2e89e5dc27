package domain

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectMomentum_UpwardTrend(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// (0.60-0.40)/0.40 = 0.50 de momentum, supera el cutoff de 0.1
	series := seriesAt(base, 0.40, 0.45, 0.50, 0.55, 0.60)

	sig, ok, err := DetectMomentum("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, SignalMomentum, sig.Type)
	assert.InDelta(t, 0.50, sig.Score, 1e-9)
	assert.Equal(t, DefaultMomentumConfidence, sig.Confidence)
	assert.Contains(t, sig.Description, "upward")
}

func TestDetectMomentum_DownwardTrend(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	series := seriesAt(base, 0.60, 0.55, 0.50, 0.45, 0.40)

	sig, ok, err := DetectMomentum("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, sig.Description, "downward")
}

func TestDetectMomentum_FlatSeriesNoSignal(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// (0.51-0.50)/0.50 = 0.02, bajo el cutoff de 0.1
	series := seriesAt(base, 0.50, 0.505, 0.51)

	_, ok, err := DetectMomentum("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDetectMomentum_WindowLimitsLookback(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// Los primeros puntos quedan fuera de la ventana de 10: solo cuentan los
	// últimos 10, que son planos.
	prices := []float64{0.10, 0.90}
	for i := 0; i < 10; i++ {
		prices = append(prices, 0.50)
	}
	series := seriesAt(base, prices...)

	_, ok, err := DetectMomentum("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDetectMomentum_InsufficientData(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	_, _, err := DetectMomentum("mkt", seriesAt(base, 0.50), DefaultDetectorConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDetectMomentum_ZeroBasePrice(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	_, _, err := DetectMomentum("mkt", seriesAt(base, 0.0, 0.50), DefaultDetectorConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// --- DetectMeanReversion ---

func TestDetectMeanReversion_Outlier(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// Serie estable en 0.50 con salto final a 0.80:
	// mean=0.55, σ poblacional≈0.112 → z≈2.24, supera el cutoff 1.5
	series := seriesAt(base, 0.50, 0.50, 0.50, 0.50, 0.50, 0.80)

	sig, ok, err := DetectMeanReversion("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, SignalMeanReversion, sig.Type)
	assert.InDelta(t, 2.236, sig.Score*3, 0.01) // score = min(1, |z|/3)
	assert.Equal(t, DefaultMeanRevConfidence, sig.Confidence)
	assert.Contains(t, sig.Description, "above")
}

func TestDetectMeanReversion_ScoreCappedAtOne(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// Outlier extremo: |z| > 3 → score clampado a 1
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 0.50
	}
	prices[10] = 0.51 // algo de varianza
	prices[29] = 0.99

	sig, ok, err := DetectMeanReversion("mkt", seriesAt(base, prices...), DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, sig.Score)
}

func TestDetectMeanReversion_WithinBandNoSignal(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	series := seriesAt(base, 0.48, 0.52, 0.49, 0.51, 0.50)

	_, ok, err := DetectMeanReversion("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDetectMeanReversion_ConstantSeriesNoSignalNoError(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// σ=0 no es error: simplemente no hay señal posible.
	series := seriesAt(base, 0.50, 0.50, 0.50)

	_, ok, err := DetectMeanReversion("mkt", series, DefaultDetectorConfig())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDetectMeanReversion_RandomWalkFiresIffZExceedsCutoff(t *testing.T) {
	// Paseos aleatorios con seed fijo: el detector debe disparar exactamente
	// cuando el |z| poblacional del último punto supera el cutoff.
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cfg := DefaultDetectorConfig()

	fired := 0
	for trial := 0; trial < 100; trial++ {
		n := 10 + rng.Intn(40)
		prices := make([]float64, n)
		price := 0.50
		for i := range prices {
			price += (rng.Float64() - 0.5) * 0.08
			if price < 0.01 {
				price = 0.01
			}
			if price > 0.99 {
				price = 0.99
			}
			prices[i] = price
		}

		var sum float64
		for _, p := range prices {
			sum += p
		}
		mean := sum / float64(n)
		var sq float64
		for _, p := range prices {
			sq += (p - mean) * (p - mean)
		}
		stddev := math.Sqrt(sq / float64(n))

		sig, ok, err := DetectMeanReversion("mkt", seriesAt(base, prices...), cfg)
		assert.NoError(t, err, "trial %d", trial)
		if stddev == 0 {
			assert.False(t, ok, "trial %d: flat walk cannot signal", trial)
			continue
		}

		z := (prices[n-1] - mean) / stddev
		assert.Equal(t, math.Abs(z) > cfg.ZScoreCutoff, ok, "trial %d: z=%.3f", trial, z)
		if ok {
			fired++
			assert.InDelta(t, math.Min(1, math.Abs(z)/3), sig.Score, 1e-9, "trial %d", trial)
		}
	}
	// Ambos lados de la condición tienen que aparecer en 100 paseos.
	assert.Greater(t, fired, 0)
	assert.Less(t, fired, 100)
}

func TestDetectMeanReversion_InsufficientData(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	_, _, err := DetectMeanReversion("mkt", seriesAt(base, 0.50), DefaultDetectorConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// --- DetectDivergence ---

func TestDetectDivergence_IdenticalSeriesDoNotFire(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	primary := seriesAt(base, 0.40, 0.45, 0.50, 0.55)
	peers := map[string][]PricePoint{"peer": seriesAt(base, 0.40, 0.45, 0.50, 0.55)}
	edges := []CorrelationEdge{{TokenA: "mkt", TokenB: "peer", Correlation: 1.0}}

	signals := DetectDivergence("mkt", primary, peers, edges, DefaultDetectorConfig())
	assert.Empty(t, signals)
}

func TestDetectDivergence_RecentGapFires(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// Diferencia histórica constante 0.05, última observación 0.25:
	// ratio = 0.25/(avg de {0.05,0.05,0.05,0.25}=0.10) = 2.5 > 1.5
	primary := seriesAt(base, 0.40, 0.45, 0.50, 0.75)
	peers := map[string][]PricePoint{"peer": seriesAt(base, 0.35, 0.40, 0.45, 0.50)}
	edges := []CorrelationEdge{{TokenA: "mkt", TokenB: "peer", Correlation: 0.9}}

	signals := DetectDivergence("mkt", primary, peers, edges, DefaultDetectorConfig())
	assert.Len(t, signals, 1)
	assert.Equal(t, SignalArbitrage, signals[0].Type)
	assert.Equal(t, "peer", signals[0].RelatedMarket)
	// score = (2.5-1)/2 = 0.75
	assert.InDelta(t, 0.75, signals[0].Score, 1e-9)
	assert.Equal(t, DefaultDivergenceConfidence, signals[0].Confidence)
}

func TestDetectDivergence_LowCorrelationSkipped(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	primary := seriesAt(base, 0.40, 0.45, 0.50, 0.75)
	peers := map[string][]PricePoint{"peer": seriesAt(base, 0.35, 0.40, 0.45, 0.50)}
	// corr 0.5 no llega al mínimo de 0.7
	edges := []CorrelationEdge{{TokenA: "mkt", TokenB: "peer", Correlation: 0.5}}

	signals := DetectDivergence("mkt", primary, peers, edges, DefaultDetectorConfig())
	assert.Empty(t, signals)
}

func TestDetectDivergence_EdgeNotTouchingMarketSkipped(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	primary := seriesAt(base, 0.40, 0.75)
	peers := map[string][]PricePoint{"peer": seriesAt(base, 0.35, 0.40)}
	edges := []CorrelationEdge{{TokenA: "other1", TokenB: "other2", Correlation: 0.9}}

	signals := DetectDivergence("mkt", primary, peers, edges, DefaultDetectorConfig())
	assert.Empty(t, signals)
}
