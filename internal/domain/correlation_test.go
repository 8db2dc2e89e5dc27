package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func seriesAt(base time.Time, prices ...float64) []PricePoint {
	out := make([]PricePoint, len(prices))
	for i, p := range prices {
		out[i] = PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return out
}

func TestPearson_PerfectPositive(t *testing.T) {
	x := []float64{0.1, 0.2, 0.3, 0.4}
	y := []float64{0.2, 0.4, 0.6, 0.8}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-9)
}

func TestPearson_PerfectNegative(t *testing.T) {
	x := []float64{0.1, 0.2, 0.3}
	y := []float64{0.9, 0.8, 0.7}
	assert.InDelta(t, -1.0, Pearson(x, y), 1e-9)
}

func TestPearson_Symmetric(t *testing.T) {
	x := []float64{0.1, 0.5, 0.3, 0.7}
	y := []float64{0.2, 0.4, 0.9, 0.6}
	assert.InDelta(t, Pearson(x, y), Pearson(y, x), 1e-12)
}

func TestPearson_ZeroVariance(t *testing.T) {
	x := []float64{0.5, 0.5, 0.5}
	y := []float64{0.1, 0.2, 0.3}
	assert.Equal(t, 0.0, Pearson(x, y))
}

func TestPearson_TooFewPoints(t *testing.T) {
	assert.Equal(t, 0.0, Pearson([]float64{0.5}, []float64{0.5}))
	assert.Equal(t, 0.0, Pearson([]float64{0.5, 0.6}, []float64{0.5}))
}

// --- AnalyzeCorrelation ---

func TestAnalyzeCorrelation_Basic(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	a := seriesAt(base, 0.40, 0.45, 0.50, 0.55)
	b := seriesAt(base, 0.30, 0.35, 0.40, 0.45)

	edge, err := AnalyzeCorrelation("tokA", "tokB", a, b, AlignConfig{})
	assert.NoError(t, err)
	assert.Equal(t, "tokA", edge.TokenA)
	assert.Equal(t, 4, edge.SampleSize)
	assert.InDelta(t, 1.0, edge.Correlation, 1e-9)
}

func TestAnalyzeCorrelation_InsufficientOverlap(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	a := seriesAt(base, 0.40, 0.45)
	b := seriesAt(base.Add(12*time.Hour), 0.30, 0.35)

	_, err := AnalyzeCorrelation("tokA", "tokB", a, b, AlignConfig{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// --- DetectLeadLag ---

func TestDetectLeadLag_IdenticalSeriesIsNone(t *testing.T) {
	x := []float64{0.1, 0.3, 0.2, 0.5, 0.4, 0.6, 0.5, 0.7, 0.6, 0.8}
	y := append([]float64(nil), x...)

	ll := DetectLeadLag(x, y, 0)
	// corr(lag 0) = 1.0 no se puede superar estrictamente → lag 0 → none
	assert.Equal(t, DirectionNone, ll.Direction)
	assert.Equal(t, 0, ll.LagPeriods)
	assert.InDelta(t, 1.0, ll.Correlation, 1e-9)
}

func TestDetectLeadLag_ShiftedSeriesLeads(t *testing.T) {
	// y es x desplazada 3 períodos hacia atrás: x[i] = y[i+3].
	// En el desfase lag=3 corr(x[3:], y[:n-3]) es máxima.
	base := []float64{0.10, 0.30, 0.15, 0.45, 0.20, 0.60, 0.25, 0.70, 0.35, 0.80, 0.40, 0.90, 0.50}
	x := base[3:]
	y := base[:len(base)-3]

	ll := DetectLeadLag(y, x, 0)
	assert.Equal(t, DirectionLeads, ll.Direction)
	assert.Equal(t, 3, ll.LagPeriods)
}

func TestDetectLeadLag_CustomWindowLimitsSearch(t *testing.T) {
	// Mismo desfase de 3 períodos, pero con ventana L=2 el desfase real
	// queda fuera del rango de búsqueda.
	base := []float64{0.10, 0.30, 0.15, 0.45, 0.20, 0.60, 0.25, 0.70, 0.35, 0.80, 0.40, 0.90, 0.50}
	x := base[3:]
	y := base[:len(base)-3]

	ll := DetectLeadLag(y, x, 2)
	assert.LessOrEqual(t, ll.LagPeriods, 2)
}

func TestDetectLeadLag_SmallShiftIsNone(t *testing.T) {
	// Desfase de 1 período: accionable no es, se reporta none.
	base := []float64{0.10, 0.30, 0.15, 0.45, 0.20, 0.60, 0.25, 0.70, 0.35, 0.80}
	x := base[1:]
	y := base[:len(base)-1]

	ll := DetectLeadLag(y, x, 0)
	assert.Equal(t, DirectionNone, ll.Direction)
	assert.Equal(t, 0, ll.LagPeriods)
}

func TestDetectLeadLag_WindowCappedByLength(t *testing.T) {
	// n=4 → L = min(5, 4/2) = 2: no debe salirse del rango.
	x := []float64{0.1, 0.2, 0.3, 0.4}
	y := []float64{0.4, 0.3, 0.2, 0.1}
	ll := DetectLeadLag(x, y, 0)
	assert.LessOrEqual(t, ll.LagPeriods, 2)
}
