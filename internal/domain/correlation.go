package domain

// correlation.go — correlación Pearson y detección de lead-lag entre series.
//
// El lead-lag busca el desfase entero ℓ ∈ [-L, L] (L = min(5, n/2)) que
// maximiza |corr|. Un desfase ganador de |ℓ| < 2 se reporta como "none":
// con 0-1 períodos de desfase la señal no es accionable.

import (
	"fmt"
	"math"
)

// Defaults del análisis de correlación.
const (
	// MaxLeadLagPeriods limita la búsqueda de desfase.
	MaxLeadLagPeriods = 5
	// MinLeadLagPeriods es el desfase mínimo para reportar dirección.
	MinLeadLagPeriods = 2
	// MinAlignedPoints es el mínimo de puntos alineados para correlacionar.
	MinAlignedPoints = 2
)

// LeadLagDirection indica quién va por delante en la relación temporal.
type LeadLagDirection string

const (
	DirectionLeads LeadLagDirection = "leads"
	DirectionLags  LeadLagDirection = "lags"
	DirectionNone  LeadLagDirection = "none"
)

// LeadLag es el resultado de la búsqueda de desfase entre dos series.
type LeadLag struct {
	// Direction es la relación de tokenA respecto a tokenB.
	Direction  LeadLagDirection
	LagPeriods int
	// Correlation es la correlación en el desfase ganador.
	Correlation float64
}

// CorrelationEdge es la relación estadística entre dos tokens.
type CorrelationEdge struct {
	TokenA      string
	TokenB      string
	Correlation float64 // en [-1,1], sobre los puntos alineados
	SampleSize  int     // puntos alineados usados
	LeadLag     LeadLag
}

// Pearson calcula el coeficiente de correlación de Pearson entre dos arrays
// de igual longitud. Devuelve 0 con menos de 2 puntos o varianza cero en
// cualquiera de las series.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < MinAlignedPoints {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// AnalyzeCorrelation alinea dos series y construye el CorrelationEdge
// completo, incluyendo lead-lag. Devuelve ErrInsufficientData si quedan
// menos de 2 puntos alineados.
func AnalyzeCorrelation(tokenA, tokenB string, seriesA, seriesB []PricePoint, cfg AlignConfig) (CorrelationEdge, error) {
	x, y := AlignSeries(seriesA, seriesB, cfg)
	if len(x) < MinAlignedPoints {
		return CorrelationEdge{}, fmt.Errorf("AnalyzeCorrelation %s/%s: %d aligned points: %w",
			tokenA, tokenB, len(x), ErrInsufficientData)
	}

	return CorrelationEdge{
		TokenA:      tokenA,
		TokenB:      tokenB,
		Correlation: Pearson(x, y),
		SampleSize:  len(x),
		LeadLag:     DetectLeadLag(x, y, cfg.MaxLagPeriods),
	}, nil
}

// DetectLeadLag busca el desfase ℓ ∈ [-L, L] con mayor |corr| entre los
// arrays ya alineados, con L = min(maxLag, n/2). maxLag ≤ 0 usa
// MaxLeadLagPeriods. ℓ > 0 desplaza x hacia la izquierda contra y
// (x va por delante); ℓ < 0 desplaza y contra x. Los empates conservan el
// |ℓ| menor y, a igualdad, el primero examinado.
func DetectLeadLag(x, y []float64, maxLag int) LeadLag {
	n := len(x)
	if maxLag <= 0 {
		maxLag = MaxLeadLagPeriods
	}
	if n/2 < maxLag {
		maxLag = n / 2
	}

	bestLag := 0
	bestCorr := Pearson(x, y)

	for lag := -maxLag; lag <= maxLag; lag++ {
		if lag == 0 {
			continue
		}
		var corr float64
		if lag > 0 {
			corr = Pearson(x[lag:], y[:n-lag])
		} else {
			corr = Pearson(x[:n+lag], y[-lag:])
		}

		if better(corr, lag, bestCorr, bestLag) {
			bestCorr = corr
			bestLag = lag
		}
	}

	result := LeadLag{Correlation: bestCorr}
	magnitude := bestLag
	if magnitude < 0 {
		magnitude = -magnitude
	}

	if magnitude < MinLeadLagPeriods {
		result.Direction = DirectionNone
		result.LagPeriods = 0
		return result
	}

	if bestLag > 0 {
		result.Direction = DirectionLeads
	} else {
		result.Direction = DirectionLags
	}
	result.LagPeriods = magnitude
	return result
}

// better decide si el candidato (corr, lag) desbanca al mejor actual.
// Gana |corr| estrictamente mayor; a igualdad gana el |lag| menor; a
// igualdad total se conserva el primero examinado.
func better(corr float64, lag int, bestCorr float64, bestLag int) bool {
	absCorr := math.Abs(corr)
	absBest := math.Abs(bestCorr)
	if absCorr > absBest {
		return true
	}
	if absCorr == absBest {
		al, bl := lag, bestLag
		if al < 0 {
			al = -al
		}
		if bl < 0 {
			bl = -bl
		}
		return al < bl
	}
	return false
}
