package domain

// inefficiency.go — señales de ineficiencia sobre una serie primaria:
// momentum, mean reversion (z-score) y divergencia de pares correlacionados.
//
// Los umbrales y confidences son constantes de diseño con nombre; los
// defaults reproducen el comportamiento de referencia. Implementaciones no
// deberían esparcir estos literales por el código.

import (
	"fmt"
	"math"
)

// Defaults de DetectorConfig.
const (
	DefaultMomentumWindow     = 10
	DefaultMomentumCutoff     = 0.1
	DefaultMomentumConfidence = 0.7

	DefaultZScoreCutoff      = 1.5
	DefaultMeanRevConfidence = 0.6

	DefaultDivergenceCorrMin    = 0.7
	DefaultDivergenceRatio      = 1.5
	DefaultDivergenceConfidence = 0.8
)

// SignalType clasifica la señal de ineficiencia.
type SignalType string

const (
	SignalMomentum      SignalType = "momentum"
	SignalMeanReversion SignalType = "meanReversion"
	SignalArbitrage     SignalType = "arbitrage"
	SignalMispricing    SignalType = "mispricing"
)

// Signal es una ineficiencia detectada en un mercado.
type Signal struct {
	Type          SignalType
	PrimaryMarket string
	RelatedMarket string // solo para señales de par
	Score         float64
	Confidence    float64
	Description   string
}

// DetectorConfig parametriza el detector de ineficiencias.
type DetectorConfig struct {
	MomentumWindow     int
	MomentumCutoff     float64
	MomentumConfidence float64

	ZScoreCutoff      float64
	MeanRevConfidence float64

	DivergenceCorrMin    float64
	DivergenceRatio      float64
	DivergenceConfidence float64

	Align AlignConfig
}

// DefaultDetectorConfig devuelve la configuración estándar del detector.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MomentumWindow:       DefaultMomentumWindow,
		MomentumCutoff:       DefaultMomentumCutoff,
		MomentumConfidence:   DefaultMomentumConfidence,
		ZScoreCutoff:         DefaultZScoreCutoff,
		MeanRevConfidence:    DefaultMeanRevConfidence,
		DivergenceCorrMin:    DefaultDivergenceCorrMin,
		DivergenceRatio:      DefaultDivergenceRatio,
		DivergenceConfidence: DefaultDivergenceConfidence,
	}
}

// DetectMomentum evalúa el momentum de la ventana reciente (últimos
// min(window, n) puntos). Flag si |momentum| supera el cutoff.
// Devuelve (señal, true) si dispara.
func DetectMomentum(marketID string, series []PricePoint, cfg DetectorConfig) (Signal, bool, error) {
	if len(series) < 2 {
		return Signal{}, false, fmt.Errorf("DetectMomentum %s: %d points: %w", marketID, len(series), ErrInsufficientData)
	}

	window := cfg.MomentumWindow
	if window <= 0 {
		window = DefaultMomentumWindow
	}
	if len(series) < window {
		window = len(series)
	}

	recent := series[len(series)-window:]
	first := recent[0].Price
	last := recent[len(recent)-1].Price
	if first == 0 {
		return Signal{}, false, fmt.Errorf("DetectMomentum %s: zero base price: %w", marketID, ErrInvalidInput)
	}

	momentum := (last - first) / first
	if math.Abs(momentum) <= cfg.MomentumCutoff {
		return Signal{}, false, nil
	}

	direction := "upward"
	if momentum < 0 {
		direction = "downward"
	}
	return Signal{
		Type:          SignalMomentum,
		PrimaryMarket: marketID,
		Score:         math.Abs(momentum),
		Confidence:    cfg.MomentumConfidence,
		Description: fmt.Sprintf("%s momentum of %.1f%% over last %d points",
			direction, momentum*100, window),
	}, true, nil
}

// DetectMeanReversion calcula el z-score del precio actual contra la media y
// desviación estándar poblacional de la serie completa. Flag si |z| supera
// el cutoff; score = min(1, |z|/3).
func DetectMeanReversion(marketID string, series []PricePoint, cfg DetectorConfig) (Signal, bool, error) {
	if len(series) < 2 {
		return Signal{}, false, fmt.Errorf("DetectMeanReversion %s: %d points: %w", marketID, len(series), ErrInsufficientData)
	}

	var sum float64
	for _, p := range series {
		sum += p.Price
	}
	mean := sum / float64(len(series))

	var sqDiff float64
	for _, p := range series {
		d := p.Price - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(series)))
	if stddev == 0 {
		return Signal{}, false, nil
	}

	current := series[len(series)-1].Price
	z := (current - mean) / stddev
	if math.Abs(z) <= cfg.ZScoreCutoff {
		return Signal{}, false, nil
	}

	side := "above"
	if z < 0 {
		side = "below"
	}
	return Signal{
		Type:          SignalMeanReversion,
		PrimaryMarket: marketID,
		Score:         math.Min(1, math.Abs(z)/3),
		Confidence:    cfg.MeanRevConfidence,
		Description: fmt.Sprintf("price %.3f is %.1f stddevs %s mean %.3f",
			current, math.Abs(z), side, mean),
	}, true, nil
}

// DetectDivergence busca divergencias entre la serie primaria y cada peer
// cuyo edge de correlación supere el mínimo. Flag si la diferencia reciente
// supera DivergenceRatio × diferencia media histórica.
//
// Dos series idénticas (corr 1.0) tienen ratio recent/avg = 1 y NO disparan.
func DetectDivergence(
	marketID string,
	primary []PricePoint,
	peers map[string][]PricePoint,
	edges []CorrelationEdge,
	cfg DetectorConfig,
) []Signal {
	var signals []Signal

	for _, edge := range edges {
		peerID, ok := edgePeer(edge, marketID)
		if !ok || edge.Correlation <= cfg.DivergenceCorrMin {
			continue
		}
		peerSeries, ok := peers[peerID]
		if !ok {
			continue
		}

		x, y := AlignSeries(primary, peerSeries, cfg.Align)
		if len(x) < MinAlignedPoints {
			continue
		}

		var avgDiff float64
		for i := range x {
			avgDiff += math.Abs(x[i] - y[i])
		}
		avgDiff /= float64(len(x))
		if avgDiff == 0 {
			continue
		}

		recentDiff := math.Abs(x[len(x)-1] - y[len(y)-1])
		if recentDiff <= cfg.DivergenceRatio*avgDiff {
			continue
		}

		ratio := recentDiff / avgDiff
		score := (ratio - 1) / 2
		if score < 0 {
			score = 0
		}

		signals = append(signals, Signal{
			Type:          SignalArbitrage,
			PrimaryMarket: marketID,
			RelatedMarket: peerID,
			Score:         score,
			Confidence:    cfg.DivergenceConfidence,
			Description: fmt.Sprintf("diverged %.1fx from correlated market (corr %.2f)",
				ratio, edge.Correlation),
		})
	}

	return signals
}

// edgePeer devuelve el otro extremo del edge si toca a marketID.
func edgePeer(edge CorrelationEdge, marketID string) (string, bool) {
	switch marketID {
	case edge.TokenA:
		return edge.TokenB, true
	case edge.TokenB:
		return edge.TokenA, true
	default:
		return "", false
	}
}
