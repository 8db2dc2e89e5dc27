package domain

import "time"

// PricePoint es una observación de precio (probabilidad implícita) de un token.
type PricePoint struct {
	Timestamp time.Time
	Price     float64 // probabilidad implícita en [0,1]
	Volume    float64 // opcional, 0 si la fuente no lo reporta
}

// AlignConfig controla el modo de alineación de dos series.
type AlignConfig struct {
	// Tolerance habilita el matching nearest-neighbor dentro de la ventana
	// dada. Con Tolerance=0 (default) el join es por timestamp exacto, que
	// es frágil para feeds muestreados asíncronamente pero preserva el
	// comportamiento de referencia.
	Tolerance time.Duration

	// MaxLagPeriods limita la búsqueda de desfase lead-lag sobre los pares
	// alineados. 0 usa MaxLeadLagPeriods.
	MaxLagPeriods int
}

// AlignSeries alinea dos series de precios y devuelve dos arrays numéricos
// de igual longitud en el orden original. Solo sobreviven los pares cuyos
// timestamps casan según cfg. No interpola.
func AlignSeries(a, b []PricePoint, cfg AlignConfig) (pricesA, pricesB []float64) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	if cfg.Tolerance <= 0 {
		return alignExact(a, b)
	}
	return alignNearest(a, b, cfg.Tolerance)
}

// alignExact conserva solo los pares con timestamp idéntico.
func alignExact(a, b []PricePoint) (pricesA, pricesB []float64) {
	byTime := make(map[int64]float64, len(b))
	for _, p := range b {
		byTime[p.Timestamp.UnixNano()] = p.Price
	}

	for _, p := range a {
		if bp, ok := byTime[p.Timestamp.UnixNano()]; ok {
			pricesA = append(pricesA, p.Price)
			pricesB = append(pricesB, bp)
		}
	}
	return pricesA, pricesB
}

// alignNearest empareja cada punto de a con el punto de b más cercano dentro
// de la tolerancia. Cada punto de b se consume una sola vez; ambas series
// deben venir ordenadas por timestamp.
func alignNearest(a, b []PricePoint, tol time.Duration) (pricesA, pricesB []float64) {
	j := 0
	for _, pa := range a {
		// Avanzar j hasta el candidato más cercano a pa.
		for j+1 < len(b) && absDuration(b[j+1].Timestamp.Sub(pa.Timestamp)) <= absDuration(b[j].Timestamp.Sub(pa.Timestamp)) {
			j++
		}
		if j < len(b) && absDuration(b[j].Timestamp.Sub(pa.Timestamp)) <= tol {
			pricesA = append(pricesA, pa.Price)
			pricesB = append(pricesB, b[j].Price)
			j++
		}
		if j >= len(b) {
			break
		}
	}
	return pricesA, pricesB
}

// LastPrice devuelve el precio del último punto de la serie, 0 si está vacía.
func LastPrice(series []PricePoint) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].Price
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
