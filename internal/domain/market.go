package domain

import "time"

// Market es la metadata de un mercado de predicción binario.
// Los precios son probabilidades implícitas en [0,1].
type Market struct {
	ID         string
	YesTokenID string // token YES en el CLOB
	NoTokenID  string // token NO en el CLOB
	Question   string // enriquecido desde Gamma
	Slug       string // enriquecido desde Gamma
	YesMid     float64
	NoMid      float64
	Spread     float64 // spread del book YES (ask - bid), derivado por el caller
	Liquidity  float64 // USDC en el book, enriquecido desde Gamma
	Volume24h  float64 // volumen últimas 24h en USDC

	// HorizonDays son los días hasta la resolución del mercado.
	HorizonDays float64

	// ClusterKey agrupa mercados relacionados (mismo evento).
	ClusterKey string
	// MutuallyExclusive marca que el cluster es de resultados excluyentes
	// (neg-risk en Polymarket): las probabilidades deberían sumar ≈1.
	MutuallyExclusive bool
	// TermKey agrupa mercados que son el mismo evento a distintos plazos.
	TermKey string

	// UpdatedAt es el timestamp del último book recibido para el mercado.
	UpdatedAt time.Time
}

// StalenessAge devuelve cuánto hace que no se actualiza el mercado.
// Devuelve 0 si UpdatedAt no está definido.
func (m Market) StalenessAge(now time.Time) time.Duration {
	if m.UpdatedAt.IsZero() {
		return 0
	}
	age := now.Sub(m.UpdatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// ParityGap devuelve |YesMid + NoMid - 1|, la desviación de la paridad YES/NO.
func (m Market) ParityGap() float64 {
	gap := m.YesMid + m.NoMid - 1.0
	if gap < 0 {
		return -gap
	}
	return gap
}

// Label devuelve la pregunta truncada a maxLen caracteres, con el ID como
// fallback si la pregunta está vacía.
func (m Market) Label(maxLen int) string {
	q := m.Question
	if q == "" {
		q = m.ID
	}
	// El corte es por runas: las preguntas traen acentos y símbolos
	// multi-byte y un corte por bytes produciría UTF-8 inválido.
	r := []rune(q)
	if maxLen > 3 && len(r) > maxLen {
		q = string(r[:maxLen-3]) + "..."
	}
	return q
}
