package domain

import "errors"

// Errores centinela del core de análisis. Los componentes los envuelven con
// contexto usando fmt.Errorf("...: %w", err) para que los callers puedan
// hacer errors.Is sin depender del mensaje.
var (
	// ErrInsufficientData indica menos puntos de los mínimos requeridos
	// (p.ej. menos de 2 puntos alineados para correlación).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidInput indica un precio o size no finito o negativo que
	// sobrevivió a la normalización, o una forma que no se puede normalizar.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamDataGap indica que el caller no proporcionó datos para un
	// campo requerido (serie vacía, book ausente, metadata incompleta).
	ErrUpstreamDataGap = errors.New("upstream data gap")
)

// Nota: "unfillable" y los partial fills NO son errores — son estados
// etiquetados en SlippageResult y FillResult. Un book sin liquidez suficiente
// es una condición esperada sobre la que el caller debe ramificar.
