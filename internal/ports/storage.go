package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polylens/internal/domain"
)

// Storage persiste los resultados de cada ciclo de análisis.
type Storage interface {
	// SaveReport persiste el report de un ciclo.
	SaveReport(ctx context.Context, report domain.Report) error

	// GetHistory devuelve los resúmenes de ciclos en el rango dado.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.CycleSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

// Notifier presenta el report de un ciclo al usuario.
type Notifier interface {
	// Notify muestra señales, findings y estrategias del report.
	Notify(ctx context.Context, report domain.Report) error
}
