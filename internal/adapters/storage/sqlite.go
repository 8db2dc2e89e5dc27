package storage

// sqlite.go — archivo histórico de ciclos de análisis.
//
// Estrategia:
//   - `cycles`: resumen ligero por ciclo (markets, signals, findings, top score).
//     Siempre 1 fila por ciclo, ~60 bytes.
//   - `signals`: las señales del ciclo con score y confianza, para poder
//     revisar a posteriori qué detectó cada run.
//   - `findings`: inconsistencias del scanner con su severidad.
//   - Prune automático al arrancar: todo lo anterior a 30 días se borra,
//     los hijos caen por run_id junto con su ciclo.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polylens/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen ligero por ciclo de análisis
CREATE TABLE IF NOT EXISTS cycles (
    run_id     TEXT PRIMARY KEY,
    scanned_at DATETIME NOT NULL,
    markets    INTEGER  NOT NULL DEFAULT 0,
    signals    INTEGER  NOT NULL DEFAULT 0,
    findings   INTEGER  NOT NULL DEFAULT 0,
    top_score  REAL     NOT NULL DEFAULT 0
);

-- Señales detectadas en cada ciclo
CREATE TABLE IF NOT EXISTS signals (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id         TEXT NOT NULL,
    type           TEXT NOT NULL,
    market_id      TEXT NOT NULL,
    related_market TEXT,
    score          REAL NOT NULL DEFAULT 0,
    confidence     REAL NOT NULL DEFAULT 0,
    description    TEXT
);

-- Inconsistencias del scanner por ciclo
CREATE TABLE IF NOT EXISTS findings (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   TEXT NOT NULL,
    severity TEXT NOT NULL,
    title    TEXT NOT NULL,
    detail   TEXT
);

CREATE INDEX IF NOT EXISTS idx_cycles_at      ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_signals_run    ON signals(run_id);
CREATE INDEX IF NOT EXISTS idx_signals_score  ON signals(score DESC);
CREATE INDEX IF NOT EXISTS idx_findings_run   ON findings(run_id);
`

// retention acota el histórico: un mes de ciclos es suficiente para revisar
// qué señales persisten y cuáles fueron ruido.
const retention = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveReport persiste el resumen del ciclo junto con sus señales y findings,
// todo en una transacción.
func (s *SQLiteStorage) SaveReport(ctx context.Context, report domain.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: begin tx: %w", err)
	}
	defer tx.Rollback()

	summary := report.Summary()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (run_id, scanned_at, markets, signals, findings, top_score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.ScannedAt.UTC(), summary.Markets,
		summary.Signals, summary.Findings, summary.TopScore,
	); err != nil {
		return fmt.Errorf("storage.SaveReport: insert cycle: %w", err)
	}

	sigStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO signals (run_id, type, market_id, related_market, score, confidence, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: prepare signals: %w", err)
	}
	defer sigStmt.Close()

	for _, res := range report.Results {
		for _, sig := range res.Signals {
			if _, err := sigStmt.ExecContext(ctx,
				report.RunID, string(sig.Type), sig.PrimaryMarket,
				sig.RelatedMarket, sig.Score, sig.Confidence, sig.Description,
			); err != nil {
				return fmt.Errorf("storage.SaveReport: insert signal %s: %w", sig.PrimaryMarket, err)
			}
		}
	}

	for _, f := range report.Findings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO findings (run_id, severity, title, detail) VALUES (?, ?, ?, ?)`,
			report.RunID, string(f.Severity), f.Title, f.Detail,
		); err != nil {
			return fmt.Errorf("storage.SaveReport: insert finding %q: %w", f.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveReport: commit: %w", err)
	}
	return nil
}

// GetHistory devuelve los resúmenes de ciclos cuyo scanned_at está en el
// rango dado, más recientes primero.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.CycleSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, scanned_at, markets, signals, findings, top_score
		FROM cycles
		WHERE scanned_at BETWEEN ? AND ?
		ORDER BY scanned_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var summaries []domain.CycleSummary
	for rows.Next() {
		var cs domain.CycleSummary
		var scannedAt string
		if err := rows.Scan(&cs.RunID, &scannedAt, &cs.Markets,
			&cs.Signals, &cs.Findings, &cs.TopScore); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, scannedAt); err == nil {
			cs.ScannedAt = ts.UTC()
		}
		summaries = append(summaries, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetHistory: rows: %w", err)
	}
	return summaries, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra ciclos antiguos y sus señales/findings asociados.
// Best-effort: un fallo aquí no impide arrancar.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retention)

	for _, q := range []string{
		`DELETE FROM signals  WHERE run_id IN (SELECT run_id FROM cycles WHERE scanned_at < ?)`,
		`DELETE FROM findings WHERE run_id IN (SELECT run_id FROM cycles WHERE scanned_at < ?)`,
		`DELETE FROM cycles   WHERE scanned_at < ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, cutoff); err != nil {
			slog.Warn("storage prune failed", "err", err)
			return
		}
	}
}
