package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polylens/internal/domain"
)

func memStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(runID string, at time.Time) domain.Report {
	return domain.Report{
		RunID:     runID,
		ScannedAt: at,
		Results: []domain.MarketResult{
			{
				Market: domain.Market{ID: "mkt-a"},
				Signals: []domain.Signal{
					{Type: domain.SignalMomentum, PrimaryMarket: "mkt-a", Score: 0.42, Confidence: 0.7, Description: "upward momentum"},
				},
			},
			{Market: domain.Market{ID: "mkt-b"}},
		},
		Findings: []domain.Finding{
			{Severity: domain.SeverityHigh, Title: "overround", Detail: "group sums to 1.2"},
		},
	}
}

func TestSaveReport_AndGetHistory(t *testing.T) {
	s := memStorage(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	err := s.SaveReport(ctx, sampleReport("run-1", at))
	assert.NoError(t, err)

	history, err := s.GetHistory(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	assert.NoError(t, err)
	assert.Len(t, history, 1)

	cs := history[0]
	assert.Equal(t, "run-1", cs.RunID)
	assert.Equal(t, 2, cs.Markets)
	assert.Equal(t, 1, cs.Signals)
	assert.Equal(t, 1, cs.Findings)
	assert.InDelta(t, 0.42, cs.TopScore, 1e-9)
}

func TestGetHistory_RangeExcludesOutside(t *testing.T) {
	s := memStorage(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, s.SaveReport(ctx, sampleReport("run-old", at.Add(-48*time.Hour))))
	assert.NoError(t, s.SaveReport(ctx, sampleReport("run-new", at)))

	history, err := s.GetHistory(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, "run-new", history[0].RunID)
}

func TestGetHistory_OrderedMostRecentFirst(t *testing.T) {
	s := memStorage(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, s.SaveReport(ctx, sampleReport("run-1", at.Add(-2*time.Hour))))
	assert.NoError(t, s.SaveReport(ctx, sampleReport("run-2", at)))

	history, err := s.GetHistory(ctx, at.Add(-24*time.Hour), at.Add(time.Hour))
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, "run-2", history[0].RunID)
	assert.Equal(t, "run-1", history[1].RunID)
}

func TestSaveReport_EmptyReport(t *testing.T) {
	s := memStorage(t)
	err := s.SaveReport(context.Background(), domain.Report{
		RunID:     "run-empty",
		ScannedAt: time.Now().UTC(),
	})
	assert.NoError(t, err)
}
