package polymarket

// history.go — fetch de series de precios del CLOB (/prices-history).
// Un goroutine por token; el limiter del endpoint controla el ritmo del
// fan-out.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polylens/internal/domain"
)

const (
	pricesHistoryPath = "/prices-history"
	// historyInterval pide la serie del último mes con fidelity de 1h,
	// suficiente para correlación y lead-lag sin saturar la API.
	historyInterval = "1m"
	historyFidelity = 60
)

// FetchPriceHistories devuelve la serie de precios de cada token dado.
// Los tokens cuya serie falla o viene vacía se omiten del map: el caller
// decide cómo degradar (batch skip-and-continue).
func (c *Client) FetchPriceHistories(ctx context.Context, tokenIDs []string) (map[string][]domain.PricePoint, error) {
	if len(tokenIDs) == 0 {
		return map[string][]domain.PricePoint{}, nil
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string][]domain.PricePoint, len(tokenIDs))
		failed int
	)

	for _, id := range tokenIDs {
		wg.Add(1)
		go func(tokenID string) {
			defer wg.Done()

			series, err := c.fetchPriceHistory(ctx, tokenID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				slog.Debug("price history failed, skipping token", "token_id", tokenID, "err", err)
				return
			}
			if len(series) > 0 {
				result[tokenID] = series
			}
		}(id)
	}
	wg.Wait()

	if failed > 0 {
		slog.Warn("some price histories failed", "failed", failed, "fetched", len(result))
	}
	return result, nil
}

// fetchPriceHistory obtiene la serie de un token.
func (c *Client) fetchPriceHistory(ctx context.Context, tokenID string) ([]domain.PricePoint, error) {
	url := fmt.Sprintf("%s%s?market=%s&interval=%s&fidelity=%d",
		c.clobBase, pricesHistoryPath, tokenID, historyInterval, historyFidelity)

	var resp priceHistoryResponse
	if err := c.get(ctx, c.history, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}

	return mapPriceHistory(resp), nil
}
