package polymarket

// books.go — fetch batch de orderbooks del CLOB.
//
// FetchOrderBooks dispara un goroutine por batch; el rate limiter (token
// bucket) en doWithRetry controla el ritmo automáticamente sin semáforo
// explícito.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polylens/internal/domain"
)

const (
	booksPath = "/books"
	batchSize = 20 // máx token_ids por request a /books
)

// FetchOrderBooks obtiene los orderbooks para los token_ids dados usando el
// endpoint batch, en paralelo por batches.
func (c *Client) FetchOrderBooks(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error) {
	if len(tokenIDs) == 0 {
		return map[string]domain.OrderBook{}, nil
	}

	var batches [][]string
	for i := 0; i < len(tokenIDs); i += batchSize {
		end := i + batchSize
		if end > len(tokenIDs) {
			end = len(tokenIDs)
		}
		batches = append(batches, tokenIDs[i:end])
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string]domain.OrderBook, len(tokenIDs))
		errs   []error
	)

	for _, batch := range batches {
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()

			books, err := c.fetchBooksBatch(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			for id, ob := range books {
				result[id] = ob
			}
		}(batch)
	}
	wg.Wait()

	if len(result) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("polymarket.FetchOrderBooks: all batches failed: %w", errs[0])
	}
	if len(errs) > 0 {
		slog.Warn("some book batches failed", "failed", len(errs), "fetched", len(result))
	}

	return result, nil
}

// fetchBooksBatch obtiene un batch de books.
func (c *Client) fetchBooksBatch(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error) {
	body := make([]orderBookRequest, len(tokenIDs))
	for i, id := range tokenIDs {
		body[i] = orderBookRequest{TokenID: id}
	}

	var resp []orderBookResponse
	url := c.clobBase + booksPath
	if err := c.post(ctx, c.books, url, body, &resp); err != nil {
		return nil, fmt.Errorf("fetch books batch: %w", err)
	}

	return mapOrderBooks(resp), nil
}
