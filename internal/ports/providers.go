package ports

import (
	"context"

	"github.com/alejandrodnm/polylens/internal/domain"
)

// MarketProvider obtiene la metadata de los mercados a analizar.
type MarketProvider interface {
	// FetchMarkets devuelve los mercados activos con su metadata
	// (cluster, term key, liquidez) ya enriquecida.
	FetchMarkets(ctx context.Context) ([]domain.Market, error)
}

// BookProvider obtiene orderbooks del CLOB usando el endpoint batch.
type BookProvider interface {
	// FetchOrderBooks devuelve los orderbooks normalizados para los
	// token_ids dados. Internamente agrupa los IDs en batches para
	// minimizar requests.
	FetchOrderBooks(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error)
}

// HistoryProvider obtiene series de precios históricos por token.
type HistoryProvider interface {
	// FetchPriceHistories devuelve la serie de precios de cada token_id,
	// ordenada por timestamp. Los tokens sin historia se omiten del map.
	FetchPriceHistories(ctx context.Context, tokenIDs []string) (map[string][]domain.PricePoint, error)
}
