package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polylens/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	gammaPageSize    = 100
	// maxMarketPages acota la paginación: el análisis de cluster no
	// necesita el universo completo de Polymarket.
	maxMarketPages = 10
)

// FetchMarkets devuelve los mercados activos de Gamma con su metadata de
// cluster y term. Pagina con offset hasta agotar resultados o alcanzar el
// tope de páginas.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	now := time.Now()
	var all []domain.Market

	for page := 0; page < maxMarketPages; page++ {
		url := fmt.Sprintf("%s%s?active=true&closed=false&limit=%d&offset=%d",
			c.gammaBase, gammaMarketsPath, gammaPageSize, page*gammaPageSize)

		var resp gammaMarketsResponse
		if err := c.get(ctx, c.gamma, url, &resp); err != nil {
			return nil, fmt.Errorf("polymarket.FetchMarkets: %w", err)
		}

		all = append(all, mapGammaMarkets(resp, now)...)

		slog.Debug("fetched gamma markets page",
			"page", page,
			"count", len(resp),
			"total", len(all),
		)

		if len(resp) < gammaPageSize {
			break
		}
	}

	slog.Info("markets fetched", "total", len(all))
	return all, nil
}
