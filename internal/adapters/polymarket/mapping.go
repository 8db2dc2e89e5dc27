package polymarket

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/alejandrodnm/polylens/internal/domain"
)

// mapGammaMarkets convierte los DTOs de Gamma a domain.Market, descartando
// mercados cerrados o sin tokens.
func mapGammaMarkets(raw []gammaMarket, now time.Time) []domain.Market {
	markets := make([]domain.Market, 0, len(raw))
	for _, r := range raw {
		if r.Closed || !r.Active {
			continue
		}
		m, ok := mapGammaMarket(r, now)
		if !ok {
			continue
		}
		markets = append(markets, m)
	}
	return markets
}

// mapGammaMarket convierte un gammaMarket DTO a domain.Market.
func mapGammaMarket(r gammaMarket, now time.Time) (domain.Market, bool) {
	tokens := parseStringArray(r.ClobTokenIDs)
	if len(tokens) < 2 {
		return domain.Market{}, false
	}

	m := domain.Market{
		ID:         r.ConditionID,
		YesTokenID: tokens[0],
		NoTokenID:  tokens[1],
		Question:   r.Question,
		Slug:       r.Slug,
		TermKey:    r.SeriesSlug,
	}

	if prices := parseStringArray(r.OutcomePrices); len(prices) >= 2 {
		m.YesMid, _ = strconv.ParseFloat(prices[0], 64)
		m.NoMid, _ = strconv.ParseFloat(prices[1], 64)
	}

	if v, err := r.Volume24h.Float64(); err == nil {
		m.Volume24h = v
	}
	if v, err := r.Liquidity.Float64(); err == nil {
		m.Liquidity = v
	}

	if len(r.Events) > 0 {
		m.ClusterKey = r.Events[0].Slug
		m.MutuallyExclusive = r.Events[0].NegRisk || r.NegRisk
	} else {
		m.MutuallyExclusive = r.NegRisk
	}

	if r.EndDateISO != "" {
		// Polymarket usa varios formatos; intentamos los más comunes
		for _, layout := range []string{
			time.RFC3339,
			"2006-01-02T15:04:05.000Z",
			"2006-01-02T15:04:05Z",
			"2006-01-02",
		} {
			if t, err := time.Parse(layout, r.EndDateISO); err == nil {
				if days := t.UTC().Sub(now).Hours() / 24; days > 0 {
					m.HorizonDays = days
				}
				break
			}
		}
	}

	return m, true
}

// parseStringArray decodifica un campo de Gamma que contiene un array JSON
// serializado dentro de un string, p.ej. `"[\"0.52\", \"0.48\"]"`.
func parseStringArray(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// mapOrderBooks convierte la respuesta batch de /books a un map
// tokenID→OrderBook normalizado. Acepta ambas codificaciones de niveles.
func mapOrderBooks(raw []orderBookResponse) map[string]domain.OrderBook {
	result := make(map[string]domain.OrderBook, len(raw))
	for _, r := range raw {
		bids, errB := decodeLevels(r.Bids)
		asks, errA := decodeLevels(r.Asks)
		if errB != nil || errA != nil {
			continue
		}

		ob := domain.NewOrderBook(r.AssetID, bids, asks)
		if ms, err := strconv.ParseInt(r.Timestamp, 10, 64); err == nil && ms > 0 {
			ob.Timestamp = time.UnixMilli(ms).UTC()
		}
		result[r.AssetID] = ob
	}
	return result
}

// decodeLevels deserializa un lado del book en cualquiera de sus
// codificaciones y lo coerce a entries vía domain.ParseLevels.
func decodeLevels(raw json.RawMessage) ([]domain.BookEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return domain.ParseLevels(generic)
}

// mapPriceHistory convierte la serie raw a domain.PricePoint ordenada.
func mapPriceHistory(raw priceHistoryResponse) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(raw.History))
	for _, p := range raw.History {
		if p.P < 0 || p.P > 1 {
			continue
		}
		points = append(points, domain.PricePoint{
			Timestamp: time.Unix(p.T, 0).UTC(),
			Price:     p.P,
		})
	}
	return points
}
