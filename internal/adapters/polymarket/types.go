package polymarket

import "encoding/json"

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaMarketsResponse es la respuesta de GET /markets de Gamma.
type gammaMarketsResponse []gammaMarket

// gammaMarket contiene la metadata de un mercado.
// Gamma devuelve varios campos numéricos como strings JSON, usamos
// json.Number; clobTokenIds y outcomePrices llegan como strings que
// contienen arrays JSON.
type gammaMarket struct {
	ConditionID   string       `json:"conditionId"`
	Question      string       `json:"question"`
	Slug          string       `json:"slug"`
	EndDateISO    string       `json:"endDateIso"`
	Volume24h     json.Number  `json:"volume24hr"`
	Liquidity     json.Number  `json:"liquidity"`
	ClobTokenIDs  string       `json:"clobTokenIds"`
	OutcomePrices string       `json:"outcomePrices"`
	NegRisk       bool         `json:"negRisk"`
	SeriesSlug    string       `json:"seriesSlug"`
	Events        []gammaEvent `json:"events"`
	Active        bool         `json:"active"`
	Closed        bool         `json:"closed"`
}

// gammaEvent es el evento al que pertenece un mercado. Los mercados del
// mismo evento forman el cluster de análisis.
type gammaEvent struct {
	Slug    string `json:"slug"`
	NegRisk bool   `json:"negRisk"`
}

// --- CLOB API ---

// orderBookRequest es un item del body del POST /books batch.
type orderBookRequest struct {
	TokenID string `json:"token_id"`
}

// orderBookResponse es la respuesta de un item en POST /books.
// Bids y asks se dejan como RawMessage: el CLOB los devuelve como array de
// objetos {price, size}, pero fixtures y otras fuentes usan la forma
// map precio→size; la normalización en domain acepta ambas.
type orderBookResponse struct {
	AssetID   string          `json:"asset_id"`
	Timestamp string          `json:"timestamp"` // epoch millis como string
	Bids      json.RawMessage `json:"bids"`
	Asks      json.RawMessage `json:"asks"`
}

// priceHistoryResponse es la respuesta de GET /prices-history.
type priceHistoryResponse struct {
	History []pricePointRaw `json:"history"`
}

// pricePointRaw es un punto de la serie: t epoch segundos, p precio.
type pricePointRaw struct {
	T int64   `json:"t"`
	P float64 `json:"p"`
}
