package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// OrderBook representa el libro de órdenes normalizado de un token.
type OrderBook struct {
	TokenID string
	Bids    []BookEntry // ordenados mayor a menor precio
	Asks    []BookEntry // ordenados menor a mayor precio

	// Timestamp es el timestamp del snapshot reportado por el servidor.
	// Cero si la fuente no lo incluye.
	Timestamp time.Time
}

// BookEntry es un nivel de precio en el orderbook.
type BookEntry struct {
	Price float64
	Size  float64
}

// Side identifica el lado del book al que pertenece un nivel.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// BestBid devuelve el mejor precio de compra (mayor bid).
// Devuelve 0 si el lado está vacío.
func (ob OrderBook) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk devuelve el mejor precio de venta (menor ask).
// Devuelve 0 si el lado está vacío.
func (ob OrderBook) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// Midpoint devuelve el punto medio entre best bid y best ask.
func (ob OrderBook) Midpoint() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// Spread devuelve el spread del book (ask - bid).
// Un book cruzado (bid > ask) produce spread negativo; lo preservamos en vez
// de rechazarlo — los books de Polymarket se cruzan brevemente en repricing
// rápido y la interpretación lo señala explícitamente.
func (ob OrderBook) Spread() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return ask - bid
}

// BidDepth devuelve la suma de sizes del lado bid.
func (ob OrderBook) BidDepth() float64 {
	var total float64
	for _, b := range ob.Bids {
		total += b.Size
	}
	return total
}

// AskDepth devuelve la suma de sizes del lado ask.
func (ob OrderBook) AskDepth() float64 {
	var total float64
	for _, a := range ob.Asks {
		total += a.Size
	}
	return total
}

// NormalizeSide limpia y ordena los niveles de un lado del book:
// descarta entradas no finitas o con precio/size negativo, fusiona niveles
// con precio duplicado sumando sizes, y ordena (bids descendente, asks
// ascendente). Nunca muta el slice de entrada.
func NormalizeSide(levels []BookEntry, side Side) []BookEntry {
	merged := make(map[float64]float64, len(levels))
	for _, l := range levels {
		if !isFinite(l.Price) || !isFinite(l.Size) || l.Price < 0 || l.Size < 0 {
			continue
		}
		if l.Size == 0 {
			continue
		}
		merged[l.Price] += l.Size
	}

	out := make([]BookEntry, 0, len(merged))
	for price, size := range merged {
		out = append(out, BookEntry{Price: price, Size: size})
	}

	sort.Slice(out, func(i, j int) bool {
		if side == SideAsk {
			return out[i].Price < out[j].Price
		}
		return out[i].Price > out[j].Price
	})

	return out
}

// NewOrderBook construye un OrderBook normalizado a partir de niveles raw en
// orden arbitrario.
func NewOrderBook(tokenID string, bids, asks []BookEntry) OrderBook {
	return OrderBook{
		TokenID: tokenID,
		Bids:    NormalizeSide(bids, SideBid),
		Asks:    NormalizeSide(asks, SideAsk),
	}
}

// ParseLevels coerce una colección raw de niveles a []BookEntry.
// Acepta las dos codificaciones que devuelven las APIs tras json.Unmarshal
// a any:
//
//	array de pares:    [["0.50","100"], [0.55, 200], {"price":"0.60","size":"50"}]
//	map precio→size:   {"0.50": "100", "0.55": 200}
//
// Las entradas no numéricas se descartan. Devuelve ErrInvalidInput si la
// forma del contenedor no es reconocible.
func ParseLevels(raw any) ([]BookEntry, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []BookEntry:
		return append([]BookEntry(nil), v...), nil
	case []any:
		out := make([]BookEntry, 0, len(v))
		for _, item := range v {
			entry, ok := parseLevelItem(item)
			if !ok {
				continue
			}
			out = append(out, entry)
		}
		return out, nil
	case map[string]any:
		out := make([]BookEntry, 0, len(v))
		for priceStr, sizeRaw := range v {
			price, err := strconv.ParseFloat(priceStr, 64)
			if err != nil {
				continue
			}
			size, ok := toFloat(sizeRaw)
			if !ok {
				continue
			}
			out = append(out, BookEntry{Price: price, Size: size})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ParseLevels: unsupported shape %T: %w", raw, ErrInvalidInput)
	}
}

// parseLevelItem coerce un item individual: par [price, size] u objeto
// {"price":..., "size":...}.
func parseLevelItem(item any) (BookEntry, bool) {
	switch e := item.(type) {
	case []any:
		if len(e) < 2 {
			return BookEntry{}, false
		}
		price, okP := toFloat(e[0])
		size, okS := toFloat(e[1])
		if !okP || !okS {
			return BookEntry{}, false
		}
		return BookEntry{Price: price, Size: size}, true
	case map[string]any:
		price, okP := toFloat(e["price"])
		size, okS := toFloat(e["size"])
		if !okP || !okS {
			return BookEntry{}, false
		}
		return BookEntry{Price: price, Size: size}, true
	default:
		return BookEntry{}, false
	}
}

// toFloat coerce strings y números JSON a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
