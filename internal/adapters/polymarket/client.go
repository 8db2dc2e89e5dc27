package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase  = "https://clob.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"

	// Presupuesto por endpoint según el tráfico que genera un ciclo:
	// Gamma son ≤10 páginas, /books son decenas de POSTs batch y
	// /prices-history es un fan-out de un GET por token YES. Todos muy por
	// debajo de los límites documentados de la API.
	gammaRatePerSec   = 10
	booksRatePerSec   = 25
	historyRatePerSec = 100

	gammaBurst   = 4
	booksBurst   = 8
	historyBurst = 30

	// Los POSTs batch a /books mueven más payload que el resto.
	gammaTimeout   = 8 * time.Second
	booksTimeout   = 15 * time.Second
	historyTimeout = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 400 * time.Millisecond

	userAgent = "polylens/0.1"
)

// endpoint agrupa el HTTP client y el rate limiter de una familia de rutas.
type endpoint struct {
	http    *http.Client
	limiter *rate.Limiter
}

// Client habla con las APIs de Polymarket con rate limiting por endpoint y
// retries. Implementa ports.MarketProvider, ports.BookProvider y
// ports.HistoryProvider; el core nunca toca la red.
type Client struct {
	clobBase  string
	gammaBase string

	gamma   endpoint
	books   endpoint
	history endpoint
}

// NewClient crea un Client con los base URLs dados.
// Si clobBase o gammaBase están vacíos, usa los URLs de producción.
func NewClient(clobBase, gammaBase string) *Client {
	if clobBase == "" {
		clobBase = defaultCLOBBase
	}
	if gammaBase == "" {
		gammaBase = defaultGammaBase
	}
	return &Client{
		clobBase:  clobBase,
		gammaBase: gammaBase,
		gamma: endpoint{
			http:    &http.Client{Timeout: gammaTimeout},
			limiter: rate.NewLimiter(gammaRatePerSec, gammaBurst),
		},
		books: endpoint{
			http:    &http.Client{Timeout: booksTimeout},
			limiter: rate.NewLimiter(booksRatePerSec, booksBurst),
		},
		history: endpoint{
			http:    &http.Client{Timeout: historyTimeout},
			limiter: rate.NewLimiter(historyRatePerSec, historyBurst),
		},
	}
}

// get hace un GET contra el endpoint dado, con rate limiting y retries.
func (c *Client) get(ctx context.Context, ep endpoint, url string, out any) error {
	return c.doWithRetry(ctx, ep, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return ep.http.Do(req)
	}, out)
}

// post hace un POST JSON contra el endpoint dado, con rate limiting y retries.
func (c *Client) post(ctx context.Context, ep endpoint, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.doWithRetry(ctx, ep, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return ep.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la request respetando el limiter del endpoint en cada
// intento. Reintenta 429 y 5xx con backoff exponencial; en 429 respeta el
// header Retry-After cuando la API lo manda.
func (c *Client) doWithRetry(ctx context.Context, ep endpoint, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ep.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.backoff(ctx, attempt, 0)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			hinted := retryAfter(resp)
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1, "retry_after", hinted)
			if attempt == maxRetries {
				return fmt.Errorf("rate limited after %d retries", maxRetries)
			}
			c.backoff(ctx, attempt, hinted)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.backoff(ctx, attempt, 0)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// backoff espera el máximo entre el backoff exponencial y la pista del
// servidor, respetando el contexto.
func (c *Client) backoff(ctx context.Context, attempt int, hinted time.Duration) {
	wait := baseRetryWait << attempt
	if hinted > wait {
		wait = hinted
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

// retryAfter parsea el header Retry-After en segundos, 0 si no viene o no
// es numérico.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
