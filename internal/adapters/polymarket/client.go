package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase = "https://clob.polymarket.com"
	defaultDataBase = "https://data-api.polymarket.com"

	// Rate limits al 60% de los límites reales documentados.
	// Data API /trades: 200/10s → 120/10s → 12/s
	dataRatePerSec = 12
	// CLOB general: 9000/10s → 5400/10s → 540/s
	clobRatePerSec = 540

	requestTimeout = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de Polymarket con rate limiting.
//
// Retries locales solo para 429 y 5xx (flow control del venue). Los
// errores de transporte y timeouts se devuelven como NetworkError sin
// reintentar: el próximo ciclo del engine es el retry.
type Client struct {
	http        *http.Client
	clobBase    string
	dataBase    string
	clobLimiter *rate.Limiter
	dataLimiter *rate.Limiter
}

// NewClient crea un Client con los base URLs dados.
// Si clobBase o dataBase están vacíos, usa los URLs de producción.
func NewClient(clobBase, dataBase string) *Client {
	if clobBase == "" {
		clobBase = defaultCLOBBase
	}
	if dataBase == "" {
		dataBase = defaultDataBase
	}
	return &Client{
		http:        &http.Client{Timeout: requestTimeout},
		clobBase:    clobBase,
		dataBase:    dataBase,
		clobLimiter: rate.NewLimiter(clobRatePerSec, 50),
		dataLimiter: rate.NewLimiter(dataRatePerSec, 5),
	}
}

// get hace un GET con rate limiting y clasificación de errores.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.do(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// do ejecuta la request. 429/5xx se reintentan con backoff exponencial;
// errores de transporte se devuelven en seguida como NetworkError.
func (c *Client) do(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			return &NetworkError{Err: err}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt == maxRetries {
				return &VenueError{Status: resp.StatusCode, Msg: "rate limited"}
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if attempt == maxRetries {
				return classifyStatus(resp.StatusCode, body)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return classifyStatus(resp.StatusCode, body)
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &VenueError{Status: resp.StatusCode, Msg: fmt.Sprintf("decode response: %v", err)}
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
