package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"dcaengine/internal/domain"
	"dcaengine/internal/port"
)

var _ port.Oracle = (*HTTPOracle)(nil)

type priceResponse struct {
	Price decimal.Decimal `json:"price"`
}

// HTTPOracle polls a JSON price endpoint and serves the last reading. The
// engine consumes the value only; staleness is the caller's concern.
type HTTPOracle struct {
	url          string
	pollInterval time.Duration
	httpClient   *http.Client

	mu    sync.RWMutex
	quote domain.PriceQuote
}

func NewHTTPOracle(url string, pollInterval time.Duration) *HTTPOracle {
	return &HTTPOracle{
		url:          url,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Start begins polling until ctx is cancelled. The first fetch runs
// immediately so the agent does not start against a zero price.
func (o *HTTPOracle) Start(ctx context.Context) {
	if err := o.fetch(ctx); err != nil {
		slog.Warn("initial price fetch failed", slog.Any("error", err))
	}
	go func() {
		ticker := time.NewTicker(o.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := o.fetch(ctx); err != nil {
					slog.Warn("price fetch failed", slog.Any("error", err))
				}
			}
		}
	}()
}

func (o *HTTPOracle) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return err
	}
	if !data.Price.IsPositive() {
		return fmt.Errorf("non-positive price: %s", data.Price)
	}

	o.mu.Lock()
	o.quote = domain.PriceQuote{Value: data.Price, AsOf: time.Now()}
	o.mu.Unlock()
	return nil
}

func (o *HTTPOracle) LatestPrice(ctx context.Context) (domain.PriceQuote, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.quote.Value.IsZero() {
		return domain.PriceQuote{}, fmt.Errorf("no price observed yet")
	}
	return o.quote, nil
}

// SetPrice overrides the current reading. Used by the admin surface and in
// tests.
func (o *HTTPOracle) SetPrice(value decimal.Decimal, asOf time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quote = domain.PriceQuote{Value: value, AsOf: asOf}
}
