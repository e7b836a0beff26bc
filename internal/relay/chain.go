package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ErrAllFailed is wrapped into the error returned when every relay and
// the direct fallback failed. Callers must treat prices as unavailable
// for the cycle, never as zero.
var ErrAllFailed = fmt.Errorf("all relays and direct request failed")

// Chain fetches a target URL through an ordered relay list. The relay
// that served the last successful fetch is tried first on the next cold
// fetch; attempts are strictly sequential, never raced. When every relay
// fails, one direct (unrelayed) request is attempted as a last resort.
//
// An attempt fails on a non-success HTTP status, a relay envelope that
// will not unwrap, or a payload the caller's validate callback rejects.
// Relays routinely answer 200 with an HTML error page, so payload
// validation has to advance the chain like any transport failure.
type Chain struct {
	relays     []Relay
	httpClient *http.Client

	mu       sync.Mutex
	lastGood int // index into relays, -1 when none has succeeded yet
}

// NewChain builds a chain over relays with a per-attempt timeout.
func NewChain(relays []Relay, timeout time.Duration) *Chain {
	return &Chain{
		relays:     relays,
		httpClient: &http.Client{Timeout: timeout},
		lastGood:   -1,
	}
}

// Fetch retrieves target, returning the unwrapped upstream payload.
// validate (optional) inspects each attempt's payload; a rejected
// payload fails that attempt and the chain moves on without updating
// the last-successful relay.
func (c *Chain) Fetch(ctx context.Context, target string, validate func([]byte) error) ([]byte, error) {
	var lastErr error

	for _, i := range c.attemptOrder() {
		r := c.relays[i]
		payload, err := c.attemptRelayed(ctx, r, target, validate)
		if err == nil {
			c.remember(i)
			return payload, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("relay attempt failed", "relay", r.Name(), "error", err)
		lastErr = err
	}

	// Last resort: direct request. In most deployments this is blocked
	// upstream, but it costs one attempt.
	body, err := c.attempt(ctx, target)
	if err == nil && validate != nil {
		err = validate(body)
	}
	if err == nil {
		return body, nil
	}
	slog.Warn("direct fetch failed", "error", err)
	if lastErr == nil {
		lastErr = err
	}

	return nil, fmt.Errorf("%w: last error: %v", ErrAllFailed, lastErr)
}

func (c *Chain) attemptRelayed(ctx context.Context, r Relay, target string, validate func([]byte) error) ([]byte, error) {
	body, err := c.attempt(ctx, r.Wrap(target))
	if err != nil {
		return nil, err
	}
	payload, err := r.Unwrap(body)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// attemptOrder returns relay indices with the last-successful relay
// first and the rest in configured order.
func (c *Chain) attemptOrder() []int {
	c.mu.Lock()
	last := c.lastGood
	c.mu.Unlock()

	order := make([]int, 0, len(c.relays))
	if last >= 0 && last < len(c.relays) {
		order = append(order, last)
	}
	for i := range c.relays {
		if i != last {
			order = append(order, i)
		}
	}
	return order
}

func (c *Chain) remember(i int) {
	c.mu.Lock()
	c.lastGood = i
	c.mu.Unlock()
}

func (c *Chain) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return body, nil
}
