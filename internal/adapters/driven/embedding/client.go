package embedding

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.EmbeddingService = (*Client)(nil)

// Default retry and pacing values.
const (
	DefaultMaxAttempts       = 3
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerMinute = 60
	DefaultBaseDelay         = 100 * time.Millisecond
	DefaultMaxDelay          = 5 * time.Second
)

// Options configures a Client. Zero values take the defaults above.
type Options struct {
	// MaxAttempts is the total number of calls made for one request,
	// the first included. Negative means a single attempt.
	MaxAttempts int

	// Timeout bounds each attempt.
	Timeout time.Duration

	// RequestsPerMinute paces calls to the provider. Negative disables pacing.
	RequestsPerMinute int

	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Client adds pacing, timeouts and retries of transient failures to a provider.
type Client struct {
	inner   driven.EmbeddingService
	opts    Options
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient wraps inner.
func NewClient(inner driven.EmbeddingService, opts Options) *Client {
	if opts.MaxAttempts < 0 {
		opts.MaxAttempts = 1
	} else if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(opts.RequestsPerMinute) / 60)
		limiter = rate.NewLimiter(perSecond, max(1, opts.RequestsPerMinute/10))
	}

	return &Client{
		inner:   inner,
		opts:    opts,
		limiter: limiter,
		sleep:   sleepCtx,
	}
}

// Embed generates one embedding, retrying transient failures.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		vec, err = c.inner.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch generates embeddings for texts, retrying transient failures.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		vecs, err = c.inner.EmbedBatch(ctx, texts)
		return err
	})
	return vecs, err
}

// Dimensions returns the wrapped provider's vector size.
func (c *Client) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the wrapped provider's model.
func (c *Client) ModelName() string {
	return c.inner.ModelName()
}

// Ping checks the provider once, without retries.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	return c.inner.Ping(ctx)
}

// Close closes the wrapped provider.
func (c *Client) Close() error {
	return c.inner.Close()
}

func (c *Client) do(ctx context.Context, call func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmbeddingTransient, werr)
		}

		err = c.attempt(ctx, call)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrEmbeddingTransient) || attempt+1 >= c.opts.MaxAttempts {
			return err
		}

		ra := RetryAfter(err)
		if ra > c.opts.MaxDelay {
			logger.Debug("embedding provider asked to wait %s, giving up: %v", ra, err)
			return err
		}
		delay := max(c.backoff(attempt), ra)
		logger.Debug("embedding attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return err
		}
	}
}

func (c *Client) attempt(ctx context.Context, call func(context.Context) error) error {
	actx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	err := call(actx)
	if err == nil {
		return nil
	}
	// The attempt timed out while the caller is still waiting.
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil &&
		!errors.Is(err, domain.ErrEmbeddingTransient) {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingTransient, err)
	}
	return err
}

// backoff returns BaseDelay*2^attempt with up to 50% jitter, capped at MaxDelay.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.BaseDelay << min(attempt, 16)
	if d <= 0 || d > c.opts.MaxDelay {
		d = c.opts.MaxDelay
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2 + 1))
	return min(d+jitter, c.opts.MaxDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
