package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/meza/modrinth-pack-builder/internal/perf"
)

type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

type RetryConfig struct {
	MaxRetries int
	Interval   time.Duration
}

// Options maps the http.* configuration keys onto a client.
// Zero values mean no timeout, no retries and no rate limit.
type Options struct {
	Timeout       time.Duration
	Retries       int
	RetryInterval time.Duration
	RateLimit     float64
}

type RLHTTPClient struct {
	client      *http.Client
	Ratelimiter *rate.Limiter
	RetryConfig *RetryConfig
}

func (client *RLHTTPClient) Do(request *http.Request) (*http.Response, error) {
	ctx, requestSpan := perf.StartSpan(request.Context(), perf.NetworkSpanName,
		perf.WithAttributes(
			attribute.String("url", request.URL.String()),
			attribute.String("method", request.Method),
			attribute.String("host", request.URL.Host),
		),
	)
	defer requestSpan.End()
	retryConfig := client.retryConfig()

	var response *http.Response
	var err error

	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		retry := false
		response, retry, err = client.doAttempt(ctx, request, attempt, retryConfig)
		if err != nil {
			requestSpan.RecordError(err)
			return nil, err
		}
		if !retry {
			break
		}
		if waitErr := sleepContext(ctx, retryConfig.Interval); waitErr != nil {
			requestSpan.RecordError(waitErr)
			return nil, WrapRequestTimeout(request, waitErr)
		}
	}

	requestSpan.SetAttributes(attribute.Int("status", response.StatusCode))
	return response, nil
}

func (client *RLHTTPClient) retryConfig() RetryConfig {
	if client.RetryConfig != nil {
		return *client.RetryConfig
	}
	return *NoRetries()
}

func (client *RLHTTPClient) doAttempt(
	ctx context.Context,
	request *http.Request,
	attempt int,
	retryConfig RetryConfig,
) (*http.Response, bool, error) {
	attemptCtx, attemptSpan := perf.StartSpan(ctx, "net.http.request.attempt",
		perf.WithAttributes(attribute.Int("attempt", attempt)),
	)
	defer attemptSpan.End()

	if waitErr := client.Ratelimiter.Wait(attemptCtx); waitErr != nil {
		attemptSpan.RecordError(waitErr)
		if IsTimeoutError(waitErr) {
			return nil, false, WrapRequestTimeout(request, waitErr)
		}
		return nil, false, fmt.Errorf("rate limit burst exceeded %w", waitErr)
	}

	response, err := client.client.Do(request.WithContext(attemptCtx))
	if err != nil {
		attemptSpan.RecordError(err)
		return nil, false, WrapRequestTimeout(request, err)
	}
	attemptSpan.SetAttributes(attribute.Int("status", response.StatusCode))

	if shouldRetry(response, attempt, retryConfig) {
		if drainErr := drainAndClose(response.Body); drainErr != nil {
			attemptSpan.SetAttributes(attribute.String("cleanup_error", drainErr.Error()))
		}
		return nil, true, nil
	}

	return response, false, nil
}

func shouldRetry(response *http.Response, attempt int, retryConfig RetryConfig) bool {
	if attempt >= retryConfig.MaxRetries {
		return false
	}
	return response.StatusCode == http.StatusTooManyRequests ||
		(response.StatusCode >= 500 && response.StatusCode < 600)
}

func sleepContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func NewRLClient(limiter *rate.Limiter) *RLHTTPClient {
	return &RLHTTPClient{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Ratelimiter: limiter,
	}
}

// New builds the shared client used for both registry calls and downloads.
func New(options Options) *RLHTTPClient {
	limit := rate.Inf
	burst := 0
	if options.RateLimit > 0 {
		limit = rate.Limit(options.RateLimit)
		burst = 1
	}

	client := NewRLClient(rate.NewLimiter(limit, burst))
	client.client.Timeout = options.Timeout

	retries := options.Retries
	if retries < 0 {
		retries = 0
	}
	interval := options.RetryInterval
	if interval <= 0 && retries > 0 {
		interval = time.Second
	}
	client.RetryConfig = &RetryConfig{MaxRetries: retries, Interval: interval}
	return client
}

func NoRetries() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 0,
		Interval:   0,
	}
}

func drainAndClose(body io.ReadCloser) error {
	if body == nil {
		return nil
	}

	_, readErr := io.Copy(io.Discard, body)
	closeErr := body.Close()
	return errors.Join(readErr, closeErr)
}
