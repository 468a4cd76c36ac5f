package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/meza/modrinth-pack-builder/internal/perf"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (roundTripper roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return roundTripper(req)
}

type sequenceTransport struct {
	responses []*http.Response
	callCount int
}

func (transport *sequenceTransport) RoundTrip(*http.Request) (*http.Response, error) {
	if transport.callCount >= len(transport.responses) {
		return nil, fmt.Errorf("no response configured for call %d", transport.callCount)
	}
	resp := transport.responses[transport.callCount]
	transport.callCount++
	return resp, nil
}

type trackingBody struct {
	reader *strings.Reader
	read   bool
	closed bool
}

func newTrackingBody(payload string) *trackingBody {
	return &trackingBody{reader: strings.NewReader(payload)}
}

func (body *trackingBody) Read(p []byte) (int, error) {
	n, err := body.reader.Read(p)
	if n > 0 {
		body.read = true
	}
	return n, err
}

func (body *trackingBody) Close() error {
	body.closed = true
	return nil
}

func closeResponseBody(t *testing.T, response *http.Response) {
	t.Helper()
	if response == nil || response.Body == nil {
		return
	}
	if err := response.Body.Close(); err != nil {
		t.Fatalf("failed to close response body: %v", err)
	}
}

func newOKServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(server.Close)
	return server
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return request
}

func TestRLHTTPClient_DoWithRateLimiting(t *testing.T) {
	server := newOKServer(t)

	client := New(Options{RateLimit: 2})
	request := newRequest(t, server.URL)

	start := time.Now()
	for index := 0; index < 3; index++ {
		response, err := client.Do(request)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode)
		closeResponseBody(t, response)
	}
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestRLHTTPClient_DoWithoutRateLimiting(t *testing.T) {
	server := newOKServer(t)

	client := New(Options{})
	request := newRequest(t, server.URL)

	start := time.Now()
	for index := 0; index < 5; index++ {
		response, err := client.Do(request)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode)
		closeResponseBody(t, response)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestRLHTTPClient_DefaultsToNoRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewRLClient(rate.NewLimiter(rate.Inf, 0))
	response, err := client.Do(newRequest(t, server.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, response.StatusCode)
	closeResponseBody(t, response)
	assert.Equal(t, 1, attempts)
}

func TestRLHTTPClient_RetriesServerErrorsAndTooManyRequests(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		switch attempts {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)

	client := New(Options{Retries: 3, RetryInterval: 10 * time.Millisecond})
	response, err := client.Do(newRequest(t, server.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	closeResponseBody(t, response)
	assert.Equal(t, 3, attempts)
}

func TestRLHTTPClient_NoRetriesOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := New(Options{Retries: 3, RetryInterval: time.Second})
	response, err := client.Do(newRequest(t, server.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	closeResponseBody(t, response)
	assert.Equal(t, 1, attempts)
}

func TestRLHTTPClient_DoWithRateLimitError(t *testing.T) {
	server := newOKServer(t)

	client := NewRLClient(rate.NewLimiter(1, 0))
	client.RetryConfig = NoRetries()

	response, err := client.Do(newRequest(t, server.URL))
	assert.Nil(t, response)
	assert.ErrorContains(t, err, "rate limit burst exceeded")
}

func TestRLHTTPClient_DoWithTransportError(t *testing.T) {
	client := New(Options{Retries: 3})
	client.client = &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("round trip error")
		}),
	}

	response, err := client.Do(newRequest(t, "https://example.com"))
	assert.Nil(t, response)
	assert.ErrorContains(t, err, "round trip error")
}

func TestRLHTTPClient_TimeoutIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := New(Options{Timeout: 50 * time.Millisecond})
	response, err := client.Do(newRequest(t, server.URL))
	assert.Nil(t, response)
	var timeoutErr *TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestRLHTTPClient_CancelledContextStopsRetryWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(Options{Retries: 5, RetryInterval: time.Minute})
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	start := time.Now()
	response, err := client.Do(request)
	assert.Nil(t, response)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRLHTTPClient_ClosesResponseBodiesBeforeRetry(t *testing.T) {
	firstFailureBody := newTrackingBody("first failure body")
	secondFailureBody := newTrackingBody("second failure body")
	successBody := newTrackingBody("success body")

	transport := &sequenceTransport{
		responses: []*http.Response{
			{StatusCode: http.StatusInternalServerError, Body: firstFailureBody, Header: make(http.Header)},
			{StatusCode: http.StatusBadGateway, Body: secondFailureBody, Header: make(http.Header)},
			{StatusCode: http.StatusOK, Body: successBody, Header: make(http.Header)},
		},
	}

	client := NewRLClient(rate.NewLimiter(rate.Inf, 0))
	client.RetryConfig = &RetryConfig{MaxRetries: 2, Interval: 0}
	client.client = &http.Client{Transport: transport}

	resp, err := client.Do(newRequest(t, "https://example.com/retry"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 3, transport.callCount)
	assert.True(t, firstFailureBody.closed)
	assert.True(t, secondFailureBody.closed)
	assert.True(t, firstFailureBody.read)
	assert.True(t, secondFailureBody.read)
	assert.False(t, successBody.closed)
}

func TestRLHTTPClient_RecordsRequestSpans(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)
	require.NoError(t, perf.Init(perf.Config{Enabled: true}))

	server := newOKServer(t)
	response, err := New(Options{}).Do(newRequest(t, server.URL))
	require.NoError(t, err)
	closeResponseBody(t, response)

	spans, err := perf.GetSpans()
	require.NoError(t, err)
	requestSpan, ok := perf.FindSpanByName(spans, perf.NetworkSpanName)
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), requestSpan.Attributes["status"])
	_, ok = perf.FindSpanByName(spans, "net.http.request.attempt")
	assert.True(t, ok)
}

func TestNewAppliesOptions(t *testing.T) {
	client := New(Options{Timeout: 3 * time.Second, Retries: 2, RateLimit: 5})
	assert.Equal(t, 3*time.Second, client.client.Timeout)
	assert.Equal(t, 2, client.RetryConfig.MaxRetries)
	assert.Equal(t, time.Second, client.RetryConfig.Interval)
	assert.Equal(t, rate.Limit(5), client.Ratelimiter.Limit())

	unlimited := New(Options{Retries: -1})
	assert.Equal(t, rate.Inf, unlimited.Ratelimiter.Limit())
	assert.Equal(t, 0, unlimited.RetryConfig.MaxRetries)
	assert.Equal(t, time.Duration(0), unlimited.client.Timeout)
}

type errorBody struct {
	readErr  error
	closeErr error
	closed   bool
}

func (body *errorBody) Read([]byte) (int, error) {
	if body.readErr != nil {
		return 0, body.readErr
	}
	return 0, io.EOF
}

func (body *errorBody) Close() error {
	body.closed = true
	return body.closeErr
}

func TestDrainAndClose(t *testing.T) {
	assert.NoError(t, drainAndClose(nil))

	readErr := errors.New("read failed")
	closeErr := errors.New("close failed")
	body := &errorBody{readErr: readErr, closeErr: closeErr}

	err := drainAndClose(body)
	assert.ErrorIs(t, err, readErr)
	assert.ErrorIs(t, err, closeErr)
	assert.True(t, body.closed)
}
