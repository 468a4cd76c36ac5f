// Package modrinth is a minimal client for the Modrinth v2 REST API.
package modrinth

import (
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/environment"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

const baseURL = "https://api.modrinth.com"

var newRequestWithContext = http.NewRequestWithContext

type Client struct {
	client httpclient.Doer
}

func NewClient(doer httpclient.Doer) *Client {
	return &Client{client: doer}
}

// Do decorates every registry request with the identifying headers Modrinth
// asks API consumers to send. Authorization is only sent when a key is set.
func (modrinthClient *Client) Do(request *http.Request) (*http.Response, error) {
	ctx, span := perf.StartSpan(request.Context(), "api.modrinth.http.request", perf.WithAttributes(attribute.String("url", request.URL.String())))
	defer span.End()

	request.Header.Set("User-Agent", environment.UserAgent())
	request.Header.Set("Accept", "application/json")
	if apiKey := environment.ModrinthAPIKey(); apiKey != "" {
		request.Header.Set("Authorization", apiKey)
	}

	response, err := modrinthClient.client.Do(request.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("status", response.StatusCode))
	return response, nil
}

func GetBaseURL() string {
	return baseURL
}

func closeBody(body io.Closer, err *error) {
	if body == nil {
		return
	}
	if closeErr := body.Close(); closeErr != nil {
		*err = errors.Join(*err, closeErr)
	}
}
