package modrinth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/modrinth-pack-builder/internal/environment"
)

func okBody(payload string) *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(payload)), Header: make(http.Header)}
}

func TestClientDoSetsHeaders(t *testing.T) {
	t.Setenv("MODRINTH_API_KEY", "secret-key")
	doer := &recordingDoer{response: okBody("{}")}

	request, err := http.NewRequest(http.MethodGet, "https://api.modrinth.com/v2/project/x", nil)
	require.NoError(t, err)

	response, err := NewClient(doer).Do(request)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	assert.Equal(t, environment.UserAgent(), doer.request.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", doer.request.Header.Get("Accept"))
	assert.Equal(t, "secret-key", doer.request.Header.Get("Authorization"))
}

func TestClientDoOmitsEmptyAuthorization(t *testing.T) {
	t.Setenv("MODRINTH_API_KEY", "")
	doer := &recordingDoer{response: okBody("{}")}

	request, err := http.NewRequest(http.MethodGet, "https://api.modrinth.com/v2/search", nil)
	require.NoError(t, err)

	_, err = NewClient(doer).Do(request)
	require.NoError(t, err)
	_, present := doer.request.Header["Authorization"]
	assert.False(t, present)
}

func TestClientDoPropagatesErrors(t *testing.T) {
	request, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://api.modrinth.com/v2/search", nil)
	require.NoError(t, err)

	_, err = NewClient(errorDoer{err: errors.New("offline")}).Do(request)
	assert.ErrorContains(t, err, "offline")
}

func TestGetBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.modrinth.com", GetBaseURL())
}
