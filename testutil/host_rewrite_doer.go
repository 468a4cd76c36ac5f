// Package testutil holds shared test helpers.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/meza/modrinth-pack-builder/internal/httpclient"
)

// OriginalHostHeader carries the host a request was addressed to before it
// was redirected to a test server.
const OriginalHostHeader = "X-Original-Host"

// HostRewriteDoer sends every request to one test server while keeping the
// path and query. Real API and CDN URLs can be used unchanged in tests.
type HostRewriteDoer struct {
	base *url.URL
	next httpclient.Doer
}

func NewHostRewriteDoer(serverURL string, next httpclient.Doer) (*HostRewriteDoer, error) {
	if next == nil {
		return nil, fmt.Errorf("next doer is nil")
	}

	base, err := url.Parse(serverURL)
	switch {
	case err != nil:
		return nil, fmt.Errorf("parse server url: %w", err)
	case base.Scheme == "" || base.Host == "":
		return nil, fmt.Errorf("server url %q must include scheme and host", serverURL)
	}

	return &HostRewriteDoer{base: base, next: next}, nil
}

func MustNewHostRewriteDoer(serverURL string, next httpclient.Doer) *HostRewriteDoer {
	doer, err := NewHostRewriteDoer(serverURL, next)
	if err != nil {
		panic(err)
	}
	return doer
}

// ServerDoer routes requests to server using its own client.
func ServerDoer(server *httptest.Server) *HostRewriteDoer {
	return MustNewHostRewriteDoer(server.URL, server.Client())
}

func (doer *HostRewriteDoer) Do(req *http.Request) (*http.Response, error) {
	rewritten := req.Clone(req.Context())
	rewritten.Header.Set(OriginalHostHeader, req.URL.Host)
	rewritten.URL.Scheme = doer.base.Scheme
	rewritten.URL.Host = doer.base.Host
	rewritten.Host = doer.base.Host
	return doer.next.Do(rewritten)
}
