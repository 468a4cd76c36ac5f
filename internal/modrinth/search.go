package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

const DefaultSearchLimit = 5

type SearchHit struct {
	ProjectID   string      `json:"project_id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	ClientSide  string      `json:"client_side"`
	ServerSide  string      `json:"server_side"`
	ProjectType ProjectType `json:"project_type"`
}

type SearchResult struct {
	Hits      []SearchHit `json:"hits"`
	Offset    int         `json:"offset"`
	Limit     int         `json:"limit"`
	TotalHits int         `json:"total_hits"`
}

// SearchQuery narrows a full text search. Facets use Modrinth's nested array
// form where inner arrays are OR-ed and outer entries AND-ed.
type SearchQuery struct {
	Query  string
	Limit  int
	Facets [][]string
}

// ModSearch is the lookup used when an identifier is not a known slug.
func ModSearch(query string) *SearchQuery {
	return &SearchQuery{
		Query:  query,
		Limit:  DefaultSearchLimit,
		Facets: [][]string{{"project_type:" + string(Mod)}},
	}
}

type SearchAPIError struct {
	Query string
	Err   error
}

func (searchErr *SearchAPIError) Error() string {
	return fmt.Sprintf("Search for %q failed due to an api error on Modrinth: %v", searchErr.Query, searchErr.Err)
}

func (searchErr *SearchAPIError) Unwrap() error {
	return searchErr.Err
}

func SearchAPIErrorWrap(err error, query string) error {
	return &SearchAPIError{Query: query, Err: err}
}

func SearchProjects(ctx context.Context, search *SearchQuery, client httpclient.Doer) (result *SearchResult, err error) {
	ctx, span := perf.StartSpan(ctx, "api.modrinth.search", perf.WithAttributes(attribute.String("query", search.Query)))
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	endpoint, err := url.Parse(fmt.Sprintf("%s/v2/search", GetBaseURL()))
	if err != nil {
		return nil, SearchAPIErrorWrap(err, search.Query)
	}

	query := url.Values{}
	query.Set("query", search.Query)
	if search.Limit > 0 {
		query.Set("limit", strconv.Itoa(search.Limit))
	}
	if len(search.Facets) > 0 {
		facets, marshalErr := json.Marshal(search.Facets)
		if marshalErr != nil {
			return nil, SearchAPIErrorWrap(marshalErr, search.Query)
		}
		query.Set("facets", string(facets))
	}
	endpoint.RawQuery = query.Encode()

	request, err := newRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, SearchAPIErrorWrap(err, search.Query)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, SearchAPIErrorWrap(httpclient.WrapTimeoutError(err), search.Query)
	}
	defer closeBody(response.Body, &err)

	if response.StatusCode != http.StatusOK {
		return nil, SearchAPIErrorWrap(errors.Errorf("unexpected status code: %d", response.StatusCode), search.Query)
	}

	result = &SearchResult{}
	if decodeErr := json.NewDecoder(response.Body).Decode(result); decodeErr != nil {
		return nil, SearchAPIErrorWrap(fmt.Errorf("decode search result: %w", decodeErr), search.Query)
	}
	span.SetAttributes(attribute.Int("hits", len(result.Hits)))
	return result, nil
}
