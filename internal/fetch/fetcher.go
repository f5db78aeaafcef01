package fetch

import (
	"context"
	"net/http"

	"github.com/bbernstein/layerjson/internal/models"
	"github.com/bbernstein/layerjson/pkg/http/client"
)

// Fetcher retrieves the record collection behind a URL. It must return
// promptly with ctx.Err() once ctx is canceled.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (models.Records, error)
}

// FetchFunc adapts a plain function to a Fetcher, for callers that produce
// records without a request.
type FetchFunc func(ctx context.Context, url string) (models.Records, error)

func (f FetchFunc) Fetch(ctx context.Context, url string) (models.Records, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches and decodes JSON records over HTTP.
type HTTPFetcher struct {
	client client.Interface
}

func NewHTTPFetcher(httpClient client.Interface) *HTTPFetcher {
	return &HTTPFetcher{client: httpClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (models.Records, error) {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, NewTransportError(url, 0, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewTransportError(url, resp.StatusCode, nil)
	}

	records, err := models.DecodeRecords(resp.Body)
	if err != nil {
		return nil, NewParseError(url, err)
	}

	return records, nil
}
