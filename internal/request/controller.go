package request

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bbernstein/layerjson/internal/fetch"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrStaleResponse marks a completion for a request that is no longer the
// current one. It is only logged.
var ErrStaleResponse = errors.New("stale response")

// Request identifies one issued fetch.
type Request struct {
	ID  uuid.UUID
	URL string

	cancel context.CancelFunc
}

// Hooks are notified around every fetch. They carry no control effect.
type Hooks struct {
	OnLoading func(url string)
	OnLoaded  func(records models.Records)
}

// Controller owns at most one outstanding fetch. Issuing a new one cancels
// the previous one, and a completion is only delivered while its request is
// still the current one.
type Controller struct {
	fetcher  fetch.Fetcher
	template string
	hooks    Hooks
	logger   zerolog.Logger

	mu       sync.Mutex
	inflight *Request

	// applyMu serializes accepted completions so an older result can never
	// be delivered after a newer one.
	applyMu sync.Mutex
	wg      sync.WaitGroup
}

type Option func(*Controller)

func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		if h.OnLoading != nil {
			c.hooks.OnLoading = h.OnLoading
		}
		if h.OnLoaded != nil {
			c.hooks.OnLoaded = h.OnLoaded
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController checks the URL template once so BuildURL cannot fail later.
func NewController(fetcher fetch.Fetcher, urlTemplate string, opts ...Option) (*Controller, error) {
	if _, err := BuildURL(urlTemplate, models.Query{}); err != nil {
		return nil, fmt.Errorf("checking url template: %w", err)
	}

	c := &Controller{
		fetcher:  fetcher,
		template: urlTemplate,
		hooks: Hooks{
			OnLoading: func(string) {},
			OnLoaded:  func(models.Records) {},
		},
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BuildURL fills the bbox placeholders of tmpl from q.
func BuildURL(tmpl string, q models.Query) (string, error) {
	return models.ExpandTemplate(tmpl, q.Values())
}

// Issue cancels the current request, if any, and starts fetching q. deliver
// runs once with the fetched records, or with an empty collection when the
// fetch fails, unless the request is superseded or canceled first.
func (c *Controller) Issue(ctx context.Context, q models.Query, deliver func(models.Records)) (*Request, error) {
	url, err := BuildURL(c.template, q)
	if err != nil {
		return nil, fmt.Errorf("building request url: %w", err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	req := &Request{
		ID:     uuid.New(),
		URL:    url,
		cancel: cancel,
	}

	c.mu.Lock()
	if prev := c.inflight; prev != nil {
		prev.cancel()
		c.logger.Debug().
			Str("request_id", prev.ID.String()).
			Str("url", prev.URL).
			Msg("Canceled in-flight request")
	}
	c.inflight = req
	c.mu.Unlock()

	c.hooks.OnLoading(url)
	c.logger.Debug().Str("request_id", req.ID.String()).Str("url", url).Msg("Issuing request")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		records, err := c.fetcher.Fetch(reqCtx, url)
		c.complete(req, records, err, deliver)
	}()

	return req, nil
}

func (c *Controller) complete(req *Request, records models.Records, err error, deliver func(models.Records)) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	current := c.inflight == req
	if current {
		c.inflight = nil
	}
	c.mu.Unlock()
	req.cancel()

	if !current {
		c.logger.Debug().
			Err(ErrStaleResponse).
			Str("request_id", req.ID.String()).
			Str("url", req.URL).
			Msg("Discarding completion")
		return
	}

	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("request_id", req.ID.String()).
			Str("url", req.URL).
			Msg("Fetch failed, clearing markers")
		records = models.Records{}
	} else {
		c.hooks.OnLoaded(records)
	}

	deliver(records)
}

// Cancel drops the current request. Its completion, if it still arrives, is
// discarded.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
}

// InFlight returns the current request, or nil.
func (c *Controller) InFlight() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inflight
}

// Wait blocks until every issued fetch has completed or been discarded.
func (c *Controller) Wait() {
	c.wg.Wait()
}
