package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bbernstein/layerjson/internal/fetch"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = "search?lat1={minlat}&lat2={maxlat}&lon1={minlon}&lon2={maxlon}"

// controlledFetcher blocks every fetch until the test releases it by URL.
type controlledFetcher struct {
	mu      sync.Mutex
	pending map[string]chan fetchResult
	started chan string
}

type fetchResult struct {
	records models.Records
	err     error
}

func newControlledFetcher() *controlledFetcher {
	return &controlledFetcher{
		pending: make(map[string]chan fetchResult),
		started: make(chan string, 16),
	}
}

func (f *controlledFetcher) channel(url string) chan fetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.pending[url]
	if !ok {
		ch = make(chan fetchResult, 1)
		f.pending[url] = ch
	}
	return ch
}

// Fetch ignores ctx so a canceled request can still complete late.
func (f *controlledFetcher) Fetch(_ context.Context, url string) (models.Records, error) {
	ch := f.channel(url)
	f.started <- url
	res := <-ch
	return res.records, res.err
}

func (f *controlledFetcher) release(url string, records models.Records, err error) {
	f.channel(url) <- fetchResult{records: records, err: err}
}

type deliveries struct {
	mu  sync.Mutex
	got []models.Records
}

func (d *deliveries) deliver(records models.Records) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, records)
}

func (d *deliveries) all() []models.Records {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Records(nil), d.got...)
}

func testQuery(minLat float64) models.Query {
	return models.NewQuery(models.NewBounds(models.NewLatLng(minLat, 20), models.NewLatLng(minLat+1, 21)), 6)
}

func TestBuildURL(t *testing.T) {
	got, err := BuildURL(testTemplate, testQuery(10))
	require.NoError(t, err)
	assert.Equal(t, "search?lat1=10.000000&lat2=11.000000&lon1=20.000000&lon2=21.000000", got)
}

func TestNewControllerRejectsUnknownPlaceholder(t *testing.T) {
	_, err := NewController(newControlledFetcher(), "search?z={zoom}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{zoom}")
}

func TestIssueDeliversRecordsAndFiresHooks(t *testing.T) {
	fetcher := newControlledFetcher()
	var events []string
	var mu sync.Mutex
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	c, err := NewController(fetcher, testTemplate, WithHooks(Hooks{
		OnLoading: func(url string) { record("loading " + url) },
		OnLoaded:  func(records models.Records) { record("loaded") },
	}))
	require.NoError(t, err)

	d := &deliveries{}
	req, err := c.Issue(context.Background(), testQuery(10), func(r models.Records) {
		record("deliver")
		d.deliver(r)
	})
	require.NoError(t, err)
	assert.Equal(t, req, c.InFlight())
	assert.NotEmpty(t, req.ID)

	url := <-fetcher.started
	assert.Equal(t, req.URL, url)
	fetcher.release(url, models.Records{{"title": "a"}}, nil)
	c.Wait()

	assert.Nil(t, c.InFlight())
	require.Len(t, d.all(), 1)
	assert.Equal(t, models.Records{{"title": "a"}}, d.all()[0])
	assert.Equal(t, []string{"loading " + url, "loaded", "deliver"}, events)
}

func TestSecondIssueDiscardsFirstResult(t *testing.T) {
	fetcher := newControlledFetcher()
	c, err := NewController(fetcher, testTemplate)
	require.NoError(t, err)

	d := &deliveries{}
	first, err := c.Issue(context.Background(), testQuery(10), d.deliver)
	require.NoError(t, err)
	<-fetcher.started

	second, err := c.Issue(context.Background(), testQuery(30), d.deliver)
	require.NoError(t, err)
	<-fetcher.started
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second, c.InFlight())

	// the newer request finishes first, the stale one afterwards
	fetcher.release(second.URL, models.Records{{"title": "second"}}, nil)
	assert.Eventually(t, func() bool { return len(d.all()) == 1 }, time.Second, 5*time.Millisecond)
	fetcher.release(first.URL, models.Records{{"title": "first"}}, nil)
	c.Wait()

	got := d.all()
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0][0]["title"])
}

func TestStaleCompletionBeforeNewerIsDiscarded(t *testing.T) {
	fetcher := newControlledFetcher()
	c, err := NewController(fetcher, testTemplate)
	require.NoError(t, err)

	d := &deliveries{}
	first, err := c.Issue(context.Background(), testQuery(10), d.deliver)
	require.NoError(t, err)
	<-fetcher.started
	second, err := c.Issue(context.Background(), testQuery(30), d.deliver)
	require.NoError(t, err)
	<-fetcher.started

	fetcher.release(first.URL, models.Records{{"title": "first"}}, nil)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, d.all(), "superseded result must not be delivered")

	fetcher.release(second.URL, models.Records{{"title": "second"}}, nil)
	c.Wait()

	got := d.all()
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0][0]["title"])
}

func TestIssueCancelsPreviousContext(t *testing.T) {
	canceled := make(chan struct{})
	fetcher := fetch.FetchFunc(func(ctx context.Context, url string) (models.Records, error) {
		if url == "search?lat1=10.000000&lat2=11.000000&lon1=20.000000&lon2=21.000000" {
			<-ctx.Done()
			close(canceled)
			return nil, ctx.Err()
		}
		return models.Records{}, nil
	})
	c, err := NewController(fetcher, testTemplate)
	require.NoError(t, err)

	d := &deliveries{}
	_, err = c.Issue(context.Background(), testQuery(10), d.deliver)
	require.NoError(t, err)
	_, err = c.Issue(context.Background(), testQuery(30), d.deliver)
	require.NoError(t, err)

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("previous request was not canceled")
	}
	c.Wait()

	// only the second request is delivered; the canceled one is not an error delivery
	assert.Len(t, d.all(), 1)
}

func TestFailureDeliversEmptyRecords(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "transport failure", err: fetch.NewTransportError("u", 500, nil)},
		{name: "parse failure", err: fetch.NewParseError("u", errors.New("unexpected EOF"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded := false
			fetcher := fetch.FetchFunc(func(ctx context.Context, url string) (models.Records, error) {
				return nil, tt.err
			})
			c, err := NewController(fetcher, testTemplate, WithHooks(Hooks{
				OnLoaded: func(models.Records) { loaded = true },
			}))
			require.NoError(t, err)

			d := &deliveries{}
			_, err = c.Issue(context.Background(), testQuery(10), d.deliver)
			require.NoError(t, err)
			c.Wait()

			got := d.all()
			require.Len(t, got, 1)
			assert.NotNil(t, got[0])
			assert.Empty(t, got[0])
			assert.False(t, loaded, "dataloaded only fires on success")
		})
	}
}

func TestCancelDropsCompletion(t *testing.T) {
	fetcher := newControlledFetcher()
	c, err := NewController(fetcher, testTemplate)
	require.NoError(t, err)

	d := &deliveries{}
	req, err := c.Issue(context.Background(), testQuery(10), d.deliver)
	require.NoError(t, err)
	<-fetcher.started

	c.Cancel()
	assert.Nil(t, c.InFlight())

	fetcher.release(req.URL, models.Records{{"title": "late"}}, nil)
	c.Wait()
	assert.Empty(t, d.all())
}

func TestDeliverMayIssueAgain(t *testing.T) {
	fetcher := fetch.FetchFunc(func(ctx context.Context, url string) (models.Records, error) {
		return models.Records{{"url": url}}, nil
	})
	c, err := NewController(fetcher, testTemplate)
	require.NoError(t, err)

	d := &deliveries{}
	done := make(chan struct{})
	_, err = c.Issue(context.Background(), testQuery(10), func(r models.Records) {
		d.deliver(r)
		_, err := c.Issue(context.Background(), testQuery(30), func(r models.Records) {
			d.deliver(r)
			close(done)
		})
		assert.NoError(t, err)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("re-entrant issue deadlocked")
	}
	c.Wait()
	assert.Len(t, d.all(), 2)
}
