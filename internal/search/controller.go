// Package search holds the root UI controller: the one owner of query,
// results, loading/error flags, the selected movie and pending notices.
package search

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mark-c-hall/movie-search/internal/models"
)

const instrumentationName = "github.com/mark-c-hall/movie-search/internal/search"

const (
	outcomeResults = "results"
	outcomeEmpty   = "empty"
	outcomeError   = "error"
	outcomeStale   = "stale"
)

var ErrMovieNotFound = errors.New("movie not in current results")

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	fetchCounter, _ = meter.Int64Counter("moviesearch.search.fetches",
		metric.WithDescription("Settled movie searches by outcome."))
	fetchDuration, _ = meter.Float64Histogram("moviesearch.search.duration",
		metric.WithDescription("Time from fetch start to settlement."),
		metric.WithUnit("s"))
)

// Fetcher is the movie service the controller searches through.
type Fetcher interface {
	SearchMovies(ctx context.Context, query string) ([]models.Movie, error)
}

type Controller struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	cancelFetch context.CancelFunc
	subscribers map[int]chan struct{}
	nextSubID   int
	closed      bool

	inflight sync.WaitGroup
}

func NewController(fetcher Fetcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		fetcher:     fetcher,
		logger:      logger,
		state:       State{Movies: []models.Movie{}},
		subscribers: make(map[int]chan struct{}),
	}
}

// HandleSearch makes value the current query. Submitting the current query
// again is a no-op. A non-empty new query resets the flags and results and
// starts a fetch in the background; the empty query only hides the grid.
//
// The fetch outlives ctx's cancellation but keeps its values.
func (c *Controller) HandleSearch(ctx context.Context, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || value == c.state.Query {
		return
	}
	c.state.Query = value

	if value == "" {
		c.notifyLocked()
		return
	}

	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.generation++
	gen := c.generation

	c.state.IsError = false
	c.state.IsLoading = true
	c.state.Movies = []models.Movie{}

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelFetch = cancel
	c.inflight.Add(1)
	c.notifyLocked()

	go c.fetch(fetchCtx, cancel, gen, value)
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer c.inflight.Done()
	defer cancel()

	ctx, span := tracer.Start(ctx, "search.fetch", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.Int64("search.generation", int64(gen)),
	))
	defer span.End()

	start := time.Now()
	movies, err := c.fetcher.SearchMovies(ctx, query)
	elapsed := time.Since(start)

	outcome := c.settle(gen, query, movies, err)

	span.SetAttributes(attribute.String("search.outcome", outcome), attribute.Int("search.results", len(movies)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	fetchCounter.Add(ctx, 1, attrs)
	fetchDuration.Record(ctx, elapsed.Seconds(), attrs)

	switch outcome {
	case outcomeError:
		c.logger.ErrorContext(ctx, "movie search failed", "query", query, "error", err, "duration_ms", elapsed.Milliseconds())
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("search.outcome", outcome)
			scope.SetExtra("search.query", query)
			sentry.CaptureException(err)
		})
	case outcomeStale:
		c.logger.DebugContext(ctx, "discarded stale search result", "query", query, "generation", gen)
	default:
		c.logger.InfoContext(ctx, "movie search settled", "query", query, "results", len(movies), "duration_ms", elapsed.Milliseconds())
	}
}

// settle applies a fetch outcome. Only the latest generation may touch the
// state, and only while its query is still current; if the query was
// cleared meanwhile the loading flag is dropped and the result discarded.
func (c *Controller) settle(gen uint64, query string, movies []models.Movie, err error) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		return outcomeStale
	}
	c.cancelFetch = nil

	if c.state.Query != query {
		c.state.IsLoading = false
		c.notifyLocked()
		return outcomeStale
	}

	outcome := outcomeResults
	switch {
	case err != nil:
		c.state.IsError = true
		outcome = outcomeError
	case len(movies) == 0:
		c.state.Notices = append(c.state.Notices, Notice{Kind: NoticeError, Message: NoResultsMessage})
		outcome = outcomeEmpty
	default:
		c.state.Movies = slices.Clone(movies)
	}

	c.state.IsLoading = false
	c.notifyLocked()
	return outcome
}

func (c *Controller) SelectMovie(movie models.Movie) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Selected = &movie
	c.notifyLocked()
}

// SelectMovieByID selects the movie with the given id from the current
// results.
func (c *Controller) SelectMovieByID(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.state.Movies, func(m models.Movie) bool { return m.ID == id })
	if i < 0 {
		return ErrMovieNotFound
	}
	movie := c.state.Movies[i]
	c.state.Selected = &movie
	c.notifyLocked()
	return nil
}

func (c *Controller) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Selected = nil
	c.notifyLocked()
}

// Snapshot returns a deep copy of the current state, pending notices
// included.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// TakeNotices returns the pending notices and clears them.
func (c *Controller) TakeNotices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	notices := c.state.Notices
	c.state.Notices = nil
	if notices == nil {
		return []Notice{}
	}
	return notices
}

// Subscribe returns a channel that receives a signal after every state
// change. Signals coalesce: a slow reader sees at least one pending signal,
// never a backlog. The returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan struct{}, 1)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(ch)
			}
		})
	}
}

// Wait blocks until every started fetch has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close cancels the in-flight fetch, waits for it and releases subscribers.
// Later calls to HandleSearch are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
	c.mu.Unlock()

	c.inflight.Wait()
}

func (c *Controller) notifyLocked() {
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
