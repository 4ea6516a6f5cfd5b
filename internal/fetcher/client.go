package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"campaign_builder/internal/domain"
)

const (
	DefaultBaseDelay = 2 * time.Second
	DefaultMaxPolls  = 10
	DefaultTimeout   = 30 * time.Second
	DefaultSentinel  = "Workflow was started"
)

// Validator checks one decoded element and maps it to T. Elements are
// decoded with json.Number for numbers.
type Validator[T any] func(element any) (T, error)

// Config holds the endpoint settings of one client.
type Config struct {
	Name      string
	URL       string
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxPolls  int
	Sentinel  string
}

type settings struct {
	httpClient *http.Client
	now        func() time.Time
	after      func(time.Duration) <-chan time.Time
}

type Option func(*settings)

// WithHTTPClient replaces the default client built from Config.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithClock sets the time source used for LastFetchedAt and NextAttemptAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithAfter sets the timer used between workflow polls.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(s *settings) { s.after = after }
}

// Client fetches one remote collection and keeps its SyncState. It is safe
// for concurrent use; only one fetch runs at a time.
type Client[T any] struct {
	name       string
	url        string
	sentinel   string
	baseDelay  time.Duration
	maxPolls   int
	validate   Validator[T]
	httpClient *http.Client
	now        func() time.Time
	after      func(time.Duration) <-chan time.Time
	logger     *slog.Logger

	mu        sync.Mutex
	state     domain.SyncState[T]
	settled   domain.SyncState[T]
	gen       uint64
	inFlight  bool
	cancel    context.CancelFunc
	closed    bool
	observers map[int]func(domain.SyncState[T])
	nextObs   int
}

// New creates a client for cfg.URL that validates elements with validate.
func New[T any](cfg Config, validate Validator[T], logger *slog.Logger, opts ...Option) *Client[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	if cfg.Sentinel == "" {
		cfg.Sentinel = DefaultSentinel
	}

	s := settings{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		after:      time.After,
	}
	for _, opt := range opts {
		opt(&s)
	}

	initial := domain.SyncState[T]{Items: []T{}, Phase: domain.PhaseIdle}

	return &Client[T]{
		name:       cfg.Name,
		url:        cfg.URL,
		sentinel:   cfg.Sentinel,
		baseDelay:  cfg.BaseDelay,
		maxPolls:   cfg.MaxPolls,
		validate:   validate,
		httpClient: s.httpClient,
		now:        s.now,
		after:      s.after,
		logger:     logger.With("source", cfg.Name),
		state:      initial,
		settled:    initial.Clone(),
		observers:  make(map[int]func(domain.SyncState[T])),
	}
}

// Name returns the configured source name.
func (c *Client[T]) Name() string {
	return c.name
}

// State returns a copy of the current state.
func (c *Client[T]) State() domain.SyncState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe registers fn to receive every state transition. Callbacks run on
// the fetching goroutine and must not call Fetch.
func (c *Client[T]) Subscribe(fn func(domain.SyncState[T])) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Fetch loads the collection and blocks until the run settles.
//
// While a run is outstanding a call without force returns the current state
// untouched. With force the outstanding run is cancelled and its outcome
// ignored. Cancelling ctx stops polling and restores the state held before
// the call.
func (c *Client[T]) Fetch(ctx context.Context, force bool) domain.SyncState[T] {
	c.mu.Lock()
	if c.closed || (c.inFlight && !force) {
		st, closed := c.state.Clone(), c.closed
		c.mu.Unlock()
		c.logger.Debug("fetch skipped", "phase", st.Phase, "closed", closed)
		return st
	}

	if c.inFlight {
		c.cancel()
		c.logger.Info("superseding outstanding fetch", "phase", c.state.Phase)
	} else {
		c.settled = c.state.Clone()
	}

	c.gen++
	gen := c.gen
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inFlight = true

	c.state.Phase = domain.PhaseLoading
	c.state.RetryCount = 0
	c.state.LastError = ""
	c.state.Err = nil
	c.state.NextAttemptAt = nil
	snap, obs := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(obs, snap)
	defer cancel()

	c.logger.Debug("fetch started", "url", c.url, "force", force)
	c.run(runCtx, gen)

	return c.State()
}

// Close stops any outstanding run. Later results are discarded and further
// fetches are no-ops.
func (c *Client[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.inFlight = false
	c.observers = make(map[int]func(domain.SyncState[T]))
}

type outcome[T any] struct {
	pending bool
	items   []T
	dropped int
	err     error
}

func (c *Client[T]) run(ctx context.Context, gen uint64) {
	out := c.attempt(ctx)
	if !out.pending {
		c.settle(ctx, gen, 0, out)
		return
	}

	c.logger.Info("workflow started, polling for data", "max_polls", c.maxPolls)

	for n := 1; n <= c.maxPolls; n++ {
		delay := c.baseDelay * time.Duration(n)
		next := c.now().Add(delay)
		retries := n - 1
		if !c.update(gen, func(s *domain.SyncState[T]) {
			s.Phase = domain.PhasePendingRetry
			s.RetryCount = retries
			s.NextAttemptAt = &next
		}) {
			return
		}

		select {
		case <-ctx.Done():
			c.settle(ctx, gen, retries, outcome[T]{err: transportError(ctx.Err())})
			return
		case <-c.after(delay):
		}

		out = c.attempt(ctx)
		if out.pending {
			c.logger.Debug("workflow still running", "attempt", n, "max_polls", c.maxPolls)
			continue
		}
		if out.err != nil && retryable(out.err) {
			c.logger.Warn("poll attempt failed, retrying",
				"attempt", n,
				"max_polls", c.maxPolls,
				"error", out.err,
			)
			continue
		}

		c.settle(ctx, gen, n, out)
		return
	}

	c.settle(ctx, gen, c.maxPolls, outcome[T]{err: timeoutError(c.maxPolls)})
}

func (c *Client[T]) attempt(ctx context.Context) outcome[T] {
	body, err := c.get(ctx)
	if err != nil {
		return outcome[T]{err: err}
	}

	v, err := decodeJSON(body)
	if err != nil {
		return outcome[T]{err: malformedError("response is not valid JSON", err)}
	}

	p, err := normalize(v, c.sentinel)
	if err != nil {
		return outcome[T]{err: err}
	}
	if p.shape == shapePending {
		return outcome[T]{pending: true}
	}

	c.logger.Debug("response normalized",
		"shape", p.shape,
		"encoded", p.encoded,
		"elements", len(p.elements),
	)

	return c.collect(p.elements)
}

func (c *Client[T]) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, transportError(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(fmt.Errorf("read body: %w", err))
	}

	return body, nil
}

func (c *Client[T]) collect(elements []any) outcome[T] {
	if len(elements) == 0 {
		return outcome[T]{err: &Error{Kind: ErrEmptyCollection, Message: ErrEmptyCollection.Error()}}
	}

	items := make([]T, 0, len(elements))
	dropped := 0
	for i, el := range elements {
		item, err := c.validate(el)
		if err != nil {
			dropped++
			c.logger.Warn("dropping invalid element", "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return outcome[T]{
			dropped: dropped,
			err:     &Error{Kind: ErrNoValidItems, Message: ErrNoValidItems.Error()},
		}
	}

	return outcome[T]{items: items, dropped: dropped}
}

// update mutates the state of run gen and notifies observers. It reports
// false once the run has been superseded or the client closed.
func (c *Client[T]) update(gen uint64, fn func(*domain.SyncState[T])) bool {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	snap, obs := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(obs, snap)
	return true
}

func (c *Client[T]) settle(ctx context.Context, gen uint64, retries int, out outcome[T]) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding outcome of stale fetch")
		return
	}

	c.inFlight = false
	c.cancel = nil

	switch {
	case ctx.Err() != nil:
		c.state = c.settled.Clone()
		c.logger.Info("fetch cancelled, state restored", "phase", c.state.Phase)
	case out.err != nil:
		c.state.Phase = domain.PhaseFailed
		c.state.Items = []T{}
		c.state.RetryCount = retries
		c.state.Dropped = out.dropped
		c.state.LastError = out.err.Error()
		c.state.Err = out.err
		c.state.NextAttemptAt = nil
		c.logger.Warn("fetch failed", "error", out.err, "retries", retries, "dropped", out.dropped)
	default:
		now := c.now()
		c.state.Phase = domain.PhaseReady
		c.state.Items = out.items
		c.state.RetryCount = retries
		c.state.Dropped = out.dropped
		c.state.LastError = ""
		c.state.Err = nil
		c.state.LastFetchedAt = &now
		c.state.NextAttemptAt = nil
		c.logger.Info("fetch completed", "items", len(out.items), "dropped", out.dropped, "retries", retries)
	}

	snap, obs := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(obs, snap)
}

func (c *Client[T]) snapshotLocked() (domain.SyncState[T], []func(domain.SyncState[T])) {
	obs := make([]func(domain.SyncState[T]), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	return c.state.Clone(), obs
}

func (c *Client[T]) publish(obs []func(domain.SyncState[T]), st domain.SyncState[T]) {
	for _, fn := range obs {
		fn(st.Clone())
	}
}
