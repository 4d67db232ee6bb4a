package webservice

import (
	"context"
	"errors"
	"sync"

	"github.com/gammazero/workerpool"

	"github.com/TomasB/geolookup/pkg/geoip/models"
)

// ErrClientClosed is returned for lookups submitted after Close.
var ErrClientClosed = errors.New("webservice: client closed")

// Future is the pending result of an asynchronous lookup.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the result is available or ctx is done. Giving up on a future does
// not cancel its request; use the context passed to the lookup for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncClient runs lookups on a bounded pool of workers sharing one connection pool. Many
// lookups can be in flight at once; each is a single request.
type AsyncClient struct {
	client *Client
	pool   *workerpool.WorkerPool

	mu     sync.RWMutex
	closed bool
}

// NewAsyncClient returns a client authenticating with accountID and licenseKey.
func NewAsyncClient(accountID int, licenseKey string, opts ...Option) (*AsyncClient, error) {
	cfg := newConfig(opts)
	client, err := newClient(accountID, licenseKey, cfg)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{
		client: client,
		pool:   workerpool.New(cfg.maxInFlight),
	}, nil
}

// Country calls the Country endpoint in the background.
func (a *AsyncClient) Country(ctx context.Context, ip string) *Future[*models.Country] {
	return submit(ctx, a, endpointCountry, ip, models.NewCountry)
}

// City calls the City endpoint in the background.
func (a *AsyncClient) City(ctx context.Context, ip string) *Future[*models.City] {
	return submit(ctx, a, endpointCity, ip, models.NewCity)
}

// Insights calls the Insights endpoint in the background.
func (a *AsyncClient) Insights(ctx context.Context, ip string) *Future[*models.Insights] {
	return submit(ctx, a, endpointInsights, ip, models.NewInsights)
}

// Close waits for the submitted lookups to finish, then releases idle connections.
// Calling it more than once has no effect.
func (a *AsyncClient) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.pool.StopWait()
	return a.client.Close()
}

func submit[T models.Model](
	ctx context.Context,
	a *AsyncClient,
	ep endpoint,
	ip string,
	build func(map[string]any, ...models.Option) (T, error),
) *Future[T] {
	f := newFuture[T]()
	var zero T

	// Invalid addresses fail without taking a worker.
	if _, err := requestURI(a.client.host, ep, ip); err != nil {
		f.resolve(zero, err)
		return f
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		f.resolve(zero, ErrClientClosed)
		return f
	}

	a.pool.Submit(func() {
		f.resolve(fetch(ctx, a.client, ep, ip, build))
	})
	return f
}
