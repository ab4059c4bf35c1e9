package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"Gin_postgres_redis_library/lending"

	"golang.org/x/time/rate"
)

var ErrQueueFull = errors.New("notification queue full")
var ErrClosed = errors.New("notifier closed")

// Async hands events to a background worker so a slow channel never delays a loan response.
// Deliveries are rate limited; events that do not fit in the queue are dropped.
type Async struct {
	next    lending.Notifier
	limiter *rate.Limiter
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan lending.LoanCreated
	done   chan struct{}
}

// NewAsync starts the worker. perSecond <= 0 disables throttling.
func NewAsync(next lending.Notifier, queueSize int, perSecond float64, log *slog.Logger) *Async {
	if queueSize <= 0 {
		queueSize = 64
	}
	if log == nil {
		log = slog.Default()
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	a := &Async{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
		queue:   make(chan lending.LoanCreated, queueSize),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) LoanCreated(_ context.Context, ev lending.LoanCreated) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	ctx := context.Background()
	for ev := range a.queue {
		if err := a.limiter.Wait(ctx); err != nil {
			a.log.Warn("notify rate limit wait", "error", err)
		}
		a.deliver(ctx, ev)
	}
}

// deliver sends one event; a panicking channel must not take the worker down.
func (a *Async) deliver(ctx context.Context, ev lending.LoanCreated) {
	defer func() {
		if p := recover(); p != nil {
			a.log.Warn("loan notification panicked", "loan_id", ev.LoanID, "panic", p)
		}
	}()
	if err := a.next.LoanCreated(ctx, ev); err != nil {
		a.log.Warn("loan notification delivery failed", "loan_id", ev.LoanID, "error", err)
	}
}

// Close stops accepting events and waits for queued ones to be delivered or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
