package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const (
	componentOutbox = "outbox"

	defaultQueueSize   = 1024
	defaultConcurrency = 8
	handlerTimeout     = 30 * time.Second
)

var ErrClosed = errors.New("outbox: bus is stopped")

// Bus is an in-memory, non-durable event bus. Events are queued and fanned out to
// every subscriber of their name by a single dispatch goroutine.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domoutbox.Handler
	queue       chan domoutbox.Event
	closeMu     sync.RWMutex // guards closed and closing queue
	closed      bool
	startOnce   sync.Once
	stopOnce    sync.Once
	cancel      context.CancelFunc
	done        chan struct{}
	concurrency int
	log         observability.Logger
}

func NewBus(logger observability.Logger) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		queue:       make(chan domoutbox.Event, defaultQueueSize),
		done:        make(chan struct{}),
		concurrency: defaultConcurrency,
		log:         logger.With(observability.F("component", componentOutbox)),
	}
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop refuses new events, lets the dispatcher drain what is already queued and
// waits for it until ctx expires.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		b.closeMu.Lock()
		b.closed = true
		close(b.queue)
		b.closeMu.Unlock()

		started := b.cancel != nil
		if started {
			select {
			case <-b.done:
			case <-ctx.Done():
			}
			b.cancel()
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))

	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	select {
	case b.queue <- e:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted", observability.F("error", ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-b.queue:
			if !ok {
				return
			}
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()
	logger := b.log.With(observability.F("event", name))

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	ctx = logctx.With(ctx, logger)
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			defer cancel()
			if err := h(hctx, e); err != nil {
				logger.Warn("event_handler_error", observability.F("error", err))
			}
		}()
	}

	wg.Wait()
	logger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
}
