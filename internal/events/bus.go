// Package events delivers auth-state notifications after the publishing
// call has returned. Handlers run one at a time on the bus worker.
package events

import (
	"context"
	"errors"
	"expvar"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Type string

const (
	SignedIn            Type = "signed_in"
	SignedOut           Type = "signed_out"
	TokenRefreshed      Type = "token_refreshed"
	EmailVerified       Type = "email_verified"
	OrganizationChanged Type = "organization_changed"
)

// Event is one auth-state transition for an identity.
type Event struct {
	Type      Type      `json:"type"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	OrgID     string    `json:"org_id,omitempty"`
	At        time.Time `json:"at"`
}

type Handler func(ctx context.Context, evt Event) error

var ErrClosed = errors.New("event bus closed")

// stats is exported on /api/debug/vars: dispatched events by type plus
// a "handler_errors" total.
var stats = expvar.NewMap("events")

// Bus is a single-worker queue of events. An event accepted by Publish is
// always handled, Close included.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	queue    chan Event

	// sending is held for reading across each send, so Close can wait out
	// in-flight publishers before the worker's final drain.
	sending sync.RWMutex
	quit    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	logger  *logrus.Logger
	timeout time.Duration
}

func NewBus(size int, logger *logrus.Logger) *Bus {
	if size <= 0 {
		size = 256
	}
	b := &Bus{
		queue:   make(chan Event, size),
		quit:    make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logger,
		timeout: 10 * time.Second,
	}
	go b.run()
	return b
}

// Subscribe registers h for every event. Register handlers before publishing.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish enqueues evt and returns without running any handler. A publisher
// blocked on a full queue gets ErrClosed once Close is called.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	b.sending.RLock()
	defer b.sending.RUnlock()
	select {
	case <-b.quit:
		return ErrClosed
	default:
	}
	select {
	case b.queue <- evt:
		return nil
	case <-b.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits until queued ones are handled.
// It is safe to call more than once.
func (b *Bus) Close() {
	b.once.Do(func() {
		close(b.quit)
		// quit releases blocked publishers; once the lock is ours no send
		// is in flight and the queue holds everything that was accepted.
		b.sending.Lock()
		close(b.stop)
		b.sending.Unlock()
	})
	<-b.done
}

func (b *Bus) run() {
	defer close(b.done)
	for {
		select {
		case evt := <-b.queue:
			b.dispatch(evt)
		case <-b.stop:
			b.drain()
			return
		}
	}
}

// drain handles whatever was queued before stop closed.
func (b *Bus) drain() {
	for {
		select {
		case evt := <-b.queue:
			b.dispatch(evt)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(evt Event) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.RUnlock()

	stats.Add(string(evt.Type), 1)
	for _, h := range hs {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		err := h(ctx, evt)
		cancel()
		if err != nil {
			stats.Add("handler_errors", 1)
		}
		if err != nil && b.logger != nil {
			b.logger.WithError(err).WithFields(logrus.Fields{
				"event":   evt.Type,
				"user_id": evt.UserID,
			}).Warn("event handler failed")
		}
	}
}
