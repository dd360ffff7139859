// Package events carries auth-state transitions to registered observers.
//
// The bus is asynchronous and lossy under shutdown: handlers run on a single
// background goroutine fed by a buffered queue, and Close drains whatever is
// still queued. Cache purging does NOT go through this bus — the coordinator
// purges synchronously with the state flip — the bus exists for observers
// (UI refresh hooks, logging) that tolerate a small delay.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Kind labels an auth-state transition.
type Kind string

const (
	SignedIn       Kind = "signed_in"
	SignedOut      Kind = "signed_out"
	TokenRefreshed Kind = "token_refreshed"
	Restored       Kind = "restored" // session restored from local storage
)

// Event is one auth-state transition.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Handler processes events. Implementations should not block.
type Handler func(event Event)

// Bus emits events to configured handlers.
type Bus struct {
	handlers []Handler
	queue    chan Event
	done     chan struct{}
	wg       sync.WaitGroup
}

// Option configures Bus behavior.
type Option func(*Bus)

// WithStdoutHandler adds a handler that writes JSON events to stdout.
func WithStdoutHandler() Option {
	return func(b *Bus) {
		b.AddHandler(func(e Event) {
			data, _ := json.Marshal(e)
			fmt.Fprintf(os.Stdout, "%s\n", data)
		})
	}
}

// WithHandler adds a custom event handler.
func WithHandler(h Handler) Option {
	return func(b *Bus) {
		b.AddHandler(h)
	}
}

// New creates a new event bus with buffered async emission.
// bufferSize: event queue buffer size (default: 64).
func New(bufferSize int, opts ...Option) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}

	bus := &Bus{
		handlers: make([]Handler, 0),
		queue:    make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(bus)
	}

	bus.wg.Add(1)
	go bus.process()

	return bus
}

// AddHandler adds a handler to receive events. Must be called before the
// first Emit; handlers are not synchronized against the processing goroutine.
func (b *Bus) AddHandler(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Emit publishes an event asynchronously.
func (b *Bus) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.queue <- event:
	case <-b.done:
		// Bus is shutting down, event is dropped
	}
}

// process handles events from the queue.
func (b *Bus) process() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.queue:
			for _, h := range b.handlers {
				h(event)
			}
		case <-b.done:
			// Drain remaining events
			for {
				select {
				case event := <-b.queue:
					for _, h := range b.handlers {
						h(event)
					}
				default:
					return
				}
			}
		}
	}
}

// Close flushes pending events and stops the bus.
func (b *Bus) Close() error {
	close(b.done)
	b.wg.Wait()
	return nil
}
