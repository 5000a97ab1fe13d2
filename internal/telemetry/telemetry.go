// Package telemetry delivers usage events. Delivery is fire-and-forget: a
// slow or failing sink never blocks or fails the operation that emitted the
// event. Events carry metadata only, never file contents.
package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ftwtie/pdfmerger/internal/metrics"
)

// Event names used by the merge and split workflows.
const (
	EventFileSelected      = "PDF File Selected"
	EventMergeClicked      = "Merge PDF Button Clicked"
	EventSplitFileSelected = "Split PDF File Selected"
	EventSplitClicked      = "Split PDF Button Clicked"
)

// Event is one usage notification.
type Event struct {
	Name       string         `json:"event"`
	Properties map[string]any `json:"properties,omitempty"`
	At         time.Time      `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(name string, props map[string]any) Event {
	return Event{Name: name, Properties: props, At: time.Now().UTC()}
}

// Notifier accepts events without reporting failures.
type Notifier interface {
	Track(ctx context.Context, ev Event)
}

// Sender delivers an event synchronously.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Track(context.Context, Event) {}

// Multi fans an event out to several senders. All are tried; errors are joined.
type Multi []Sender

func (m Multi) Send(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async queues events for a single background goroutine. When the queue is
// full the event is dropped.
type Async struct {
	sender  Sender
	timeout time.Duration
	ch      chan Event
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
}

// NewAsync starts the delivery goroutine. buffer <= 0 uses 256.
func NewAsync(sender Sender, buffer int) *Async {
	if buffer <= 0 {
		buffer = 256
	}
	a := &Async{sender: sender, timeout: 5 * time.Second, ch: make(chan Event, buffer)}
	a.wg.Add(1)
	go a.loop()
	return a
}

// Track enqueues ev or drops it. It never blocks.
func (a *Async) Track(_ context.Context, ev Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		metrics.IncTelemetryDropped()
		return
	}
	select {
	case a.ch <- ev:
	default:
		metrics.IncTelemetryDropped()
	}
}

func (a *Async) loop() {
	defer a.wg.Done()
	for ev := range a.ch {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.sender.Send(ctx, ev); err != nil {
			metrics.IncTelemetryDropped()
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be sent.
func (a *Async) Close() error {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()
	})
	a.wg.Wait()
	return nil
}
