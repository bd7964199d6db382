// Package notification delivers workflow events to employees. Delivery is
// fire-and-forget: a failed or dropped notification is logged and never rolls
// back the transition that produced it.
package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
)

// Dispatcher buffers notifications on a channel and delivers them from a
// single background goroutine, keeping delivery off the request path.
type Dispatcher struct {
	queue  chan port.Notification
	logger *zap.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher creates a dispatcher with the given queue capacity
func NewDispatcher(capacity int, logger *zap.Logger) *Dispatcher {
	if capacity <= 0 {
		capacity = 64
	}
	return &Dispatcher{
		queue:  make(chan port.Notification, capacity),
		logger: logger,
	}
}

// Start launches the delivery goroutine. It drains the queue until Stop is
// called.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for n := range d.queue {
			d.deliver(n)
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries to finish
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

// Notify enqueues a notification. When the queue is full the event is dropped
// and logged rather than blocking the caller.
func (d *Dispatcher) Notify(_ context.Context, n port.Notification) {
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("Notification queue full, dropping event",
			zap.String("employee_id", n.EmployeeID),
			zap.String("event", n.Event))
	}
}

// deliver records the event. A real deployment would hand off to a mail or
// chat gateway here; the engine's contract is only that the event is
// observable and non-blocking.
func (d *Dispatcher) deliver(n port.Notification) {
	fields := []zap.Field{
		zap.String("employee_id", n.EmployeeID),
		zap.String("event", n.Event),
	}
	for key, value := range n.Payload {
		fields = append(fields, zap.String(key, value))
	}
	d.logger.Info("Notification delivered", fields...)
}

// Verify interface compliance
var _ port.Notifier = (*Dispatcher)(nil)
