// Package notify is the fire-and-forget channel that carries transient
// status messages from the service layer to the presentation layer.
// Messages are not persisted and publishing never blocks a business
// operation.
package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultDisplayDuration is the suggested on-screen lifetime of a message.
const DefaultDisplayDuration = 4 * time.Second

// Notification is a single transient status message.
type Notification struct {
	Message  string        `json:"message"`
	Severity Severity      `json:"severity"`
	Duration time.Duration `json:"duration"`
}

// Bus fans notifications out to subscribers. Delivery is best-effort: a
// subscriber whose buffer is full misses the message rather than stalling
// the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs []chan Notification
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber and returns its channel. The buffer
// absorbs short bursts.
func (b *Bus) Subscribe() <-chan Notification {
	ch := make(chan Notification, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers a notification to every subscriber without blocking.
func (b *Bus) Publish(severity Severity, message string) {
	n := Notification{Message: message, Severity: severity, Duration: DefaultDisplayDuration}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default: // subscriber buffer full, drop
		}
	}
}

// Info publishes an informational message.
func (b *Bus) Info(message string) { b.Publish(SeverityInfo, message) }

// Success publishes a success message.
func (b *Bus) Success(message string) { b.Publish(SeveritySuccess, message) }

// Warning publishes a warning message.
func (b *Bus) Warning(message string) { b.Publish(SeverityWarning, message) }

// Error publishes an error message.
func (b *Bus) Error(message string) { b.Publish(SeverityError, message) }
