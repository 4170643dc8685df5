package testutil

import (
	"context"
	"sync"

	"github.com/adboardhq/adboard/internal/notification"
)

// RecordingNotifier implements notification.Notifier and records every
// published event so tests can assert on them.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(_ context.Context, event notification.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events returns a snapshot of the recorded events.
func (n *RecordingNotifier) Events() []notification.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Event{}, n.events...)
}

func (n *RecordingNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}
