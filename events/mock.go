package events

// MemoryRecorder collects events in order. It is the test double used
// throughout the package tests and is also suitable as a minimal
// in-process indexer feed.
type MemoryRecorder struct {
	Events []Event
}

func (m *MemoryRecorder) Record(e Event) {
	m.Events = append(m.Events, e)
}

// OfKind returns all collected events with the given kind.
func (m *MemoryRecorder) OfKind(kind string) []Event {
	var out []Event
	for _, e := range m.Events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// MockNotifier is a test double for Notifier. NotifyFn must be set
// before Notify is called.
type MockNotifier struct {
	NotifyFn func(e Event) error
}

func (m *MockNotifier) Notify(e Event) error {
	return m.NotifyFn(e)
}
