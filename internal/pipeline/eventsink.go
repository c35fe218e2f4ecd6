package pipeline

import "sync"

// EventSink is the progress-event collaborator spec.md §6 describes:
// "The core emits events via an EventSink interface with method
// publish(stage, kind, payload)". Stage is one of "loader"|"ocr"|
// "ingestor"|"comparator"|"reviewer"; kind is one of
// "thought"|"finding"|"complete"|"error".
type EventSink interface {
	Publish(stage, kind string, payload map[string]any)
}

// NopSink discards every event. It is the Builder's default so callers
// that don't care about progress events don't have to wire one up.
type NopSink struct{}

// Publish implements EventSink.
func (NopSink) Publish(string, string, map[string]any) {}

// RecordingSink accumulates every published event in order, for tests
// and for collaborators that want to replay the agent log after the
// fact rather than stream it.
type RecordingSink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// RecordedEvent is one RecordingSink entry.
type RecordedEvent struct {
	Stage   string
	Kind    string
	Payload map[string]any
}

// Publish implements EventSink.
func (s *RecordingSink) Publish(stage, kind string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedEvent{Stage: stage, Kind: kind, Payload: payload})
}

// Events returns a copy of every event recorded so far.
func (s *RecordingSink) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}
