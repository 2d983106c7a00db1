package eventsink

import (
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

// EventKind tags the outbound event stream.
type EventKind string

const (
	KindRecordCreated EventKind = "record_created"
	KindStateChanged  EventKind = "state_changed"
)

// Event is what presentation layers receive. Records are copied so
// consumers never observe later mutations.
type Event struct {
	Kind      EventKind
	Record    domain.NotificationRecord
	FromState domain.State
	At        time.Time
}

// ChannelSink publishes events to a buffered channel. Publishing never
// blocks: when the buffer is full the event is dropped with a warning,
// because the sink must never stall the engine.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Events is the consumer side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

func (s *ChannelSink) RecordCreated(record *domain.NotificationRecord) {
	s.publish(Event{
		Kind:   KindRecordCreated,
		Record: *record,
		At:     time.Now().UTC(),
	})
}

func (s *ChannelSink) StateChanged(record *domain.NotificationRecord, from domain.State) {
	s.publish(Event{
		Kind:      KindStateChanged,
		Record:    *record,
		FromState: from,
		At:        time.Now().UTC(),
	})
}

func (s *ChannelSink) publish(event Event) {
	select {
	case s.events <- event:
	default:
		slog.Warn("event sink buffer full, dropping event",
			slog.String("kind", string(event.Kind)),
			slog.String("record_id", event.Record.ID),
		)
	}
}

// NoopSink discards everything. Used when no presentation layer is
// attached.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (*NoopSink) RecordCreated(*domain.NotificationRecord)              {}
func (*NoopSink) StateChanged(*domain.NotificationRecord, domain.State) {}
