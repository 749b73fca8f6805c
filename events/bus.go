package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventClockTick          EventType = "clock.tick"
	EventScheduleAccepted   EventType = "schedule.accepted"
	EventScheduleRemoved    EventType = "schedule.removed"
	EventEventsMaterialized EventType = "events.materialized"
	EventFlightSettled      EventType = "flight.settled"
	EventContractExpired    EventType = "contract.expired"
	EventAssetRemoved       EventType = "asset.removed"
	EventMissionCompleted   EventType = "mission.completed"
)

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	return b.SubscribeBuffered(eventType, 8)
}

// SubscribeBuffered registers a subscriber with the given buffer size.
func (b *Bus) SubscribeBuffered(eventType EventType, size int) Subscriber {
	ch := make(Subscriber, size)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers. A nil bus drops the event.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	b.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
	b.subs[eventType] = subs
}
