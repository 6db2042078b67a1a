package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType enumerates the topics the engine publishes.
type EventType string

const (
	EventPositionUpdate EventType = "position_update"
	EventTradeExecuted  EventType = "trade_executed"
	EventRiskRejection  EventType = "risk_rejection"
	EventKillSwitch     EventType = "kill_switch"
	EventEngineState    EventType = "engine_state"
	EventCycleError     EventType = "cycle_error"
)

type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
	Time    time.Time `json:"time"`
}

// Bus is a lightweight in-process pub/sub broker. Publish never blocks:
// an event is dropped for any subscriber whose buffer is full, so a slow
// dashboard can never stall a trading cycle.
type Bus struct {
	mu       sync.RWMutex
	subs     map[EventType][]chan Event
	wildcard []chan Event
	dropped  atomic.Uint64
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]chan Event)}
}

// Subscribe registers a listener for one topic and returns the channel and
// an unsubscribe function. Unsubscribing closes the channel.
func (b *Bus) Subscribe(t EventType, buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	b.subs[t] = append(b.subs[t], ch)

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[t]
		for i, c := range subs {
			if c == ch {
				close(c)
				b.subs[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsub
}

// SubscribeAll registers a listener for every topic. Used by the WebSocket
// hub, which re-broadcasts the full stream to dashboard clients.
func (b *Bus) SubscribeAll(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	b.wildcard = append(b.wildcard, ch)

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, c := range b.wildcard {
			if c == ch {
				close(c)
				b.wildcard = append(b.wildcard[:i], b.wildcard[i+1:]...)
				break
			}
		}
	}
	return ch, unsub
}

// Publish fans the event out to topic and wildcard subscribers without
// blocking. The event time is stamped here if the caller left it zero.
func (b *Bus) Publish(evt Event) {
	if evt.Time.IsZero() {
		evt.Time = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[evt.Type] {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
	for _, ch := range b.wildcard {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many events were discarded for slow subscribers.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
