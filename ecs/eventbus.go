package ecs

import (
	"reflect"
	"slices"
)

// EventBus delivers typed events to subscribers synchronously, in subscription
// order. Each event type gets a small integer id the first time it is
// subscribed to or emitted; handler lists are indexed by that id.
//
// Emission does not snapshot the handler list. Handlers must not subscribe or
// unsubscribe anyone for the event type currently being emitted.
type EventBus struct {
	eventTypes map[reflect.Type]int
	handlers   [][]subscription
}

type subscription struct {
	owner any
	fn    any
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		eventTypes: make(map[reflect.Type]int),
	}
}

// Subscribe registers fn to receive events of type T on behalf of owner. The
// owner identifies the subscription for Unsubscribe and UnsubscribeAll and must
// be comparable, typically a pointer to the subscribing system.
func Subscribe[T any](bus *EventBus, owner any, fn func(T)) {
	id := bus.eventTypeId(reflect.TypeFor[T]())
	bus.handlers[id] = append(bus.handlers[id], subscription{owner: owner, fn: fn})
}

// Unsubscribe removes every handler owner registered for events of type T.
func Unsubscribe[T any](bus *EventBus, owner any) {
	id, ok := bus.eventTypes[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	bus.handlers[id] = slices.DeleteFunc(bus.handlers[id], func(s subscription) bool {
		return s.owner == owner
	})
}

// UnsubscribeAll removes owner from the handler list of every event type.
func (bus *EventBus) UnsubscribeAll(owner any) {
	for id := range bus.handlers {
		bus.handlers[id] = slices.DeleteFunc(bus.handlers[id], func(s subscription) bool {
			return s.owner == owner
		})
	}
}

// Emit invokes every handler subscribed to T with event, immediately and in
// subscription order.
func Emit[T any](bus *EventBus, event T) {
	id, ok := bus.eventTypes[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, s := range bus.handlers[id] {
		s.fn.(func(T))(event)
	}
}

// SubscriberCount returns the number of handlers registered for T.
func SubscriberCount[T any](bus *EventBus) int {
	id, ok := bus.eventTypes[reflect.TypeFor[T]()]
	if !ok {
		return 0
	}
	return len(bus.handlers[id])
}

// eventTypeId retrieves or assigns an id for the event type.
func (bus *EventBus) eventTypeId(t reflect.Type) int {
	if id, ok := bus.eventTypes[t]; ok {
		return id
	}
	id := len(bus.handlers)
	bus.eventTypes[t] = id
	bus.handlers = append(bus.handlers, nil)
	return id
}
