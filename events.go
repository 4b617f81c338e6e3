package entable

import "reflect"

// EntityCreated is published after an entity has been created and every
// column has gained its row.
type EntityCreated struct {
	Entity Entity
}

// EntityDestroyed is published after an entity has been removed from every
// column and its slot recycled. The handle in the event is already invalid.
type EntityDestroyed struct {
	Entity Entity
}

// EventBus is a minimal type-keyed synchronous publish/subscribe hub. A
// registry constructed with WithEventBus publishes the lifecycle events above
// on it; applications are free to publish their own event types too.
//
// Handlers run synchronously on the publishing goroutine, in subscription
// order. The bus shares the registry's single-owner model and does no
// locking.
type EventBus struct {
	handlers map[reflect.Type][]any
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[reflect.Type][]any, 8)}
}

// Subscribe registers fn to run for every published event of type T.
func Subscribe[T any](bus *EventBus, fn func(T)) {
	t := reflect.TypeFor[T]()
	bus.handlers[t] = append(bus.handlers[t], fn)
}

// Publish delivers ev to every handler subscribed to T. Allocation-free when
// no handler list needs to grow.
func Publish[T any](bus *EventBus, ev T) {
	for _, h := range bus.handlers[reflect.TypeFor[T]()] {
		h.(func(T))(ev)
	}
}
