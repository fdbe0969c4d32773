package engine

// EventWithArg is a multi-cast notification. Listeners run synchronously in
// subscription order on the goroutine that invokes the event.
type EventWithArg[T any] struct {
	next      int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// AddListener subscribes fn and returns a function that unsubscribes it.
// A nil fn is ignored.
func (e *EventWithArg[T]) AddListener(fn func(T)) (remove func()) {
	if fn == nil {
		return func() {}
	}
	e.next++
	id := e.next
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Invoke calls every listener subscribed before the call. Listeners may
// unsubscribe while it runs.
func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) ListenerCount() int {
	return len(e.listeners)
}
