package pagedriver

import "sync"

type eventHandler func(payload interface{})

type registeredHandler struct {
	id      int
	handler eventHandler
	once    bool
}

// eventEmitter is a minimal synchronous listener registry. Emit calls
// handlers in registration order on the calling goroutine, against a snapshot
// of the listener list so handlers may add or remove listeners freely.
type eventEmitter struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string][]*registeredHandler

	// hooks observing listener-count transitions, used for protocol event
	// subscriptions and file chooser interception.
	onListenerAdded   func(event string)
	onListenerRemoved func(event string)
}

func (e *eventEmitter) On(event string, handler eventHandler) {
	e.addHandler(event, handler, false)
}

// Once registers a handler removed after its first invocation.
func (e *eventEmitter) Once(event string, handler eventHandler) {
	e.addHandler(event, handler, true)
}

// subscribe is On returning a token for later removal; used by waiters that
// must detach listeners which never fired.
func (e *eventEmitter) subscribe(event string, handler eventHandler) int {
	return e.addHandler(event, handler, false)
}

func (e *eventEmitter) unsubscribe(event string, id int) {
	e.mu.Lock()
	handlers := e.handlers[event]
	for i, h := range handlers {
		if h.id == id {
			e.handlers[event] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
	nowEmpty := len(e.handlers[event]) == 0
	if nowEmpty {
		delete(e.handlers, event)
	}
	removed := e.onListenerRemoved
	e.mu.Unlock()

	if nowEmpty && removed != nil {
		removed(event)
	}
}

func (e *eventEmitter) addHandler(event string, handler eventHandler, once bool) int {
	e.mu.Lock()
	if e.handlers == nil {
		e.handlers = make(map[string][]*registeredHandler)
	}
	hadNone := len(e.handlers[event]) == 0
	e.nextID++
	id := e.nextID
	e.handlers[event] = append(e.handlers[event], &registeredHandler{id: id, handler: handler, once: once})
	added := e.onListenerAdded
	e.mu.Unlock()

	if hadNone && added != nil {
		added(event)
	}
	return id
}

// RemoveListeners drops every handler for event.
func (e *eventEmitter) RemoveListeners(event string) {
	e.mu.Lock()
	had := len(e.handlers[event]) > 0
	delete(e.handlers, event)
	removed := e.onListenerRemoved
	e.mu.Unlock()

	if had && removed != nil {
		removed(event)
	}
}

func (e *eventEmitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[event])
}

func (e *eventEmitter) Emit(event string, payload interface{}) bool {
	e.mu.Lock()
	snapshot := make([]*registeredHandler, len(e.handlers[event]))
	copy(snapshot, e.handlers[event])
	if len(snapshot) > 0 {
		kept := e.handlers[event][:0]
		for _, h := range e.handlers[event] {
			if !h.once {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(e.handlers, event)
		} else {
			e.handlers[event] = kept
		}
	}
	removed := e.onListenerRemoved
	nowEmpty := len(e.handlers[event]) == 0
	e.mu.Unlock()

	for _, h := range snapshot {
		h.handler(payload)
	}
	if len(snapshot) > 0 && nowEmpty && removed != nil {
		removed(event)
	}
	return len(snapshot) > 0
}
