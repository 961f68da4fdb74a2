package pagedriver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// waiter blocks one goroutine until an event matching a predicate fires, a
// rejection event fires, or a timeout expires. It also brackets the wait with
// waitForEventInfo calls so the driver can attribute hung waits in traces.
type waiter struct {
	mu       sync.Mutex
	done     chan struct{}
	result   interface{}
	err      error
	cleanups []func()

	waitID  string
	channel *channel
}

func newWaiter() *waiter {
	return &waiter{done: make(chan struct{}), waitID: uuid.NewString()}
}

// newWaiterForEvent additionally reports the wait to the driver.
func newWaiterForEvent(owner *channelOwner, event string) *waiter {
	w := newWaiter()
	w.channel = owner.ch
	w.channel.SendNoReply("waitForEventInfo", map[string]interface{}{
		"info": map[string]interface{}{
			"waitId": w.waitID,
			"phase":  "before",
			"event":  event,
		},
	})
	return w
}

func (w *waiter) fulfill(result interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	w.result = result
	close(w.done)
}

func (w *waiter) reject(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	w.err = err
	close(w.done)
}

func (w *waiter) rejectOnTimeout(timeoutMS float64, message string) {
	if timeoutMS == 0 {
		return
	}
	timer := time.AfterFunc(time.Duration(timeoutMS)*time.Millisecond, func() {
		w.reject(newTimeoutError("%s", message))
	})
	w.addCleanup(func() { timer.Stop() })
}

func (w *waiter) rejectOnEvent(emitter *eventEmitter, event string, err error, predicate func(interface{}) bool) {
	id := emitter.subscribe(event, func(payload interface{}) {
		if predicate == nil || predicate(payload) {
			w.reject(err)
		}
	})
	w.addCleanup(func() { emitter.unsubscribe(event, id) })
}

// waitForEvent arms the waiter on emitter/event; the first payload passing
// the predicate fulfills it.
func (w *waiter) waitForEvent(emitter *eventEmitter, event string, predicate func(interface{}) bool) {
	id := emitter.subscribe(event, func(payload interface{}) {
		if predicate == nil || predicate(payload) {
			w.fulfill(payload)
		}
	})
	w.addCleanup(func() { emitter.unsubscribe(event, id) })
}

func (w *waiter) addCleanup(fn func()) {
	w.mu.Lock()
	w.cleanups = append(w.cleanups, fn)
	w.mu.Unlock()
}

// Wait blocks until the waiter resolves, then detaches every listener and
// closes out the driver-side wait record.
func (w *waiter) Wait() (interface{}, error) {
	<-w.done
	w.mu.Lock()
	cleanups := w.cleanups
	w.cleanups = nil
	result, err := w.result, w.err
	w.mu.Unlock()

	for _, cleanup := range cleanups {
		cleanup()
	}
	if w.channel != nil {
		info := map[string]interface{}{
			"waitId": w.waitID,
			"phase":  "after",
		}
		if err != nil {
			info["error"] = err.Error()
		}
		w.channel.SendNoReply("waitForEventInfo", map[string]interface{}{"info": info})
	}
	return result, err
}

// runAndWait triggers an action after the waiter is armed and returns the
// event payload; action failures win over event results.
func (w *waiter) runAndWait(action func() error) (interface{}, error) {
	if action != nil {
		actionErr := make(chan error, 1)
		go func() { actionErr <- action() }()
		select {
		case err := <-actionErr:
			if err != nil {
				w.reject(err)
			}
		case <-w.done:
			// Event resolved first; the action result no longer matters
			// for the wait, but collect it to avoid a goroutine leak.
			go func() { <-actionErr }()
		}
	}
	return w.Wait()
}
