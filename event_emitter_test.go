package pagedriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitterOnAndEmit(t *testing.T) {
	var e eventEmitter
	var got []interface{}
	e.On("ping", func(payload interface{}) { got = append(got, payload) })

	assert.True(t, e.Emit("ping", 1))
	assert.True(t, e.Emit("ping", 2))
	assert.Equal(t, []interface{}{1, 2}, got)
	assert.Equal(t, 1, e.ListenerCount("ping"))
}

func TestEmitWithoutListenersReturnsFalse(t *testing.T) {
	var e eventEmitter
	assert.False(t, e.Emit("nothing", nil))
}

func TestOnceFiresExactlyOnce(t *testing.T) {
	var e eventEmitter
	calls := 0
	e.Once("ping", func(interface{}) { calls++ })

	assert.True(t, e.Emit("ping", nil))
	assert.False(t, e.Emit("ping", nil))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.ListenerCount("ping"))
}

func TestSubscribeUnsubscribe(t *testing.T) {
	var e eventEmitter
	calls := 0
	id := e.subscribe("ping", func(interface{}) { calls++ })
	other := e.subscribe("ping", func(interface{}) {})

	e.unsubscribe("ping", id)
	e.Emit("ping", nil)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, e.ListenerCount("ping"))

	e.unsubscribe("ping", other)
	assert.Equal(t, 0, e.ListenerCount("ping"))
}

func TestRemoveListeners(t *testing.T) {
	var e eventEmitter
	e.On("ping", func(interface{}) {})
	e.On("ping", func(interface{}) {})
	e.RemoveListeners("ping")
	assert.Equal(t, 0, e.ListenerCount("ping"))
	assert.False(t, e.Emit("ping", nil))
}

func TestListenerHooksFireOnTransitions(t *testing.T) {
	var e eventEmitter
	var added, removed []string
	e.onListenerAdded = func(event string) { added = append(added, event) }
	e.onListenerRemoved = func(event string) { removed = append(removed, event) }

	id1 := e.subscribe("console", func(interface{}) {})
	id2 := e.subscribe("console", func(interface{}) {})
	// Only the zero-to-one transition reports.
	assert.Equal(t, []string{"console"}, added)

	e.unsubscribe("console", id1)
	assert.Empty(t, removed)
	e.unsubscribe("console", id2)
	assert.Equal(t, []string{"console"}, removed)
}

func TestOnceRemovalTriggersRemovedHook(t *testing.T) {
	var e eventEmitter
	var removed []string
	e.onListenerRemoved = func(event string) { removed = append(removed, event) }

	e.Once("dialog", func(interface{}) {})
	e.Emit("dialog", nil)
	assert.Equal(t, []string{"dialog"}, removed)
}

func TestHandlerMayRemoveListenersDuringEmit(t *testing.T) {
	var e eventEmitter
	calls := 0
	e.On("ping", func(interface{}) {
		calls++
		e.RemoveListeners("ping")
	})
	e.On("ping", func(interface{}) { calls++ })

	// Both handlers in the snapshot still run.
	assert.True(t, e.Emit("ping", nil))
	assert.Equal(t, 2, calls)
	assert.False(t, e.Emit("ping", nil))
}
