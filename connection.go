package pagedriver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pagedriver/pagedriver/internal/transport"
)

// objectFactory creates the typed API object for a remote type name. It runs
// on the dispatch goroutine.
type objectFactory func(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) interface{}

type protocolCallback struct {
	done    chan struct{}
	once    sync.Once
	result  interface{}
	err     error
	noReply bool
}

func (cb *protocolCallback) resolve(result interface{}, err error) {
	cb.once.Do(func() {
		cb.result = result
		cb.err = err
		close(cb.done)
	})
}

// connection owns the transport and correlates the three message kinds:
// replies (by id), lifecycle events (__create__/__adopt__/__dispose__), and
// object events (by guid). All registry mutation happens on the dispatch
// goroutine; the mutex covers reads from API goroutines.
type connection struct {
	eventEmitter

	transport transport.Transport
	logger    *zap.Logger
	factory   objectFactory
	isRemote  bool

	mu               sync.Mutex
	lastID           int
	callbacks        map[int]*protocolCallback
	objects          map[string]*channelOwner
	waitingForObject map[string]chan interface{}
	closedErr        error
	listenerErr      error

	rootObject    *rootChannelOwner
	transportDone chan struct{}

	// onClose runs after cleanup, e.g. to reap the driver process.
	onClose func() error
}

func newConnection(t transport.Transport, logger *zap.Logger, onClose func() error) *connection {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &connection{
		transport:        t,
		logger:           logger,
		factory:          createObjectFactory(),
		callbacks:        make(map[int]*protocolCallback),
		objects:          make(map[string]*channelOwner),
		waitingForObject: make(map[string]chan interface{}),
		transportDone:    make(chan struct{}),
		onClose:          onClose,
	}
	c.rootObject = newRootChannelOwner(c)
	t.SetOnMessage(c.dispatch)
	return c
}

func (c *connection) markAsRemote() {
	c.isRemote = true
}

// Start runs the transport read loop on its own goroutine and performs the
// initialize handshake, returning the root Playwright object.
func (c *connection) Start() (*Playwright, error) {
	go func() {
		err := c.transport.Start()
		if err != nil {
			c.logger.Debug("transport stopped", zap.Error(err))
		}
		c.cleanup(err)
		close(c.transportDone)
	}()
	return c.rootObject.initialize()
}

// Stop tears down the transport and rejects every in-flight call.
func (c *connection) Stop() error {
	err := c.transport.Stop()
	select {
	case <-c.transportDone:
	case <-time.After(10 * time.Second):
		c.logger.Warn("transport did not stop in time")
	}
	return err
}

func (c *connection) cleanup(cause error) {
	closedErr := newTargetClosedError("")
	if cause != nil {
		closedErr = newTargetClosedError(cause.Error())
	}

	c.mu.Lock()
	if c.closedErr == nil {
		c.closedErr = closedErr
	}
	pending := c.callbacks
	c.callbacks = make(map[int]*protocolCallback)
	waiting := c.waitingForObject
	c.waitingForObject = make(map[string]chan interface{})
	c.mu.Unlock()

	for _, cb := range pending {
		if cb.noReply {
			continue
		}
		cb.resolve(nil, closedErr)
	}
	for _, ch := range waiting {
		close(ch)
	}
	c.Emit("close", nil)
	if c.onClose != nil {
		if err := c.onClose(); err != nil {
			c.logger.Debug("connection close hook failed", zap.Error(err))
		}
	}
}

func (c *connection) sendMessageToServer(owner *channelOwner, method string, params map[string]interface{}, noReply bool) (*protocolCallback, error) {
	c.mu.Lock()
	if c.closedErr != nil {
		err := c.closedErr
		c.mu.Unlock()
		return nil, err
	}
	if owner.wasCollected {
		c.mu.Unlock()
		return nil, &Error{Name: "Error", Message: "The object has been collected to prevent unbounded heap growth."}
	}
	c.lastID++
	id := c.lastID
	cb := &protocolCallback{done: make(chan struct{}), noReply: noReply}
	c.callbacks[id] = cb
	c.mu.Unlock()

	apiName := ""
	if !owner.isInternalType {
		apiName = owner.objectType + "." + method
	}
	msg := &transport.Message{
		ID:     id,
		GUID:   owner.guid,
		Method: method,
		Params: c.replaceChannelsWithGuidsMap(params),
		Metadata: map[string]interface{}{
			"wallTime": time.Now().UnixMilli(),
			"apiName":  apiName,
			"internal": apiName == "",
		},
	}
	if err := c.transport.Send(msg); err != nil {
		c.mu.Lock()
		delete(c.callbacks, id)
		c.mu.Unlock()
		return nil, err
	}
	return cb, nil
}

// dispatch handles every incoming frame. It runs on the transport's read
// goroutine; event handlers therefore must not issue blocking protocol calls
// directly (they get their own goroutine where the API requires it).
func (c *connection) dispatch(msg *transport.Message) {
	c.mu.Lock()
	closed := c.closedErr != nil
	c.mu.Unlock()
	if closed {
		return
	}

	if msg.ID != 0 {
		c.dispatchReply(msg)
		return
	}

	switch msg.Method {
	case "__create__":
		objectType, _ := msg.Params["type"].(string)
		guid, _ := msg.Params["guid"].(string)
		initializer, _ := msg.Params["initializer"].(map[string]interface{})
		parent := c.lookupObject(msg.GUID)
		if parent == nil {
			c.parkListenerError(fmt.Errorf("cannot create %q under unknown parent %q", guid, msg.GUID))
			return
		}
		c.createRemoteObject(parent, objectType, guid, initializer)
		return
	case "__adopt__":
		parent := c.lookupObject(msg.GUID)
		childGUID, _ := msg.Params["guid"].(string)
		child := c.lookupObject(childGUID)
		if parent == nil || child == nil {
			c.parkListenerError(fmt.Errorf("cannot adopt %q into %q: unknown object", childGUID, msg.GUID))
			return
		}
		parent.adopt(child)
		return
	case "__dispose__":
		object := c.lookupObject(msg.GUID)
		if object == nil {
			c.parkListenerError(fmt.Errorf("cannot dispose unknown object %q", msg.GUID))
			return
		}
		reason, _ := msg.Params["reason"].(string)
		object.dispose(reason)
		return
	}

	object := c.lookupObject(msg.GUID)
	if object == nil {
		c.parkListenerError(fmt.Errorf("cannot dispatch %q to unknown object %q", msg.Method, msg.GUID))
		return
	}
	params := interface{}(msg.Params)
	// jsonPipe payloads are raw protocol bodies; guid substitution would
	// corrupt them.
	if !strings.Contains(msg.GUID, "jsonPipe@") {
		params = c.replaceGuidsWithChannels(params)
	}
	c.emitEvent(object, msg.Method, params)
}

func (c *connection) dispatchReply(msg *transport.Message) {
	c.mu.Lock()
	cb, ok := c.callbacks[msg.ID]
	delete(c.callbacks, msg.ID)
	c.mu.Unlock()
	if !ok {
		c.logger.Warn("reply for unknown call", zap.Int("id", msg.ID))
		return
	}
	if cb.noReply {
		return
	}
	if msg.Error != nil && msg.Result == nil {
		cb.resolve(nil, parseError(msg.Error.Error, msg.Log))
		return
	}
	cb.resolve(c.replaceGuidsWithChannels(msg.Result), nil)
}

func (c *connection) emitEvent(object *channelOwner, method string, params interface{}) {
	defer func() {
		if r := recover(); r != nil {
			c.parkListenerError(fmt.Errorf("event listener for %s.%s panicked: %v", object.objectType, method, r))
		}
	}()
	object.protoEvents.Emit(method, params)
}

// parkListenerError logs the error and rethrows it from the next API call,
// mirroring an unhandled rejection.
func (c *connection) parkListenerError(err error) {
	c.logger.Error("error in event dispatch", zap.Error(err))
	c.mu.Lock()
	if c.listenerErr == nil {
		c.listenerErr = err
	}
	c.mu.Unlock()
}

func (c *connection) takeListenerError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.listenerErr
	c.listenerErr = nil
	return err
}

func (c *connection) createRemoteObject(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) {
	replaced, _ := c.replaceGuidsWithChannels(initializer).(map[string]interface{})
	self := c.factory(parent, objectType, guid, replaced)

	c.mu.Lock()
	waiter, ok := c.waitingForObject[guid]
	delete(c.waitingForObject, guid)
	c.mu.Unlock()
	if ok {
		waiter <- self
	}
}

func (c *connection) registerObject(o *channelOwner) {
	c.mu.Lock()
	c.objects[o.guid] = o
	c.mu.Unlock()
}

func (c *connection) unregisterObject(guid string) {
	c.mu.Lock()
	delete(c.objects, guid)
	c.mu.Unlock()
}

func (c *connection) lookupObject(guid string) *channelOwner {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects[guid]
}

// waitForObjectWithKnownName blocks until the driver announces the object
// with the given well-known guid.
func (c *connection) waitForObjectWithKnownName(guid string) (interface{}, error) {
	c.mu.Lock()
	if object, ok := c.objects[guid]; ok {
		c.mu.Unlock()
		return object.self, nil
	}
	ch := make(chan interface{}, 1)
	c.waitingForObject[guid] = ch
	c.mu.Unlock()

	self, ok := <-ch
	if !ok {
		return nil, newTargetClosedError("")
	}
	return self, nil
}

func (c *connection) replaceChannelsWithGuidsMap(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}
	replaced, _ := c.replaceChannelsWithGuids(params).(map[string]interface{})
	return replaced
}

func (c *connection) replaceChannelsWithGuids(payload interface{}) interface{} {
	switch v := payload.(type) {
	case nil:
		return nil
	case hasChannel:
		return map[string]interface{}{"guid": v.channel().guid}
	case []interface{}:
		result := make([]interface{}, 0, len(v))
		for _, item := range v {
			result = append(result, c.replaceChannelsWithGuids(item))
		}
		return result
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = c.replaceChannelsWithGuids(value)
		}
		return result
	default:
		return payload
	}
}

func (c *connection) replaceGuidsWithChannels(payload interface{}) interface{} {
	switch v := payload.(type) {
	case nil:
		return nil
	case []interface{}:
		result := make([]interface{}, 0, len(v))
		for _, item := range v {
			result = append(result, c.replaceGuidsWithChannels(item))
		}
		return result
	case map[string]interface{}:
		if guid, ok := v["guid"].(string); ok {
			if object := c.lookupObject(guid); object != nil {
				return object.self
			}
		}
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = c.replaceGuidsWithChannels(value)
		}
		return result
	default:
		return payload
	}
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}
