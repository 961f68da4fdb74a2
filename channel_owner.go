package pagedriver

// channelOwner is the base of every protocol object. It tracks the guid,
// the parent/child tree mirrored from the driver, the raw initializer, and
// two listener registries: protoEvents for driver events addressed to this
// guid, and the embedded public emitter for API-level events.
type channelOwner struct {
	eventEmitter

	conn        *connection
	objectType  string
	guid        string
	parent      *channelOwner
	children    map[string]*channelOwner
	initializer map[string]interface{}
	ch          *channel
	self        interface{}

	protoEvents eventEmitter

	wasCollected   bool
	isInternalType bool

	// maps public event names to protocol subscription names for
	// updateSubscription bookkeeping.
	eventSubscriptions map[string]string
}

func (o *channelOwner) createChannelOwner(self interface{}, parent *channelOwner, conn *connection, objectType, guid string, initializer map[string]interface{}) {
	o.conn = conn
	o.objectType = objectType
	o.guid = guid
	o.parent = parent
	o.children = make(map[string]*channelOwner)
	o.initializer = initializer
	o.self = self
	o.ch = &channel{connection: conn, guid: guid, owner: o}

	conn.registerObject(o)
	if parent != nil {
		parent.children[guid] = o
	}

	o.eventEmitter.onListenerAdded = func(event string) {
		o.updateSubscription(event, true)
	}
	o.eventEmitter.onListenerRemoved = func(event string) {
		o.updateSubscription(event, false)
	}
}

func (o *channelOwner) channel() *channel {
	return o.ch
}

func (o *channelOwner) markAsInternalType() {
	o.isInternalType = true
}

func (o *channelOwner) setEventSubscriptionMapping(mapping map[string]string) {
	o.eventSubscriptions = mapping
}

func (o *channelOwner) updateSubscription(event string, enabled bool) {
	protocolEvent, ok := o.eventSubscriptions[event]
	if !ok {
		return
	}
	o.ch.SendNoReply("updateSubscription", map[string]interface{}{
		"event":   protocolEvent,
		"enabled": enabled,
	})
}

// onProto registers a handler for a driver event addressed to this object.
func (o *channelOwner) onProto(method string, handler eventHandler) {
	o.protoEvents.On(method, handler)
}

// dispose drops this object and its subtree from the registries. Called on
// __dispose__ and when a parent goes away.
func (o *channelOwner) dispose(reason string) {
	if o.parent != nil {
		delete(o.parent.children, o.guid)
	}
	o.conn.unregisterObject(o.guid)
	o.wasCollected = reason == "gc"

	for _, child := range o.children {
		child.parent = nil
		child.dispose(reason)
	}
	o.children = make(map[string]*channelOwner)
}

// adopt reparents a child created under another owner.
func (o *channelOwner) adopt(child *channelOwner) {
	if child.parent != nil {
		delete(child.parent.children, child.guid)
	}
	o.children[child.guid] = child
	child.parent = o
}

// initializer accessors; the driver controls the shapes, so missing keys
// simply yield zero values.

func (o *channelOwner) initializerString(key string) string {
	v, _ := o.initializer[key].(string)
	return v
}

func (o *channelOwner) initializerBool(key string) bool {
	v, _ := o.initializer[key].(bool)
	return v
}

func (o *channelOwner) initializerFloat(key string) float64 {
	v, _ := o.initializer[key].(float64)
	return v
}

// rootChannelOwner anchors the object tree at guid "" and performs the
// handshake that yields the Playwright object.
type rootChannelOwner struct {
	channelOwner
}

func newRootChannelOwner(conn *connection) *rootChannelOwner {
	root := &rootChannelOwner{}
	root.createChannelOwner(root, nil, conn, "Root", "", make(map[string]interface{}))
	return root
}

func (r *rootChannelOwner) initialize() (*Playwright, error) {
	result, err := r.ch.Send("initialize", map[string]interface{}{
		"sdkLanguage": "go",
	})
	if err != nil {
		return nil, err
	}
	pw, ok := result.(*Playwright)
	if !ok {
		return nil, &Error{Name: "Error", Message: "initialize did not return a Playwright object"}
	}
	return pw, nil
}
