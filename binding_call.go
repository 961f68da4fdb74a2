package pagedriver

// BindingFunc is a function exposed to page javascript via ExposeBinding.
type BindingFunc func(source *BindingSource, args ...interface{}) (interface{}, error)

// BindingSource describes where an exposed binding was invoked from.
type BindingSource struct {
	Context *BrowserContext
	Page    *Page
	Frame   *Frame
}

// BindingCall is one pending invocation of an exposed binding. Call runs
// the Go function and reports its result or error back to the page.
type BindingCall struct {
	channelOwner
}

func newBindingCall(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *BindingCall {
	b := &BindingCall{}
	b.createChannelOwner(b, parent, parent.conn, objectType, guid, initializer)
	return b
}

func (b *BindingCall) Name() string {
	return b.initializerString("name")
}

func (b *BindingCall) Call(fn BindingFunc) {
	frame, _ := b.initializer["frame"].(*Frame)
	source := &BindingSource{Frame: frame}
	if frame != nil {
		source.Page = frame.Page()
		if source.Page != nil {
			source.Context = source.Page.Context()
		}
	}

	var args []interface{}
	if handle, ok := b.initializer["handle"].(*JSHandle); ok {
		args = []interface{}{handle}
	} else if raw, ok := b.initializer["args"].([]interface{}); ok {
		for _, arg := range raw {
			args = append(args, parseResult(arg))
		}
	}

	result, err := fn(source, args...)
	if err != nil {
		b.ch.SendNoReply("reject", map[string]interface{}{
			"error": serializeError(err),
		})
		return
	}
	serialized, err := serializeArgument(result)
	if err != nil {
		b.ch.SendNoReply("reject", map[string]interface{}{
			"error": serializeError(err),
		})
		return
	}
	b.ch.SendNoReply("resolve", map[string]interface{}{
		"result": serialized,
	})
}
