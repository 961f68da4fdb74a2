package pagedriver

import "sync"

// JSHandle references a JavaScript value living in the page. Handles pin the
// value against garbage collection until disposed.
type JSHandle struct {
	channelOwner

	previewMu sync.Mutex
	preview   string
}

func newJSHandle(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *JSHandle {
	h := &JSHandle{}
	h.createChannelOwner(h, parent, parent.conn, objectType, guid, initializer)
	h.initJSHandle()
	return h
}

// initJSHandle wires the shared JSHandle behavior; ElementHandle reuses it.
func (h *JSHandle) initJSHandle() {
	h.preview = h.initializerString("preview")
	h.onProto("previewUpdated", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		preview, _ := params["preview"].(string)
		h.previewMu.Lock()
		h.preview = preview
		h.previewMu.Unlock()
	})
}

func (h *JSHandle) String() string {
	h.previewMu.Lock()
	defer h.previewMu.Unlock()
	return h.preview
}

// Evaluate runs the expression in the page with this handle as argument and
// returns the result by value.
func (h *JSHandle) Evaluate(expression string, arg interface{}) (interface{}, error) {
	return evaluateOnChannel(h.ch, "evaluateExpression", expression, arg)
}

// EvaluateHandle is Evaluate returning the result as a live handle.
func (h *JSHandle) EvaluateHandle(expression string, arg interface{}) (*JSHandle, error) {
	result, err := evaluateHandleOnChannel(h.ch, "evaluateExpressionHandle", expression, arg)
	if err != nil {
		return nil, err
	}
	return toJSHandle(result), nil
}

// GetProperty returns a handle to a single property of the value.
func (h *JSHandle) GetProperty(name string) (*JSHandle, error) {
	result, err := h.ch.Send("getProperty", map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	return toJSHandle(result), nil
}

// GetProperties returns handles for the value's own enumerable properties.
func (h *JSHandle) GetProperties() (map[string]*JSHandle, error) {
	result, err := h.ch.Send("getPropertyList", nil)
	if err != nil {
		return nil, err
	}
	properties := make(map[string]*JSHandle)
	list, _ := result.([]interface{})
	for _, item := range list {
		pair, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := pair["name"].(string)
		if handle := toJSHandle(pair["value"]); handle != nil {
			properties[name] = handle
		}
	}
	return properties, nil
}

// JSONValue returns the JSON-serializable value of the handle.
func (h *JSHandle) JSONValue() (interface{}, error) {
	result, err := h.ch.Send("jsonValue", nil)
	if err != nil {
		return nil, err
	}
	return parseResult(result), nil
}

// AsElement returns the handle as an element handle, or nil when it does not
// point at a DOM node.
func (h *JSHandle) AsElement() *ElementHandle {
	if element, ok := h.self.(*ElementHandle); ok {
		return element
	}
	return nil
}

// Dispose releases the remote value.
func (h *JSHandle) Dispose() error {
	_, err := h.ch.Send("dispose", nil)
	return err
}

// evaluateOnChannel implements the shared evaluate wire call used by frames,
// workers and handles.
func evaluateOnChannel(ch *channel, method, expression string, arg interface{}) (interface{}, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	result, err := ch.Send(method, map[string]interface{}{
		"expression": expression,
		"isFunction": isFunctionBody(expression),
		"arg":        serialized,
	})
	if err != nil {
		return nil, err
	}
	return parseResult(result), nil
}

func evaluateHandleOnChannel(ch *channel, method, expression string, arg interface{}) (interface{}, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	return ch.Send(method, map[string]interface{}{
		"expression": expression,
		"isFunction": isFunctionBody(expression),
		"arg":        serialized,
	})
}

// toJSHandle views any handle-typed result as a *JSHandle; element handles
// qualify through their embedded JSHandle.
func toJSHandle(value interface{}) *JSHandle {
	switch v := value.(type) {
	case *JSHandle:
		return v
	case *ElementHandle:
		return &v.JSHandle
	default:
		return nil
	}
}
