package pagedriver

import (
	"encoding/base64"
	"os"
)

// ElementHandle points to a DOM element inside a frame. It extends JSHandle
// with element-specific operations.
type ElementHandle struct {
	JSHandle
}

func newElementHandle(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *ElementHandle {
	e := &ElementHandle{}
	e.createChannelOwner(e, parent, parent.conn, objectType, guid, initializer)
	e.initJSHandle()
	return e
}

func (e *ElementHandle) AsElement() *ElementHandle {
	return e
}

// OwnerFrame returns the frame containing the element, or nil for elements
// from detached subtrees.
func (e *ElementHandle) OwnerFrame() (*Frame, error) {
	result, err := e.ch.Send("ownerFrame", nil)
	if err != nil {
		return nil, err
	}
	frame, _ := result.(*Frame)
	return frame, nil
}

// ContentFrame returns the frame hosted by an iframe element, or nil.
func (e *ElementHandle) ContentFrame() (*Frame, error) {
	result, err := e.ch.Send("contentFrame", nil)
	if err != nil {
		return nil, err
	}
	frame, _ := result.(*Frame)
	return frame, nil
}

func (e *ElementHandle) QuerySelector(selector string) (*ElementHandle, error) {
	result, err := e.ch.Send("querySelector", map[string]interface{}{"selector": selector})
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}

func (e *ElementHandle) QuerySelectorAll(selector string) ([]*ElementHandle, error) {
	result, err := e.ch.Send("querySelectorAll", map[string]interface{}{"selector": selector})
	if err != nil {
		return nil, err
	}
	return toElementHandles(result), nil
}

func (e *ElementHandle) EvalOnSelector(selector, expression string, arg interface{}) (interface{}, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	result, err := e.ch.Send("evalOnSelector", map[string]interface{}{
		"selector":   selector,
		"expression": expression,
		"isFunction": isFunctionBody(expression),
		"arg":        serialized,
	})
	if err != nil {
		return nil, err
	}
	return parseResult(result), nil
}

func (e *ElementHandle) EvalOnSelectorAll(selector, expression string, arg interface{}) (interface{}, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	result, err := e.ch.Send("evalOnSelectorAll", map[string]interface{}{
		"selector":   selector,
		"expression": expression,
		"isFunction": isFunctionBody(expression),
		"arg":        serialized,
	})
	if err != nil {
		return nil, err
	}
	return parseResult(result), nil
}

func (e *ElementHandle) TextContent() (string, error) {
	result, err := e.ch.Send("textContent", nil)
	if err != nil {
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

func (e *ElementHandle) InnerText() (string, error) {
	result, err := e.ch.Send("innerText", nil)
	if err != nil {
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

func (e *ElementHandle) InnerHTML() (string, error) {
	result, err := e.ch.Send("innerHTML", nil)
	if err != nil {
		return "", err
	}
	html, _ := result.(string)
	return html, nil
}

func (e *ElementHandle) GetAttribute(name string) (string, error) {
	result, err := e.ch.Send("getAttribute", map[string]interface{}{"name": name})
	if err != nil {
		return "", err
	}
	value, _ := result.(string)
	return value, nil
}

func (e *ElementHandle) IsVisible() (bool, error) {
	return e.boolOp("isVisible")
}

func (e *ElementHandle) IsHidden() (bool, error) {
	return e.boolOp("isHidden")
}

func (e *ElementHandle) IsEnabled() (bool, error) {
	return e.boolOp("isEnabled")
}

func (e *ElementHandle) IsDisabled() (bool, error) {
	return e.boolOp("isDisabled")
}

func (e *ElementHandle) IsEditable() (bool, error) {
	return e.boolOp("isEditable")
}

func (e *ElementHandle) IsChecked() (bool, error) {
	return e.boolOp("isChecked")
}

func (e *ElementHandle) boolOp(method string) (bool, error) {
	result, err := e.ch.Send(method, nil)
	if err != nil {
		return false, err
	}
	value, _ := result.(bool)
	return value, nil
}

// BoundingBox returns the element's box in main-frame coordinates, or nil
// when the element is not visible.
func (e *ElementHandle) BoundingBox() (*Rect, error) {
	result, err := e.ch.Send("boundingBox", nil)
	if err != nil {
		return nil, err
	}
	box, ok := result.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	r := &Rect{}
	if v, ok := box["x"].(float64); ok {
		r.X = v
	}
	if v, ok := box["y"].(float64); ok {
		r.Y = v
	}
	if v, ok := box["width"].(float64); ok {
		r.Width = v
	}
	if v, ok := box["height"].(float64); ok {
		r.Height = v
	}
	return r, nil
}

func (e *ElementHandle) ScrollIntoViewIfNeeded(timeout ...float64) error {
	params := map[string]interface{}{}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	_, err := e.ch.Send("scrollIntoViewIfNeeded", params)
	return err
}

func (e *ElementHandle) Click(options ...ClickOptions) error {
	_, err := e.ch.Send("click", toParams(firstOption(options)))
	return err
}

func (e *ElementHandle) DblClick(options ...ClickOptions) error {
	_, err := e.ch.Send("dblclick", toParams(firstOption(options)))
	return err
}

func (e *ElementHandle) Tap(options ...ClickOptions) error {
	_, err := e.ch.Send("tap", toParams(firstOption(options)))
	return err
}

func (e *ElementHandle) Hover(options ...HoverOptions) error {
	_, err := e.ch.Send("hover", toParams(firstOption(options)))
	return err
}

func (e *ElementHandle) Fill(value string, options ...FillOptions) error {
	params := toParams(firstOption(options))
	params["value"] = value
	_, err := e.ch.Send("fill", params)
	return err
}

func (e *ElementHandle) Focus() error {
	_, err := e.ch.Send("focus", nil)
	return err
}

func (e *ElementHandle) Type(text string, options ...TypeOptions) error {
	params := toParams(firstOption(options))
	params["text"] = text
	_, err := e.ch.Send("type", params)
	return err
}

func (e *ElementHandle) Press(key string, options ...TypeOptions) error {
	params := toParams(firstOption(options))
	params["key"] = key
	_, err := e.ch.Send("press", params)
	return err
}

func (e *ElementHandle) Check(options ...CheckOptions) error {
	_, err := e.ch.Send("check", toParams(firstOption(options)))
	return err
}

func (e *ElementHandle) Uncheck(options ...CheckOptions) error {
	_, err := e.ch.Send("uncheck", toParams(firstOption(options)))
	return err
}

func (e *ElementHandle) SelectOption(values SelectOptionValues, options ...FillOptions) ([]string, error) {
	params := toParams(firstOption(options))
	mergeSelectOptionValues(params, values)
	result, err := e.ch.Send("selectOption", params)
	if err != nil {
		return nil, err
	}
	return toStringSlice(result), nil
}

func (e *ElementHandle) SelectText(timeout ...float64) error {
	params := map[string]interface{}{}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	_, err := e.ch.Send("selectText", params)
	return err
}

func (e *ElementHandle) SetInputFiles(files []FilePayload, options ...SetInputFilesOptions) error {
	payloads, err := normalizeFilePayloads(files)
	if err != nil {
		return err
	}
	params := toParams(firstOption(options))
	params["files"] = payloads
	_, err = e.ch.Send("setInputFiles", params)
	return err
}

func (e *ElementHandle) DispatchEvent(typ string, eventInit interface{}) error {
	serialized, err := serializeArgument(eventInit)
	if err != nil {
		return err
	}
	_, err = e.ch.Send("dispatchEvent", map[string]interface{}{
		"type":      typ,
		"eventInit": serialized,
	})
	return err
}

// Screenshot captures the element and returns PNG or JPEG bytes. When
// options name a Path the image is also written there.
func (e *ElementHandle) Screenshot(options ...ScreenshotOptions) ([]byte, error) {
	opts := firstOption(options)
	params := toParams(opts)
	if opts != nil && opts.Path != nil && params["type"] == nil {
		params["type"] = screenshotTypeFromPath(*opts.Path)
	}
	result, err := e.ch.Send("screenshot", params)
	if err != nil {
		return nil, err
	}
	encoded, _ := result.(string)
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Path != nil {
		if err := os.WriteFile(*opts.Path, image, 0o644); err != nil {
			return nil, err
		}
	}
	return image, nil
}

// WaitForElementState blocks until the element reaches the given state
// ("visible", "hidden", "stable", "enabled", "disabled", "editable").
func (e *ElementHandle) WaitForElementState(state string, timeout ...float64) error {
	params := map[string]interface{}{"state": state}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	_, err := e.ch.Send("waitForElementState", params)
	return err
}

// WaitForSelector waits for a descendant matching selector relative to this
// element.
func (e *ElementHandle) WaitForSelector(selector string, options ...WaitForSelectorOptions) (*ElementHandle, error) {
	params := toParams(firstOption(options))
	params["selector"] = selector
	result, err := e.ch.Send("waitForSelector", params)
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}
