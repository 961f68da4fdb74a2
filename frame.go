package pagedriver

import (
	"sync"
)

// Frame is one frame in a page's frame tree, the main frame included. Most
// Page operations delegate to the main frame.
type Frame struct {
	channelOwner

	mu          sync.Mutex
	page        *Page
	parentFrame *Frame
	childFrames []*Frame
	name        string
	url         string
	detached    bool
	loadStates  map[string]bool

	// frameEvents carries internal navigation/loadstate notifications for
	// waiters, separate from driver protocol events.
	frameEvents eventEmitter
}

func newFrame(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Frame {
	f := &Frame{loadStates: make(map[string]bool)}
	f.createChannelOwner(f, parent, parent.conn, objectType, guid, initializer)
	f.name = f.initializerString("name")
	f.url = f.initializerString("url")
	if parentFrame, ok := initializer["parentFrame"].(*Frame); ok {
		f.parentFrame = parentFrame
		parentFrame.mu.Lock()
		parentFrame.childFrames = append(parentFrame.childFrames, f)
		parentFrame.mu.Unlock()
	}
	if states, ok := initializer["loadStates"].([]interface{}); ok {
		for _, state := range states {
			if s, ok := state.(string); ok {
				f.loadStates[s] = true
			}
		}
	}

	f.onProto("loadstate", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		f.onLoadState(params)
	})
	f.onProto("navigated", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		f.onFrameNavigated(params)
	})
	return f
}

func (f *Frame) onLoadState(params map[string]interface{}) {
	if add, ok := params["add"].(string); ok {
		f.mu.Lock()
		f.loadStates[add] = true
		f.mu.Unlock()
		f.frameEvents.Emit("loadstate", add)
		if page := f.Page(); page != nil && f.parentFrame == nil {
			switch add {
			case "load":
				page.Emit(EventLoad, page)
			case "domcontentloaded":
				page.Emit(EventDOMContentLoaded, page)
			}
		}
	}
	if remove, ok := params["remove"].(string); ok {
		f.mu.Lock()
		delete(f.loadStates, remove)
		f.mu.Unlock()
	}
}

func (f *Frame) onFrameNavigated(params map[string]interface{}) {
	url, _ := params["url"].(string)
	name, _ := params["name"].(string)
	f.mu.Lock()
	f.url = url
	f.name = name
	page := f.page
	f.mu.Unlock()

	f.frameEvents.Emit("navigated", params)
	if _, failed := params["error"]; !failed && page != nil {
		page.Emit(EventFrameNavigated, f)
	}
}

func (f *Frame) setPage(page *Page) {
	f.mu.Lock()
	f.page = page
	f.mu.Unlock()
}

// Page returns the page owning this frame.
func (f *Frame) Page() *Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Frame) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *Frame) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *Frame) ParentFrame() *Frame {
	return f.parentFrame
}

func (f *Frame) ChildFrames() []*Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Frame(nil), f.childFrames...)
}

func (f *Frame) IsDetached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detached
}

// Goto navigates the frame and returns the main resource response, or nil
// for same-document navigations and about:blank.
func (f *Frame) Goto(url string, options ...GotoOptions) (*Response, error) {
	params := toParams(firstOption(options))
	params["url"] = url
	f.fillNavigationTimeout(params)
	result, err := f.ch.Send("goto", params)
	if err != nil {
		return nil, err
	}
	response, _ := result.(*Response)
	return response, nil
}

func (f *Frame) setupNavigationWaiter(timeout float64) *waiter {
	w := newWaiter()
	if page := f.Page(); page != nil {
		w.rejectOnEvent(&page.eventEmitter, EventClose, &Error{Name: "Error", Message: "Navigation failed because page was closed!"}, nil)
		w.rejectOnEvent(&page.eventEmitter, EventCrash, &Error{Name: "Error", Message: "Navigation failed because page crashed!"}, nil)
		w.rejectOnEvent(&page.eventEmitter, EventFrameDetached, &Error{Name: "Error", Message: "Navigating frame was detached!"}, func(payload interface{}) bool {
			return payload == f.self
		})
	}
	w.rejectOnTimeout(timeout, newTimeoutError("Timeout %dms exceeded.", int(timeout)).Message)
	return w
}

// WaitForNavigation blocks until the frame commits a navigation matching the
// options and returns its response when the navigation produced one.
func (f *Frame) WaitForNavigation(options ...WaitForNavigationOptions) (*Response, error) {
	return f.waitForNavigation(nil, options...)
}

// waitForNavigation arms the navigation waiter before running action, so a
// navigation triggered by the action itself is never missed.
func (f *Frame) waitForNavigation(action func() error, options ...WaitForNavigationOptions) (*Response, error) {
	opts := firstOption(options)
	timeout := f.navigationTimeout(nil)
	var matcher *urlMatcher
	if opts != nil {
		if opts.Timeout != nil {
			timeout = *opts.Timeout
		}
		if opts.URL != nil {
			matcher = newURLMatcher(opts.URL)
		}
	}
	w := f.setupNavigationWaiter(timeout)
	w.waitForEvent(&f.frameEvents, "navigated", func(payload interface{}) bool {
		if matcher == nil {
			return true
		}
		params, _ := payload.(map[string]interface{})
		url, _ := params["url"].(string)
		return matcher.matches(url)
	})
	var (
		result interface{}
		err    error
	)
	if action != nil {
		result, err = w.runAndWait(action)
	} else {
		result, err = w.Wait()
	}
	if err != nil {
		return nil, err
	}
	event, _ := result.(map[string]interface{})
	if message, ok := event["error"].(string); ok {
		return nil, &Error{Name: "Error", Message: message}
	}
	if newDocument, ok := event["newDocument"].(map[string]interface{}); ok {
		if request, ok := newDocument["request"].(*Request); ok {
			return request.Response()
		}
	}
	return nil, nil
}

// WaitForURL blocks until the frame's URL matches. When it already matches,
// only the load state is awaited.
func (f *Frame) WaitForURL(url URLMatch, options ...WaitForNavigationOptions) error {
	matcher := newURLMatcher(url)
	if matcher.matches(f.URL()) {
		state := "load"
		if opts := firstOption(options); opts != nil && opts.WaitUntil != nil {
			state = *opts.WaitUntil
		}
		return f.WaitForLoadState(state)
	}
	opts := firstOption(options)
	merged := WaitForNavigationOptions{URL: url}
	if opts != nil {
		merged.WaitUntil = opts.WaitUntil
		merged.Timeout = opts.Timeout
	}
	_, err := f.WaitForNavigation(merged)
	return err
}

// WaitForLoadState blocks until the frame reaches the given lifecycle state;
// it returns immediately when the state already fired.
func (f *Frame) WaitForLoadState(state string, timeout ...float64) error {
	if state == "" {
		state = "load"
	}
	f.mu.Lock()
	reached := f.loadStates[state]
	f.mu.Unlock()
	if reached {
		return nil
	}
	effective := f.navigationTimeout(nil)
	if len(timeout) > 0 {
		effective = timeout[0]
	}
	w := f.setupNavigationWaiter(effective)
	w.waitForEvent(&f.frameEvents, "loadstate", func(payload interface{}) bool {
		return payload == state
	})
	_, err := w.Wait()
	return err
}

// FrameElement returns the iframe element hosting this frame.
func (f *Frame) FrameElement() (*ElementHandle, error) {
	result, err := f.ch.Send("frameElement", nil)
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}

func (f *Frame) Evaluate(expression string, arg interface{}) (interface{}, error) {
	return evaluateOnChannel(f.ch, "evaluateExpression", expression, arg)
}

func (f *Frame) EvaluateHandle(expression string, arg interface{}) (*JSHandle, error) {
	result, err := evaluateHandleOnChannel(f.ch, "evaluateExpressionHandle", expression, arg)
	if err != nil {
		return nil, err
	}
	return toJSHandle(result), nil
}

// QuerySelector returns the first element matching selector, or nil.
func (f *Frame) QuerySelector(selector string) (*ElementHandle, error) {
	result, err := f.ch.Send("querySelector", map[string]interface{}{"selector": selector})
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}

func (f *Frame) QuerySelectorAll(selector string) ([]*ElementHandle, error) {
	result, err := f.ch.Send("querySelectorAll", map[string]interface{}{"selector": selector})
	if err != nil {
		return nil, err
	}
	return toElementHandles(result), nil
}

func (f *Frame) EvalOnSelector(selector, expression string, arg interface{}) (interface{}, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	result, err := f.ch.Send("evalOnSelector", map[string]interface{}{
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

func (f *Frame) EvalOnSelectorAll(selector, expression string, arg interface{}) (interface{}, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	result, err := f.ch.Send("evalOnSelectorAll", map[string]interface{}{
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

// WaitForSelector blocks until selector reaches the requested state and
// returns the element for "attached"/"visible" waits.
func (f *Frame) WaitForSelector(selector string, options ...WaitForSelectorOptions) (*ElementHandle, error) {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	result, err := f.ch.Send("waitForSelector", params)
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}

// WaitForFunction polls expression until it returns a truthy value.
func (f *Frame) WaitForFunction(expression string, arg interface{}, options ...WaitForFunctionOptions) (*JSHandle, error) {
	serialized, err := serializeArgument(arg)
	if err != nil {
		return nil, err
	}
	params := toParams(firstOption(options))
	params["expression"] = expression
	params["isFunction"] = isFunctionBody(expression)
	params["arg"] = serialized
	f.fillTimeout(params)
	result, err := f.ch.Send("waitForFunction", params)
	if err != nil {
		return nil, err
	}
	return toJSHandle(result), nil
}

func (f *Frame) Content() (string, error) {
	result, err := f.ch.Send("content", nil)
	if err != nil {
		return "", err
	}
	content, _ := result.(string)
	return content, nil
}

func (f *Frame) SetContent(html string, options ...NavigationOptions) error {
	params := toParams(firstOption(options))
	params["html"] = html
	f.fillNavigationTimeout(params)
	_, err := f.ch.Send("setContent", params)
	return err
}

func (f *Frame) Title() (string, error) {
	result, err := f.ch.Send("title", nil)
	if err != nil {
		return "", err
	}
	title, _ := result.(string)
	return title, nil
}

func (f *Frame) AddScriptTag(options AddTagOptions) (*ElementHandle, error) {
	params := toParams(options)
	if options.Path != nil {
		source, err := readFileText(*options.Path)
		if err != nil {
			return nil, err
		}
		params["content"] = source
	}
	result, err := f.ch.Send("addScriptTag", params)
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}

func (f *Frame) AddStyleTag(options AddTagOptions) (*ElementHandle, error) {
	params := toParams(options)
	if options.Path != nil {
		source, err := readFileText(*options.Path)
		if err != nil {
			return nil, err
		}
		params["content"] = source
	}
	result, err := f.ch.Send("addStyleTag", params)
	if err != nil {
		return nil, err
	}
	element, _ := result.(*ElementHandle)
	return element, nil
}

func (f *Frame) Click(selector string, options ...ClickOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	_, err := f.ch.Send("click", params)
	return err
}

func (f *Frame) DblClick(selector string, options ...ClickOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	_, err := f.ch.Send("dblclick", params)
	return err
}

func (f *Frame) Tap(selector string, options ...ClickOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	_, err := f.ch.Send("tap", params)
	return err
}

func (f *Frame) Fill(selector, value string, options ...FillOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	params["value"] = value
	f.fillTimeout(params)
	_, err := f.ch.Send("fill", params)
	return err
}

func (f *Frame) Focus(selector string, timeout ...float64) error {
	params := map[string]interface{}{"selector": selector}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	f.fillTimeout(params)
	_, err := f.ch.Send("focus", params)
	return err
}

func (f *Frame) TextContent(selector string, timeout ...float64) (string, error) {
	params := map[string]interface{}{"selector": selector}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	f.fillTimeout(params)
	result, err := f.ch.Send("textContent", params)
	if err != nil {
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

func (f *Frame) InnerText(selector string, timeout ...float64) (string, error) {
	params := map[string]interface{}{"selector": selector}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	f.fillTimeout(params)
	result, err := f.ch.Send("innerText", params)
	if err != nil {
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

func (f *Frame) InnerHTML(selector string, timeout ...float64) (string, error) {
	params := map[string]interface{}{"selector": selector}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	f.fillTimeout(params)
	result, err := f.ch.Send("innerHTML", params)
	if err != nil {
		return "", err
	}
	html, _ := result.(string)
	return html, nil
}

func (f *Frame) GetAttribute(selector, name string, timeout ...float64) (string, error) {
	params := map[string]interface{}{"selector": selector, "name": name}
	if len(timeout) > 0 {
		params["timeout"] = timeout[0]
	}
	f.fillTimeout(params)
	result, err := f.ch.Send("getAttribute", params)
	if err != nil {
		return "", err
	}
	value, _ := result.(string)
	return value, nil
}

func (f *Frame) Hover(selector string, options ...HoverOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	_, err := f.ch.Send("hover", params)
	return err
}

// SelectOption selects <select> options by value, label, index or element
// and returns the selected values.
func (f *Frame) SelectOption(selector string, values SelectOptionValues, options ...FillOptions) ([]string, error) {
	params := toParams(firstOption(options))
	params["selector"] = selector
	mergeSelectOptionValues(params, values)
	f.fillTimeout(params)
	result, err := f.ch.Send("selectOption", params)
	if err != nil {
		return nil, err
	}
	return toStringSlice(result), nil
}

func (f *Frame) SetInputFiles(selector string, files []FilePayload, options ...SetInputFilesOptions) error {
	payloads, err := normalizeFilePayloads(files)
	if err != nil {
		return err
	}
	params := toParams(firstOption(options))
	params["selector"] = selector
	params["files"] = payloads
	f.fillTimeout(params)
	_, err = f.ch.Send("setInputFiles", params)
	return err
}

func (f *Frame) Type(selector, text string, options ...TypeOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	params["text"] = text
	f.fillTimeout(params)
	_, err := f.ch.Send("type", params)
	return err
}

func (f *Frame) Press(selector, key string, options ...TypeOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	params["key"] = key
	f.fillTimeout(params)
	_, err := f.ch.Send("press", params)
	return err
}

func (f *Frame) Check(selector string, options ...CheckOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	_, err := f.ch.Send("check", params)
	return err
}

func (f *Frame) Uncheck(selector string, options ...CheckOptions) error {
	params := toParams(firstOption(options))
	params["selector"] = selector
	f.fillTimeout(params)
	_, err := f.ch.Send("uncheck", params)
	return err
}

func (f *Frame) DispatchEvent(selector, typ string, eventInit interface{}, options ...DispatchEventOptions) error {
	serialized, err := serializeArgument(eventInit)
	if err != nil {
		return err
	}
	params := toParams(firstOption(options))
	params["selector"] = selector
	params["type"] = typ
	params["eventInit"] = serialized
	f.fillTimeout(params)
	_, err = f.ch.Send("dispatchEvent", params)
	return err
}

// fillTimeout applies the page's default timeout when the caller set none.
func (f *Frame) fillTimeout(params map[string]interface{}) {
	if _, ok := params["timeout"]; ok {
		return
	}
	if page := f.Page(); page != nil {
		params["timeout"] = page.timeoutSettings.effectiveTimeout()
	}
}

func (f *Frame) fillNavigationTimeout(params map[string]interface{}) {
	if _, ok := params["timeout"]; ok {
		return
	}
	params["timeout"] = f.navigationTimeout(nil)
}

func (f *Frame) navigationTimeout(override *float64) float64 {
	if override != nil {
		return *override
	}
	if page := f.Page(); page != nil {
		return page.timeoutSettings.effectiveNavigationTimeout()
	}
	return defaultTimeout
}

func toElementHandles(result interface{}) []*ElementHandle {
	list, _ := result.([]interface{})
	elements := make([]*ElementHandle, 0, len(list))
	for _, item := range list {
		if element, ok := item.(*ElementHandle); ok {
			elements = append(elements, element)
		}
	}
	return elements
}

func toStringSlice(result interface{}) []string {
	list, _ := result.([]interface{})
	values := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

func mergeSelectOptionValues(params map[string]interface{}, values SelectOptionValues) {
	var options []interface{}
	for _, v := range values.Values {
		options = append(options, map[string]interface{}{"value": v})
	}
	for _, l := range values.Labels {
		options = append(options, map[string]interface{}{"label": l})
	}
	for _, i := range values.Indexes {
		options = append(options, map[string]interface{}{"index": i})
	}
	if options != nil {
		params["options"] = options
	}
	if len(values.Elements) > 0 {
		elements := make([]interface{}, 0, len(values.Elements))
		for _, e := range values.Elements {
			elements = append(elements, e)
		}
		params["elements"] = elements
	}
}
