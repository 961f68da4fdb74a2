package pagedriver

import (
	"encoding/base64"
	"os"
	"sync"
)

// Page is a single tab or popup. Input and DOM operations delegate to the
// main frame.
type Page struct {
	channelOwner

	Keyboard    *Keyboard
	Mouse       *Mouse
	Touchscreen *Touchscreen

	timeoutSettings *timeoutSettings

	mu           sync.Mutex
	context      *BrowserContext
	mainFrame    *Frame
	frames       []*Frame
	workers      []*Worker
	viewport     *Size
	routes       []*routeEntry
	bindings     map[string]BindingFunc
	closed       bool
	ownedContext *BrowserContext
}

type routeEntry struct {
	matcher *urlMatcher
	handler func(*Route)
}

func newPage(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Page {
	p := &Page{bindings: make(map[string]BindingFunc)}
	p.createChannelOwner(p, parent, parent.conn, objectType, guid, initializer)
	p.Keyboard = &Keyboard{ch: p.ch}
	p.Mouse = &Mouse{ch: p.ch}
	p.Touchscreen = &Touchscreen{ch: p.ch}

	if context, ok := parent.self.(*BrowserContext); ok {
		p.context = context
		p.timeoutSettings = newTimeoutSettings(context.timeoutSettings)
	} else {
		p.timeoutSettings = newTimeoutSettings(nil)
	}

	if frame, ok := initializer["mainFrame"].(*Frame); ok {
		p.mainFrame = frame
		frame.setPage(p)
		p.frames = append(p.frames, frame)
	}
	if viewport, ok := initializer["viewportSize"].(map[string]interface{}); ok {
		p.viewport = &Size{}
		if w, ok := viewport["width"].(float64); ok {
			p.viewport.Width = int(w)
		}
		if h, ok := viewport["height"].(float64); ok {
			p.viewport.Height = int(h)
		}
	}

	p.setEventSubscriptionMapping(map[string]string{
		EventConsole:         "console",
		EventDialog:          "dialog",
		EventRequest:         "request",
		EventResponse:        "response",
		EventRequestFailed:   "requestFailed",
		EventRequestFinished: "requestFinished",
		EventFileChooser:     "fileChooser",
	})

	p.onProto("bindingCall", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if call, ok := params["binding"].(*BindingCall); ok {
			p.onBindingCall(call)
		}
	})
	p.onProto("close", func(interface{}) { p.onClose() })
	p.onProto("console", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		p.Emit(EventConsole, newConsoleMessage(params))
	})
	p.onProto("crash", func(interface{}) { p.Emit(EventCrash, p) })
	p.onProto("dialog", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if dialog, ok := params["dialog"].(*Dialog); ok {
			p.onDialog(dialog)
		}
	})
	p.onProto("download", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		p.Emit(EventDownload, newDownload(p, params))
	})
	p.onProto("fileChooser", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		element, _ := params["element"].(*ElementHandle)
		isMultiple, _ := params["isMultiple"].(bool)
		p.Emit(EventFileChooser, newFileChooser(p, element, isMultiple))
	})
	p.onProto("frameAttached", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if frame, ok := params["frame"].(*Frame); ok {
			p.onFrameAttached(frame)
		}
	})
	p.onProto("frameDetached", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if frame, ok := params["frame"].(*Frame); ok {
			p.onFrameDetached(frame)
		}
	})
	p.onProto("pageError", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		errPayload, _ := params["error"].(map[string]interface{})
		innerPayload, _ := errPayload["error"].(map[string]interface{})
		name, _ := innerPayload["name"].(string)
		message, _ := innerPayload["message"].(string)
		stack, _ := innerPayload["stack"].(string)
		p.Emit(EventPageError, &Error{Name: name, Message: message, Stack: stack})
	})
	p.onProto("popup", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if popup, ok := params["page"].(*Page); ok {
			p.Emit(EventPopup, popup)
		}
	})
	p.onProto("route", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if route, ok := params["route"].(*Route); ok {
			p.onRoute(route)
		}
	})
	p.onProto("request", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if request, ok := params["request"].(*Request); ok {
			p.Emit(EventRequest, request)
		}
	})
	p.onProto("requestFailed", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if request, ok := params["request"].(*Request); ok {
			if text, ok := params["failureText"].(string); ok {
				request.setFailure(text)
			}
			p.Emit(EventRequestFailed, request)
		}
	})
	p.onProto("requestFinished", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if request, ok := params["request"].(*Request); ok {
			p.Emit(EventRequestFinished, request)
		}
	})
	p.onProto("response", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if response, ok := params["response"].(*Response); ok {
			p.Emit(EventResponse, response)
		}
	})
	p.onProto("worker", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if worker, ok := params["worker"].(*Worker); ok {
			worker.setPage(p)
			p.mu.Lock()
			p.workers = append(p.workers, worker)
			p.mu.Unlock()
			p.Emit(EventWorker, worker)
		}
	})
	return p
}

func (p *Page) onFrameAttached(frame *Frame) {
	frame.setPage(p)
	p.mu.Lock()
	p.frames = append(p.frames, frame)
	p.mu.Unlock()
	p.Emit(EventFrameAttached, frame)
}

func (p *Page) onFrameDetached(frame *Frame) {
	frame.mu.Lock()
	frame.detached = true
	frame.mu.Unlock()
	p.mu.Lock()
	for i, f := range p.frames {
		if f == frame {
			p.frames = append(p.frames[:i], p.frames[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
	p.Emit(EventFrameDetached, frame)
}

func (p *Page) onClose() {
	p.mu.Lock()
	p.closed = true
	context := p.context
	p.mu.Unlock()
	if context != nil {
		context.removePage(p)
	}
	p.Emit(EventClose, p)
	p.RemoveListeners(EventClose)
}

func (p *Page) onDialog(dialog *Dialog) {
	if p.Emit(EventDialog, dialog) {
		return
	}
	// No handler installed. beforeunload must be accepted to let the close
	// proceed; every other dialog blocks the page unless dismissed.
	if dialog.Type() == "beforeunload" {
		_ = dialog.Accept()
	} else {
		_ = dialog.Dismiss()
	}
}

func (p *Page) onBindingCall(call *BindingCall) {
	p.mu.Lock()
	fn := p.bindings[call.Name()]
	p.mu.Unlock()
	if fn == nil {
		if context := p.Context(); context != nil {
			context.onBindingCall(call)
		}
		return
	}
	go call.Call(fn)
}

func (p *Page) onRoute(route *Route) {
	url := route.Request().URL()
	p.mu.Lock()
	var handler func(*Route)
	for _, entry := range p.routes {
		if entry.matcher.matches(url) {
			handler = entry.handler
			break
		}
	}
	p.mu.Unlock()
	if handler != nil {
		go handler(route)
		return
	}
	if context := p.Context(); context != nil {
		context.onRoute(route)
		return
	}
	go func() { _ = route.Continue() }()
}

func (p *Page) removeWorker(worker *Worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.workers {
		if w == worker {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			return
		}
	}
}

// Context returns the browser context owning the page.
func (p *Page) Context() *BrowserContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.context
}

func (p *Page) MainFrame() *Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mainFrame
}

func (p *Page) Frames() []*Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Frame(nil), p.frames...)
}

// Frame returns the frame with the given name attribute, or nil.
func (p *Page) Frame(name string) *Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.frames {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// FrameByURL returns the first frame whose URL matches, or nil.
func (p *Page) FrameByURL(url URLMatch) *Frame {
	matcher := newURLMatcher(url)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.frames {
		if matcher.matches(f.URL()) {
			return f
		}
	}
	return nil
}

func (p *Page) Workers() []*Worker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Worker(nil), p.workers...)
}

// Opener returns the page that opened this popup, or nil.
func (p *Page) Opener() *Page {
	opener, _ := p.initializer["opener"].(*Page)
	if opener != nil && opener.IsClosed() {
		return nil
	}
	return opener
}

func (p *Page) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) URL() string {
	return p.MainFrame().URL()
}

func (p *Page) SetDefaultTimeout(timeout float64) {
	p.timeoutSettings.setDefaultTimeout(timeout)
	p.ch.SendNoReply("setDefaultTimeoutNoReply", map[string]interface{}{"timeout": timeout})
}

func (p *Page) SetDefaultNavigationTimeout(timeout float64) {
	p.timeoutSettings.setDefaultNavigationTimeout(timeout)
	p.ch.SendNoReply("setDefaultNavigationTimeoutNoReply", map[string]interface{}{"timeout": timeout})
}

// Navigation and content, delegated to the main frame.

func (p *Page) Goto(url string, options ...GotoOptions) (*Response, error) {
	return p.MainFrame().Goto(url, options...)
}

func (p *Page) WaitForNavigation(options ...WaitForNavigationOptions) (*Response, error) {
	return p.MainFrame().WaitForNavigation(options...)
}

func (p *Page) WaitForLoadState(state string, timeout ...float64) error {
	return p.MainFrame().WaitForLoadState(state, timeout...)
}

func (p *Page) WaitForURL(url URLMatch, options ...WaitForNavigationOptions) error {
	return p.MainFrame().WaitForURL(url, options...)
}

func (p *Page) Content() (string, error) {
	return p.MainFrame().Content()
}

func (p *Page) SetContent(html string, options ...NavigationOptions) error {
	return p.MainFrame().SetContent(html, options...)
}

func (p *Page) Title() (string, error) {
	return p.MainFrame().Title()
}

func (p *Page) Reload(options ...NavigationOptions) (*Response, error) {
	params := toParams(firstOption(options))
	result, err := p.ch.Send("reload", params)
	if err != nil {
		return nil, err
	}
	response, _ := result.(*Response)
	return response, nil
}

// GoBack navigates to the previous history entry; nil when there is none.
func (p *Page) GoBack(options ...NavigationOptions) (*Response, error) {
	params := toParams(firstOption(options))
	result, err := p.ch.Send("goBack", params)
	if err != nil {
		return nil, err
	}
	response, _ := result.(*Response)
	return response, nil
}

func (p *Page) GoForward(options ...NavigationOptions) (*Response, error) {
	params := toParams(firstOption(options))
	result, err := p.ch.Send("goForward", params)
	if err != nil {
		return nil, err
	}
	response, _ := result.(*Response)
	return response, nil
}

// DOM access, delegated to the main frame.

func (p *Page) QuerySelector(selector string) (*ElementHandle, error) {
	return p.MainFrame().QuerySelector(selector)
}

func (p *Page) QuerySelectorAll(selector string) ([]*ElementHandle, error) {
	return p.MainFrame().QuerySelectorAll(selector)
}

func (p *Page) EvalOnSelector(selector, expression string, arg interface{}) (interface{}, error) {
	return p.MainFrame().EvalOnSelector(selector, expression, arg)
}

func (p *Page) EvalOnSelectorAll(selector, expression string, arg interface{}) (interface{}, error) {
	return p.MainFrame().EvalOnSelectorAll(selector, expression, arg)
}

func (p *Page) Evaluate(expression string, arg interface{}) (interface{}, error) {
	return p.MainFrame().Evaluate(expression, arg)
}

func (p *Page) EvaluateHandle(expression string, arg interface{}) (*JSHandle, error) {
	return p.MainFrame().EvaluateHandle(expression, arg)
}

func (p *Page) WaitForSelector(selector string, options ...WaitForSelectorOptions) (*ElementHandle, error) {
	return p.MainFrame().WaitForSelector(selector, options...)
}

func (p *Page) WaitForFunction(expression string, arg interface{}, options ...WaitForFunctionOptions) (*JSHandle, error) {
	return p.MainFrame().WaitForFunction(expression, arg, options...)
}

func (p *Page) AddScriptTag(options AddTagOptions) (*ElementHandle, error) {
	return p.MainFrame().AddScriptTag(options)
}

func (p *Page) AddStyleTag(options AddTagOptions) (*ElementHandle, error) {
	return p.MainFrame().AddStyleTag(options)
}

// Input, delegated to the main frame.

func (p *Page) Click(selector string, options ...ClickOptions) error {
	return p.MainFrame().Click(selector, options...)
}

func (p *Page) DblClick(selector string, options ...ClickOptions) error {
	return p.MainFrame().DblClick(selector, options...)
}

func (p *Page) Tap(selector string, options ...ClickOptions) error {
	return p.MainFrame().Tap(selector, options...)
}

func (p *Page) Fill(selector, value string, options ...FillOptions) error {
	return p.MainFrame().Fill(selector, value, options...)
}

func (p *Page) Focus(selector string, timeout ...float64) error {
	return p.MainFrame().Focus(selector, timeout...)
}

func (p *Page) TextContent(selector string, timeout ...float64) (string, error) {
	return p.MainFrame().TextContent(selector, timeout...)
}

func (p *Page) InnerText(selector string, timeout ...float64) (string, error) {
	return p.MainFrame().InnerText(selector, timeout...)
}

func (p *Page) InnerHTML(selector string, timeout ...float64) (string, error) {
	return p.MainFrame().InnerHTML(selector, timeout...)
}

func (p *Page) GetAttribute(selector, name string, timeout ...float64) (string, error) {
	return p.MainFrame().GetAttribute(selector, name, timeout...)
}

func (p *Page) Hover(selector string, options ...HoverOptions) error {
	return p.MainFrame().Hover(selector, options...)
}

func (p *Page) SelectOption(selector string, values SelectOptionValues, options ...FillOptions) ([]string, error) {
	return p.MainFrame().SelectOption(selector, values, options...)
}

func (p *Page) SetInputFiles(selector string, files []FilePayload, options ...SetInputFilesOptions) error {
	return p.MainFrame().SetInputFiles(selector, files, options...)
}

func (p *Page) Type(selector, text string, options ...TypeOptions) error {
	return p.MainFrame().Type(selector, text, options...)
}

func (p *Page) Press(selector, key string, options ...TypeOptions) error {
	return p.MainFrame().Press(selector, key, options...)
}

func (p *Page) Check(selector string, options ...CheckOptions) error {
	return p.MainFrame().Check(selector, options...)
}

func (p *Page) Uncheck(selector string, options ...CheckOptions) error {
	return p.MainFrame().Uncheck(selector, options...)
}

func (p *Page) DispatchEvent(selector, typ string, eventInit interface{}, options ...DispatchEventOptions) error {
	return p.MainFrame().DispatchEvent(selector, typ, eventInit, options...)
}

// Page-level operations.

func (p *Page) SetViewportSize(width, height int) error {
	_, err := p.ch.Send("setViewportSize", map[string]interface{}{
		"viewportSize": map[string]interface{}{"width": width, "height": height},
	})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.viewport = &Size{Width: width, Height: height}
	p.mu.Unlock()
	return nil
}

// ViewportSize returns the current viewport, or nil with NoDefaultViewport.
func (p *Page) ViewportSize() *Size {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.viewport == nil {
		return nil
	}
	v := *p.viewport
	return &v
}

func (p *Page) BringToFront() error {
	_, err := p.ch.Send("bringToFront", nil)
	return err
}

func (p *Page) EmulateMedia(options ...EmulateMediaOptions) error {
	_, err := p.ch.Send("emulateMedia", toParams(firstOption(options)))
	return err
}

func (p *Page) SetExtraHTTPHeaders(headers map[string]string) error {
	_, err := p.ch.Send("setExtraHTTPHeaders", map[string]interface{}{
		"headers": serializeHeaders(headers),
	})
	return err
}

// AddInitScript evaluates the script in every new document before any of
// the page's own scripts run.
func (p *Page) AddInitScript(script string) error {
	_, err := p.ch.Send("addInitScript", map[string]interface{}{"source": script})
	return err
}

// ExposeBinding makes fn callable from page javascript as window[name].
// The function receives the calling frame as source.
func (p *Page) ExposeBinding(name string, fn BindingFunc, handle ...bool) error {
	p.mu.Lock()
	if _, ok := p.bindings[name]; ok {
		p.mu.Unlock()
		return &Error{Name: "Error", Message: "Function \"" + name + "\" has been already registered"}
	}
	if context := p.context; context != nil && context.hasBinding(name) {
		p.mu.Unlock()
		return &Error{Name: "Error", Message: "Function \"" + name + "\" has been already registered in the browser context"}
	}
	p.bindings[name] = fn
	p.mu.Unlock()
	params := map[string]interface{}{"name": name}
	if len(handle) > 0 && handle[0] {
		params["needsHandle"] = true
	}
	_, err := p.ch.Send("exposeBinding", params)
	return err
}

// ExposeFunction is ExposeBinding without the source argument.
func (p *Page) ExposeFunction(name string, fn func(args ...interface{}) (interface{}, error)) error {
	return p.ExposeBinding(name, func(_ *BindingSource, args ...interface{}) (interface{}, error) {
		return fn(args...)
	})
}

// Route runs handler for every request whose URL matches. Later
// registrations win over earlier ones; unmatched requests fall through to
// context routes and finally continue unchanged.
func (p *Page) Route(url URLMatch, handler func(*Route)) error {
	p.mu.Lock()
	p.routes = append([]*routeEntry{{matcher: newURLMatcher(url), handler: handler}}, p.routes...)
	count := len(p.routes)
	p.mu.Unlock()
	if count == 1 {
		_, err := p.ch.Send("setNetworkInterceptionEnabled", map[string]interface{}{"enabled": true})
		return err
	}
	return nil
}

// Unroute removes routes registered with url. With a handler only that
// exact registration is removed.
func (p *Page) Unroute(url URLMatch, handler ...func(*Route)) error {
	p.mu.Lock()
	remaining := p.routes[:0]
	for _, entry := range p.routes {
		if !matcherEqual(entry.matcher.raw, url) {
			remaining = append(remaining, entry)
			continue
		}
		if len(handler) > 0 && !sameFunc(entry.handler, handler[0]) {
			remaining = append(remaining, entry)
		}
	}
	p.routes = remaining
	count := len(p.routes)
	p.mu.Unlock()
	if count == 0 {
		_, err := p.ch.Send("setNetworkInterceptionEnabled", map[string]interface{}{"enabled": false})
		return err
	}
	return nil
}

// Screenshot captures the page and returns the image bytes. Path also
// writes the image to disk.
func (p *Page) Screenshot(options ...ScreenshotOptions) ([]byte, error) {
	opts := firstOption(options)
	params := toParams(opts)
	if opts != nil && opts.Path != nil && params["type"] == nil {
		params["type"] = screenshotTypeFromPath(*opts.Path)
	}
	result, err := p.ch.Send("screenshot", params)
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

// PDF renders the page as PDF. Chromium headless only.
func (p *Page) PDF(options ...PDFOptions) ([]byte, error) {
	opts := firstOption(options)
	params := toParams(opts)
	result, err := p.ch.Send("pdf", params)
	if err != nil {
		return nil, err
	}
	encoded, _ := result.(string)
	pdf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Path != nil {
		if err := os.WriteFile(*opts.Path, pdf, 0o644); err != nil {
			return nil, err
		}
	}
	return pdf, nil
}

// Close closes the page. Closing an already closed page is a no-op.
func (p *Page) Close(options ...PageCloseOptions) error {
	_, err := p.ch.Send("close", toParams(firstOption(options)))
	if err != nil && !isSafeCloseError(err) {
		return err
	}
	p.mu.Lock()
	owned := p.ownedContext
	p.mu.Unlock()
	if owned != nil {
		return owned.Close()
	}
	return nil
}

// Waiting helpers.

// WaitForEvent blocks until the page emits event with a payload accepted by
// predicate (nil accepts anything) and returns the payload.
func (p *Page) WaitForEvent(event string, predicate func(payload interface{}) bool, timeout ...float64) (interface{}, error) {
	return p.expectEvent(event, predicate, nil, timeout...)
}

// ExpectEvent runs action and waits for event, avoiding the race between
// triggering and subscribing.
func (p *Page) ExpectEvent(event string, action func() error, predicate ...func(payload interface{}) bool) (interface{}, error) {
	var pred func(interface{}) bool
	if len(predicate) > 0 {
		pred = predicate[0]
	}
	return p.expectEvent(event, pred, action)
}

func (p *Page) expectEvent(event string, predicate func(interface{}) bool, action func() error, timeout ...float64) (interface{}, error) {
	effective := p.timeoutSettings.effectiveTimeout()
	if len(timeout) > 0 {
		effective = timeout[0]
	}
	w := newWaiterForEvent(&p.channelOwner, event)
	w.rejectOnTimeout(effective, newTimeoutError("Timeout %dms exceeded while waiting for event \"%s\"", int(effective), event).Message)
	if event != EventClose {
		w.rejectOnEvent(&p.eventEmitter, EventClose, newTargetClosedError("Page closed"), nil)
	}
	if event != EventCrash {
		w.rejectOnEvent(&p.eventEmitter, EventCrash, &Error{Name: "Error", Message: "Page crashed"}, nil)
	}
	w.waitForEvent(&p.eventEmitter, event, predicate)
	if action == nil {
		return w.Wait()
	}
	return w.runAndWait(action)
}

// ExpectNavigation runs action and waits for the resulting navigation. The
// navigation waiter is armed before action runs.
func (p *Page) ExpectNavigation(action func() error, options ...WaitForNavigationOptions) (*Response, error) {
	return p.MainFrame().waitForNavigation(action, options...)
}

func (p *Page) ExpectPopup(action func() error) (*Page, error) {
	result, err := p.ExpectEvent(EventPopup, action)
	if err != nil {
		return nil, err
	}
	popup, _ := result.(*Page)
	return popup, nil
}

func (p *Page) ExpectDownload(action func() error) (*Download, error) {
	result, err := p.ExpectEvent(EventDownload, action)
	if err != nil {
		return nil, err
	}
	download, _ := result.(*Download)
	return download, nil
}

func (p *Page) ExpectConsoleMessage(action func() error) (*ConsoleMessage, error) {
	result, err := p.ExpectEvent(EventConsole, action)
	if err != nil {
		return nil, err
	}
	message, _ := result.(*ConsoleMessage)
	return message, nil
}

func (p *Page) ExpectFileChooser(action func() error) (*FileChooser, error) {
	result, err := p.ExpectEvent(EventFileChooser, action)
	if err != nil {
		return nil, err
	}
	chooser, _ := result.(*FileChooser)
	return chooser, nil
}

func (p *Page) ExpectRequest(url URLMatch, action func() error) (*Request, error) {
	matcher := newURLMatcher(url)
	result, err := p.ExpectEvent(EventRequest, action, func(payload interface{}) bool {
		request, ok := payload.(*Request)
		return ok && matcher.matches(request.URL())
	})
	if err != nil {
		return nil, err
	}
	request, _ := result.(*Request)
	return request, nil
}

func (p *Page) ExpectResponse(url URLMatch, action func() error) (*Response, error) {
	matcher := newURLMatcher(url)
	result, err := p.ExpectEvent(EventResponse, action, func(payload interface{}) bool {
		response, ok := payload.(*Response)
		return ok && matcher.matches(response.URL())
	})
	if err != nil {
		return nil, err
	}
	response, _ := result.(*Response)
	return response, nil
}

func (p *Page) ExpectWorker(action func() error) (*Worker, error) {
	result, err := p.ExpectEvent(EventWorker, action)
	if err != nil {
		return nil, err
	}
	worker, _ := result.(*Worker)
	return worker, nil
}
