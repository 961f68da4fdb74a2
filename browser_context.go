package pagedriver

import "sync"

// BrowserContext is an isolated browser session: its own cookies, cache and
// pages. Contexts are cheap to create and are the unit of test isolation.
type BrowserContext struct {
	channelOwner

	timeoutSettings *timeoutSettings

	mu          sync.Mutex
	browser     *Browser
	pages       []*Page
	routes      []*routeEntry
	bindings    map[string]BindingFunc
	ownerPage   *Page
	closed      bool
	closeCalled bool
}

func newBrowserContext(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *BrowserContext {
	c := &BrowserContext{bindings: make(map[string]BindingFunc)}
	c.createChannelOwner(c, parent, parent.conn, objectType, guid, initializer)
	c.timeoutSettings = newTimeoutSettings(nil)
	if browser, ok := parent.self.(*Browser); ok {
		c.browser = browser
	}

	c.onProto("bindingCall", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if call, ok := params["binding"].(*BindingCall); ok {
			c.onBindingCall(call)
		}
	})
	c.onProto("close", func(interface{}) { c.onClose() })
	c.onProto("page", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if page, ok := params["page"].(*Page); ok {
			c.onPage(page)
		}
	})
	c.onProto("route", func(payload interface{}) {
		params, _ := payload.(map[string]interface{})
		if route, ok := params["route"].(*Route); ok {
			c.onRoute(route)
		}
	})
	return c
}

func (c *BrowserContext) onPage(page *Page) {
	c.mu.Lock()
	c.pages = append(c.pages, page)
	c.mu.Unlock()
	c.Emit(EventPage, page)
	if opener := page.Opener(); opener != nil {
		opener.Emit(EventPopup, page)
	}
}

func (c *BrowserContext) removePage(page *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pages {
		if p == page {
			c.pages = append(c.pages[:i], c.pages[i+1:]...)
			return
		}
	}
}

func (c *BrowserContext) onClose() {
	c.mu.Lock()
	c.closed = true
	browser := c.browser
	c.mu.Unlock()
	if browser != nil {
		browser.removeContext(c)
	}
	c.Emit(EventContextClose, c)
}

func (c *BrowserContext) onRoute(route *Route) {
	url := route.Request().URL()
	c.mu.Lock()
	var handler func(*Route)
	for _, entry := range c.routes {
		if entry.matcher.matches(url) {
			handler = entry.handler
			break
		}
	}
	c.mu.Unlock()
	if handler != nil {
		go handler(route)
		return
	}
	go func() { _ = route.Continue() }()
}

func (c *BrowserContext) onBindingCall(call *BindingCall) {
	c.mu.Lock()
	fn := c.bindings[call.Name()]
	c.mu.Unlock()
	if fn == nil {
		call.ch.SendNoReply("reject", map[string]interface{}{
			"error": serializeError(&Error{Name: "Error", Message: "Binding \"" + call.Name() + "\" is not registered"}),
		})
		return
	}
	go call.Call(fn)
}

func (c *BrowserContext) hasBinding(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bindings[name]
	return ok
}

func (c *BrowserContext) setOwnerPage(page *Page) {
	c.mu.Lock()
	c.ownerPage = page
	c.mu.Unlock()
}

// Browser returns the browser the context belongs to, nil for contexts
// obtained over CDP.
func (c *BrowserContext) Browser() *Browser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.browser
}

func (c *BrowserContext) Pages() []*Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Page(nil), c.pages...)
}

func (c *BrowserContext) SetDefaultTimeout(timeout float64) {
	c.timeoutSettings.setDefaultTimeout(timeout)
	c.ch.SendNoReply("setDefaultTimeoutNoReply", map[string]interface{}{"timeout": timeout})
}

func (c *BrowserContext) SetDefaultNavigationTimeout(timeout float64) {
	c.timeoutSettings.setDefaultNavigationTimeout(timeout)
	c.ch.SendNoReply("setDefaultNavigationTimeoutNoReply", map[string]interface{}{"timeout": timeout})
}

// NewPage opens a page in this context.
func (c *BrowserContext) NewPage() (*Page, error) {
	c.mu.Lock()
	owned := c.ownerPage != nil
	c.mu.Unlock()
	if owned {
		return nil, &Error{Name: "Error", Message: "Please use browser.NewContext()"}
	}
	result, err := c.ch.Send("newPage", nil)
	if err != nil {
		return nil, err
	}
	page, _ := result.(*Page)
	return page, nil
}

// Cookies returns cookies visible to the given URLs, all cookies when none
// are given.
func (c *BrowserContext) Cookies(urls ...string) ([]Cookie, error) {
	params := map[string]interface{}{"urls": urls}
	result, err := c.ch.Send("cookies", params)
	if err != nil {
		return nil, err
	}
	list, _ := result.([]interface{})
	cookies := make([]Cookie, 0, len(list))
	for _, item := range list {
		raw, _ := item.(map[string]interface{})
		cookie := Cookie{}
		cookie.Name, _ = raw["name"].(string)
		cookie.Value, _ = raw["value"].(string)
		if v, ok := raw["domain"].(string); ok {
			cookie.Domain = String(v)
		}
		if v, ok := raw["path"].(string); ok {
			cookie.Path = String(v)
		}
		if v, ok := raw["expires"].(float64); ok {
			cookie.Expires = Float(v)
		}
		if v, ok := raw["httpOnly"].(bool); ok {
			cookie.HTTPOnly = Bool(v)
		}
		if v, ok := raw["secure"].(bool); ok {
			cookie.Secure = Bool(v)
		}
		if v, ok := raw["sameSite"].(string); ok {
			cookie.SameSite = String(v)
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

func (c *BrowserContext) AddCookies(cookies []Cookie) error {
	list := make([]interface{}, 0, len(cookies))
	for _, cookie := range cookies {
		list = append(list, toParams(cookie))
	}
	_, err := c.ch.Send("addCookies", map[string]interface{}{"cookies": list})
	return err
}

func (c *BrowserContext) ClearCookies() error {
	_, err := c.ch.Send("clearCookies", nil)
	return err
}

// GrantPermissions grants browser permissions such as "geolocation", for
// origin when given, for all origins otherwise.
func (c *BrowserContext) GrantPermissions(permissions []string, origin ...string) error {
	params := map[string]interface{}{"permissions": permissions}
	if len(origin) > 0 {
		params["origin"] = origin[0]
	}
	_, err := c.ch.Send("grantPermissions", params)
	return err
}

func (c *BrowserContext) ClearPermissions() error {
	_, err := c.ch.Send("clearPermissions", nil)
	return err
}

// SetGeolocation updates the context's geolocation; nil clears it.
func (c *BrowserContext) SetGeolocation(geolocation *Geolocation) error {
	params := map[string]interface{}{}
	if geolocation != nil {
		params["geolocation"] = toParams(geolocation)
	}
	_, err := c.ch.Send("setGeolocation", params)
	return err
}

func (c *BrowserContext) SetOffline(offline bool) error {
	_, err := c.ch.Send("setOffline", map[string]interface{}{"offline": offline})
	return err
}

func (c *BrowserContext) SetExtraHTTPHeaders(headers map[string]string) error {
	_, err := c.ch.Send("setExtraHTTPHeaders", map[string]interface{}{
		"headers": serializeHeaders(headers),
	})
	return err
}

// AddInitScript evaluates the script in every new document of every page in
// the context.
func (c *BrowserContext) AddInitScript(script string) error {
	_, err := c.ch.Send("addInitScript", map[string]interface{}{"source": script})
	return err
}

// ExposeBinding makes fn callable from every page in the context.
func (c *BrowserContext) ExposeBinding(name string, fn BindingFunc, handle ...bool) error {
	c.mu.Lock()
	if _, ok := c.bindings[name]; ok {
		c.mu.Unlock()
		return &Error{Name: "Error", Message: "Function \"" + name + "\" has been already registered"}
	}
	pages := append([]*Page(nil), c.pages...)
	c.mu.Unlock()
	for _, page := range pages {
		page.mu.Lock()
		_, taken := page.bindings[name]
		page.mu.Unlock()
		if taken {
			return &Error{Name: "Error", Message: "Function \"" + name + "\" has been already registered in one of the pages"}
		}
	}
	c.mu.Lock()
	c.bindings[name] = fn
	c.mu.Unlock()
	params := map[string]interface{}{"name": name}
	if len(handle) > 0 && handle[0] {
		params["needsHandle"] = true
	}
	_, err := c.ch.Send("exposeBinding", params)
	return err
}

func (c *BrowserContext) ExposeFunction(name string, fn func(args ...interface{}) (interface{}, error)) error {
	return c.ExposeBinding(name, func(_ *BindingSource, args ...interface{}) (interface{}, error) {
		return fn(args...)
	})
}

// Route intercepts matching requests from every page in the context. Page
// routes take precedence.
func (c *BrowserContext) Route(url URLMatch, handler func(*Route)) error {
	c.mu.Lock()
	c.routes = append([]*routeEntry{{matcher: newURLMatcher(url), handler: handler}}, c.routes...)
	count := len(c.routes)
	c.mu.Unlock()
	if count == 1 {
		_, err := c.ch.Send("setNetworkInterceptionEnabled", map[string]interface{}{"enabled": true})
		return err
	}
	return nil
}

func (c *BrowserContext) Unroute(url URLMatch, handler ...func(*Route)) error {
	c.mu.Lock()
	remaining := c.routes[:0]
	for _, entry := range c.routes {
		if !matcherEqual(entry.matcher.raw, url) {
			remaining = append(remaining, entry)
			continue
		}
		if len(handler) > 0 && !sameFunc(entry.handler, handler[0]) {
			remaining = append(remaining, entry)
		}
	}
	c.routes = remaining
	count := len(c.routes)
	c.mu.Unlock()
	if count == 0 {
		_, err := c.ch.Send("setNetworkInterceptionEnabled", map[string]interface{}{"enabled": false})
		return err
	}
	return nil
}

// WaitForEvent blocks until the context emits event.
func (c *BrowserContext) WaitForEvent(event string, predicate func(payload interface{}) bool, timeout ...float64) (interface{}, error) {
	return c.expectEvent(event, predicate, nil, timeout...)
}

// ExpectEvent runs action and waits for event.
func (c *BrowserContext) ExpectEvent(event string, action func() error, predicate ...func(payload interface{}) bool) (interface{}, error) {
	var pred func(interface{}) bool
	if len(predicate) > 0 {
		pred = predicate[0]
	}
	return c.expectEvent(event, pred, action)
}

func (c *BrowserContext) expectEvent(event string, predicate func(interface{}) bool, action func() error, timeout ...float64) (interface{}, error) {
	effective := c.timeoutSettings.effectiveTimeout()
	if len(timeout) > 0 {
		effective = timeout[0]
	}
	w := newWaiterForEvent(&c.channelOwner, event)
	w.rejectOnTimeout(effective, newTimeoutError("Timeout %dms exceeded while waiting for event \"%s\"", int(effective), event).Message)
	if event != EventContextClose {
		w.rejectOnEvent(&c.eventEmitter, EventContextClose, newTargetClosedError("Context closed"), nil)
	}
	w.waitForEvent(&c.eventEmitter, event, predicate)
	if action == nil {
		return w.Wait()
	}
	return w.runAndWait(action)
}

// ExpectPage runs action and waits for a page to open in the context.
func (c *BrowserContext) ExpectPage(action func() error) (*Page, error) {
	result, err := c.ExpectEvent(EventPage, action)
	if err != nil {
		return nil, err
	}
	page, _ := result.(*Page)
	return page, nil
}

// Close shuts the context and all its pages down. Closing twice is a no-op.
func (c *BrowserContext) Close() error {
	c.mu.Lock()
	if c.closeCalled {
		c.mu.Unlock()
		return nil
	}
	c.closeCalled = true
	c.mu.Unlock()
	_, err := c.ch.Send("close", nil)
	if err != nil && !isSafeCloseError(err) {
		return err
	}
	return nil
}
