package pagedriver

import "sync"

// Browser is a launched or connected browser instance.
type Browser struct {
	channelOwner

	mu                     sync.Mutex
	contexts               []*BrowserContext
	connected              bool
	closeConnectionOnClose bool
}

func newBrowser(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Browser {
	b := &Browser{connected: true}
	b.createChannelOwner(b, parent, parent.conn, objectType, guid, initializer)
	b.onProto("close", func(interface{}) { b.onClose() })
	return b
}

func (b *Browser) onClose() {
	b.mu.Lock()
	wasConnected := b.connected
	b.connected = false
	closeConn := b.closeConnectionOnClose
	b.mu.Unlock()
	if wasConnected {
		b.Emit(EventDisconnected, b)
	}
	if closeConn {
		_ = b.conn.Stop()
	}
}

func (b *Browser) removeContext(context *BrowserContext) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.contexts {
		if c == context {
			b.contexts = append(b.contexts[:i], b.contexts[i+1:]...)
			return
		}
	}
}

func (b *Browser) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Version is the browser build version, e.g. "120.0.6099.28".
func (b *Browser) Version() string {
	return b.initializerString("version")
}

func (b *Browser) Contexts() []*BrowserContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*BrowserContext(nil), b.contexts...)
}

// NewContext creates an isolated browser context.
func (b *Browser) NewContext(options ...NewContextOptions) (*BrowserContext, error) {
	opts := firstOption(options)
	params := toParams(opts)
	if opts != nil && opts.ExtraHTTPHeaders != nil {
		params["extraHTTPHeaders"] = serializeHeaders(opts.ExtraHTTPHeaders)
	}
	result, err := b.ch.Send("newContext", params)
	if err != nil {
		return nil, err
	}
	context, _ := result.(*BrowserContext)
	if context == nil {
		return nil, &Error{Name: "Error", Message: "newContext did not return a context"}
	}
	b.mu.Lock()
	b.contexts = append(b.contexts, context)
	b.mu.Unlock()
	context.mu.Lock()
	context.browser = b
	context.mu.Unlock()
	return context, nil
}

// NewPage creates a page in a fresh single-page context. Closing the page
// closes the context with it.
func (b *Browser) NewPage(options ...NewContextOptions) (*Page, error) {
	context, err := b.NewContext(options...)
	if err != nil {
		return nil, err
	}
	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		return nil, err
	}
	page.mu.Lock()
	page.ownedContext = context
	page.mu.Unlock()
	context.setOwnerPage(page)
	return page, nil
}

// Close shuts the browser down, or disconnects from it when it was obtained
// via Connect.
func (b *Browser) Close() error {
	_, err := b.ch.Send("close", nil)
	if err != nil && !isSafeCloseError(err) {
		return err
	}
	b.mu.Lock()
	closeConn := b.closeConnectionOnClose
	b.mu.Unlock()
	if closeConn {
		return b.conn.Stop()
	}
	return nil
}
