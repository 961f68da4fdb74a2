package pagedriver

import (
	"net/http"
	"time"

	"github.com/pagedriver/pagedriver/internal/transport"
)

// BrowserType lets you launch or connect to a specific browser flavor.
// Instances hang off the Playwright object as Chromium, Firefox and WebKit.
type BrowserType struct {
	channelOwner

	playwright *Playwright
}

func newBrowserType(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *BrowserType {
	b := &BrowserType{}
	b.createChannelOwner(b, parent, parent.conn, objectType, guid, initializer)
	return b
}

// Name is "chromium", "firefox" or "webkit".
func (b *BrowserType) Name() string {
	return b.initializerString("name")
}

// ExecutablePath is where the managed browser build lives on disk.
func (b *BrowserType) ExecutablePath() string {
	return b.initializerString("executablePath")
}

// Launch starts a browser instance.
func (b *BrowserType) Launch(options ...LaunchOptions) (*Browser, error) {
	params := toParams(firstOption(options))
	result, err := b.ch.Send("launch", params)
	if err != nil {
		return nil, err
	}
	browser, _ := result.(*Browser)
	if browser == nil {
		return nil, &Error{Name: "Error", Message: "launch did not return a browser"}
	}
	return browser, nil
}

// LaunchPersistentContext starts a browser with a persistent profile stored
// in userDataDir and returns its sole context.
func (b *BrowserType) LaunchPersistentContext(userDataDir string, options ...LaunchPersistentContextOptions) (*BrowserContext, error) {
	opts := firstOption(options)
	params := toParams(opts)
	params["userDataDir"] = userDataDir
	if opts != nil && opts.ExtraHTTPHeaders != nil {
		params["extraHTTPHeaders"] = serializeHeaders(opts.ExtraHTTPHeaders)
	}
	result, err := b.ch.Send("launchPersistentContext", params)
	if err != nil {
		return nil, err
	}
	context, _ := result.(*BrowserContext)
	if context == nil {
		return nil, &Error{Name: "Error", Message: "launchPersistentContext did not return a context"}
	}
	return context, nil
}

// Connect attaches to a browser server over its websocket endpoint. The
// returned browser owns a dedicated connection; Close disconnects without
// stopping the remote server.
func (b *BrowserType) Connect(wsEndpoint string, options ...ConnectOptions) (*Browser, error) {
	opts := firstOption(options)
	timeout := 30 * time.Second
	headers := http.Header{}
	if opts != nil {
		if opts.Timeout != nil {
			timeout = time.Duration(*opts.Timeout) * time.Millisecond
		}
		for name, value := range opts.Headers {
			headers.Set(name, value)
		}
	}

	ws, err := transport.DialWebSocket(wsEndpoint, timeout, headers, b.conn.logger)
	if err != nil {
		return nil, err
	}
	conn := newConnection(ws, b.conn.logger, nil)
	conn.markAsRemote()
	pw, err := conn.Start()
	if err != nil {
		_ = conn.Stop()
		return nil, err
	}

	browser, _ := pw.initializer["preLaunchedBrowser"].(*Browser)
	if browser == nil {
		_ = conn.Stop()
		return nil, &Error{Name: "Error", Message: "remote endpoint did not expose a browser"}
	}
	browser.mu.Lock()
	browser.closeConnectionOnClose = true
	browser.mu.Unlock()
	if playwright := b.playwright; playwright != nil {
		playwright.Selectors.addChannel(pw.selectorsOwner)
		conn.Once("close", func(interface{}) {
			playwright.Selectors.removeChannel(pw.selectorsOwner)
		})
	}
	conn.Once("close", func(interface{}) {
		browser.onClose()
	})
	return browser, nil
}

// ConnectOverCDP attaches to an existing Chromium over the Chrome DevTools
// Protocol. Chromium only.
func (b *BrowserType) ConnectOverCDP(endpointURL string, options ...ConnectOptions) (*Browser, error) {
	opts := firstOption(options)
	params := toParams(opts)
	params["endpointURL"] = endpointURL
	if opts != nil && opts.Headers != nil {
		params["headers"] = serializeHeaders(opts.Headers)
	}
	result, err := b.ch.SendReturnAsDict("connectOverCDP", params)
	if err != nil {
		return nil, err
	}
	browser, _ := result["browser"].(*Browser)
	if browser == nil {
		return nil, &Error{Name: "Error", Message: "connectOverCDP did not return a browser"}
	}
	if defaultContext, ok := result["defaultContext"].(*BrowserContext); ok {
		browser.mu.Lock()
		browser.contexts = append(browser.contexts, defaultContext)
		browser.mu.Unlock()
		defaultContext.mu.Lock()
		defaultContext.browser = browser
		defaultContext.mu.Unlock()
	}
	return browser, nil
}
