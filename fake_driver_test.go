package pagedriver

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagedriver/pagedriver/internal/transport"
)

// fakeDriver implements transport.Transport in memory. Tests script its
// behavior per protocol method; unscripted calls get an empty success reply.
// Handlers run synchronously on the sender's goroutine, which keeps tests
// deterministic.
type fakeDriver struct {
	t *testing.T

	mu        sync.Mutex
	onMessage func(*transport.Message)
	sent      []*transport.Message
	handlers  map[string]func(*transport.Message)

	stopOnce sync.Once
	stopped  chan struct{}
}

func newFakeDriver(t *testing.T) *fakeDriver {
	return &fakeDriver{
		t:        t,
		handlers: make(map[string]func(*transport.Message)),
		stopped:  make(chan struct{}),
	}
}

func (f *fakeDriver) handle(method string, fn func(*transport.Message)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = fn
}

func (f *fakeDriver) Send(msg *transport.Message) error {
	select {
	case <-f.stopped:
		return transport.ErrClosed
	default:
	}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	handler := f.handlers[msg.Method]
	f.mu.Unlock()

	if handler != nil {
		handler(msg)
		return nil
	}
	if msg.ID != 0 {
		f.reply(msg.ID, map[string]interface{}{})
	}
	return nil
}

func (f *fakeDriver) SetOnMessage(fn func(*transport.Message)) {
	f.onMessage = fn
}

func (f *fakeDriver) Start() error {
	<-f.stopped
	return nil
}

func (f *fakeDriver) Stop() error {
	f.stopOnce.Do(func() { close(f.stopped) })
	return nil
}

// emit delivers a frame to the client as if the driver had sent it.
func (f *fakeDriver) emit(msg *transport.Message) {
	f.onMessage(msg)
}

func (f *fakeDriver) reply(id int, result interface{}) {
	f.emit(&transport.Message{ID: id, Result: result})
}

func (f *fakeDriver) replyError(id int, name, message string, log ...string) {
	f.emit(&transport.Message{
		ID:    id,
		Error: &transport.ErrorWrapper{Error: transport.ErrorPayload{Name: name, Message: message, Stack: name + ": " + message}},
		Log:   log,
	})
}

func (f *fakeDriver) create(parentGUID, objectType, guid string, initializer map[string]interface{}) {
	f.emit(&transport.Message{
		GUID:   parentGUID,
		Method: "__create__",
		Params: map[string]interface{}{
			"type":        objectType,
			"guid":        guid,
			"initializer": initializer,
		},
	})
}

func (f *fakeDriver) event(guid, method string, params map[string]interface{}) {
	f.emit(&transport.Message{GUID: guid, Method: method, Params: params})
}

func (f *fakeDriver) dispose(guid, reason string) {
	params := map[string]interface{}{}
	if reason != "" {
		params["reason"] = reason
	}
	f.emit(&transport.Message{GUID: guid, Method: "__dispose__", Params: params})
}

// lastCall returns the most recent frame sent with the given method.
func (f *fakeDriver) lastCall(method string) *transport.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Method == method {
			return f.sent[i]
		}
	}
	return nil
}

func ref(guid string) map[string]interface{} {
	return map[string]interface{}{"guid": guid}
}

// installHandshake scripts the initialize exchange: browser types, the
// selectors owner and the Playwright root, all parented to the root guid.
func (f *fakeDriver) installHandshake() {
	f.handle("initialize", func(msg *transport.Message) {
		for _, name := range []string{"chromium", "firefox", "webkit"} {
			f.create("", "BrowserType", "browser-type@"+name, map[string]interface{}{
				"name":           name,
				"executablePath": "/opt/browsers/" + name,
			})
		}
		f.create("", "Selectors", "selectors@1", map[string]interface{}{})
		f.create("", "Playwright", "playwright@1", map[string]interface{}{
			"chromium":  ref("browser-type@chromium"),
			"firefox":   ref("browser-type@firefox"),
			"webkit":    ref("browser-type@webkit"),
			"selectors": ref("selectors@1"),
			"deviceDescriptors": []interface{}{
				map[string]interface{}{
					"name": "Pixel 7",
					"descriptor": map[string]interface{}{
						"userAgent":          "Mozilla/5.0 (Linux; Android 14; Pixel 7)",
						"viewport":           map[string]interface{}{"width": float64(412), "height": float64(915)},
						"deviceScaleFactor":  float64(2.625),
						"isMobile":           true,
						"hasTouch":           true,
						"defaultBrowserType": "chromium",
					},
				},
			},
		})
		f.reply(msg.ID, map[string]interface{}{"playwright": ref("playwright@1")})
	})
}

// startClient spins up a connection against the fake and returns the
// Playwright root. Cleanup stops the connection.
func startClient(t *testing.T, f *fakeDriver) (*connection, *Playwright) {
	t.Helper()
	f.installHandshake()
	conn := newConnection(f, nil, nil)
	pw, err := conn.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Stop() })
	return conn, pw
}

// launchPage scripts the typical launch -> newContext -> newPage flow and
// returns the created page with its main frame registered.
func launchPage(t *testing.T, f *fakeDriver, pw *Playwright) *Page {
	t.Helper()
	f.handle("launch", func(msg *transport.Message) {
		f.create("browser-type@chromium", "Browser", "browser@1", map[string]interface{}{
			"version": "133.0.6943.16",
		})
		f.reply(msg.ID, map[string]interface{}{"browser": ref("browser@1")})
	})
	f.handle("newContext", func(msg *transport.Message) {
		f.create("browser@1", "BrowserContext", "context@1", map[string]interface{}{})
		f.reply(msg.ID, map[string]interface{}{"context": ref("context@1")})
	})
	f.handle("newPage", func(msg *transport.Message) {
		f.create("context@1", "Frame", "frame@main", map[string]interface{}{
			"name":       "",
			"url":        "about:blank",
			"loadStates": []interface{}{},
		})
		f.create("context@1", "Page", "page@1", map[string]interface{}{
			"mainFrame":    ref("frame@main"),
			"viewportSize": map[string]interface{}{"width": float64(1280), "height": float64(720)},
		})
		f.event("context@1", "page", map[string]interface{}{"page": ref("page@1")})
		f.reply(msg.ID, map[string]interface{}{"page": ref("page@1")})
	})

	browser, err := pw.Chromium.Launch()
	require.NoError(t, err)
	context, err := browser.NewContext()
	require.NoError(t, err)
	page, err := context.NewPage()
	require.NoError(t, err)
	return page
}
