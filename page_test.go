package pagedriver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagedriver/pagedriver/internal/transport"
)

func TestGotoReturnsResponse(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	f.handle("goto", func(msg *transport.Message) {
		f.create("frame@main", "Request", "request@1", map[string]interface{}{
			"url":    "https://example.com/",
			"method": "GET",
			"frame":  ref("frame@main"),
		})
		f.create("frame@main", "Response", "response@1", map[string]interface{}{
			"url":        "https://example.com/",
			"status":     float64(200),
			"statusText": "OK",
			"request":    ref("request@1"),
		})
		f.reply(msg.ID, map[string]interface{}{"response": ref("response@1")})
	})

	response, err := page.Goto("https://example.com/")
	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Equal(t, 200, response.Status())
	assert.True(t, response.Ok())
	assert.Equal(t, "https://example.com/", response.URL())
	require.NotNil(t, response.Request())
	assert.Equal(t, "GET", response.Request().Method())

	call := f.lastCall("goto")
	require.NotNil(t, call)
	assert.Equal(t, "https://example.com/", call.Params["url"])
	assert.Equal(t, float64(defaultTimeout), call.Params["timeout"])
}

func TestFrameNavigatedUpdatesURLAndEmits(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	navigated := make(chan *Frame, 1)
	page.On(EventFrameNavigated, func(payload interface{}) {
		navigated <- payload.(*Frame)
	})

	f.event("frame@main", "navigated", map[string]interface{}{
		"url":  "https://example.com/next",
		"name": "",
	})

	select {
	case frame := <-navigated:
		assert.Equal(t, "https://example.com/next", frame.URL())
		assert.Equal(t, "https://example.com/next", page.URL())
	default:
		t.Fatal("framenavigated not emitted")
	}
}

func TestWaitForNavigationMatchesURL(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	done := make(chan struct{})
	var response *Response
	var navErr error
	go func() {
		defer close(done)
		response, navErr = page.WaitForNavigation(WaitForNavigationOptions{
			URL: "**/target",
		})
	}()

	// Give the waiter time to arm.
	time.Sleep(20 * time.Millisecond)
	f.event("frame@main", "navigated", map[string]interface{}{"url": "https://example.com/other", "name": ""})
	f.event("frame@main", "navigated", map[string]interface{}{"url": "https://example.com/target", "name": ""})

	select {
	case <-done:
		require.NoError(t, navErr)
		assert.Nil(t, response)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForNavigation did not return")
	}
}

func TestExpectNavigationArmsWaiterBeforeAction(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	// The navigation fires synchronously inside the action. The short
	// timeout only trips if the waiter was armed after the action ran.
	response, err := page.ExpectNavigation(func() error {
		f.event("frame@main", "navigated", map[string]interface{}{
			"url":  "https://example.com/next",
			"name": "",
		})
		return nil
	}, WaitForNavigationOptions{Timeout: Float(200)})
	require.NoError(t, err)
	assert.Nil(t, response)
	assert.Equal(t, "https://example.com/next", page.URL())
}

func TestExpectNavigationReturnsActionError(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	wantErr := errors.New("click failed")
	_, err := page.ExpectNavigation(func() error {
		return wantErr
	}, WaitForNavigationOptions{Timeout: Float(200)})
	require.ErrorIs(t, err, wantErr)
}

func TestWaitForNavigationReportsLoadError(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	done := make(chan struct{})
	var navErr error
	go func() {
		defer close(done)
		_, navErr = page.WaitForNavigation()
	}()
	time.Sleep(20 * time.Millisecond)
	f.event("frame@main", "navigated", map[string]interface{}{
		"url":   "https://example.com/broken",
		"name":  "",
		"error": "net::ERR_CONNECTION_REFUSED",
	})

	select {
	case <-done:
		require.Error(t, navErr)
		assert.Contains(t, navErr.Error(), "net::ERR_CONNECTION_REFUSED")
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForNavigation did not return")
	}
}

func TestWaitForLoadStateReturnsImmediatelyWhenReached(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	f.event("frame@main", "loadstate", map[string]interface{}{"add": "load"})
	require.NoError(t, page.WaitForLoadState("load"))
}

func TestLoadStateEmitsPageLifecycleEvents(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	events := make([]string, 0, 2)
	page.On(EventDOMContentLoaded, func(interface{}) { events = append(events, "domcontentloaded") })
	page.On(EventLoad, func(interface{}) { events = append(events, "load") })

	f.event("frame@main", "loadstate", map[string]interface{}{"add": "domcontentloaded"})
	f.event("frame@main", "loadstate", map[string]interface{}{"add": "load"})
	assert.Equal(t, []string{"domcontentloaded", "load"}, events)
}

func TestPageRouteFulfill(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	fulfilled := make(chan struct{})
	f.handle("fulfill", func(msg *transport.Message) {
		f.reply(msg.ID, map[string]interface{}{})
		close(fulfilled)
	})

	err := page.Route("**/*.png", func(route *Route) {
		assert.NoError(t, route.Fulfill(RouteFulfillOptions{
			Status:      Int(200),
			ContentType: String("image/png"),
			Body:        []byte{0x89, 0x50, 0x4e, 0x47},
		}))
	})
	require.NoError(t, err)

	enable := f.lastCall("setNetworkInterceptionEnabled")
	require.NotNil(t, enable)
	assert.Equal(t, true, enable.Params["enabled"])

	f.create("frame@main", "Request", "request@2", map[string]interface{}{
		"url":    "https://example.com/logo.png",
		"method": "GET",
		"frame":  ref("frame@main"),
	})
	f.create("page@1", "Route", "route@1", map[string]interface{}{
		"request": ref("request@2"),
	})
	f.event("page@1", "route", map[string]interface{}{"route": ref("route@1")})

	select {
	case <-fulfilled:
	case <-time.After(5 * time.Second):
		t.Fatal("route handler did not fulfill")
	}

	call := f.lastCall("fulfill")
	require.NotNil(t, call)
	assert.Equal(t, 200, call.Params["status"])
	assert.Equal(t, true, call.Params["isBase64"])
	headers := parseHeaders(call.Params["headers"])
	assert.Equal(t, "image/png", headers["content-type"])
	assert.Equal(t, "4", headers["content-length"])
}

func TestUnmatchedRouteContinues(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	continued := make(chan struct{})
	f.handle("continue", func(msg *transport.Message) {
		f.reply(msg.ID, map[string]interface{}{})
		close(continued)
	})

	require.NoError(t, page.Route("**/*.png", func(route *Route) {
		t.Error("handler must not run for non-matching URL")
	}))

	f.create("frame@main", "Request", "request@3", map[string]interface{}{
		"url":    "https://example.com/data.json",
		"method": "GET",
	})
	f.create("page@1", "Route", "route@2", map[string]interface{}{
		"request": ref("request@3"),
	})
	f.event("page@1", "route", map[string]interface{}{"route": ref("route@2")})

	select {
	case <-continued:
	case <-time.After(5 * time.Second):
		t.Fatal("unmatched route was not continued")
	}
}

func TestUnrouteDisablesInterception(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	handler := func(*Route) {}
	require.NoError(t, page.Route("**/*.png", handler))
	require.NoError(t, page.Unroute("**/*.png", handler))

	disable := f.lastCall("setNetworkInterceptionEnabled")
	require.NotNil(t, disable)
	assert.Equal(t, false, disable.Params["enabled"])
}

func TestExposeBinding(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	resolved := make(chan *transport.Message, 1)
	f.handle("resolve", func(msg *transport.Message) {
		resolved <- msg
	})

	err := page.ExposeBinding("add", func(source *BindingSource, args ...interface{}) (interface{}, error) {
		assert.Same(t, page, source.Page)
		return args[0].(float64) + args[1].(float64), nil
	})
	require.NoError(t, err)
	require.NotNil(t, f.lastCall("exposeBinding"))

	f.create("page@1", "BindingCall", "binding-call@1", map[string]interface{}{
		"name":  "add",
		"frame": ref("frame@main"),
		"args": []interface{}{
			map[string]interface{}{"n": float64(2)},
			map[string]interface{}{"n": float64(40)},
		},
	})
	f.event("page@1", "bindingCall", map[string]interface{}{"binding": ref("binding-call@1")})

	select {
	case msg := <-resolved:
		result := msg.Params["result"].(map[string]interface{})
		assert.Equal(t, map[string]interface{}{"n": float64(42)}, result["value"])
	case <-time.After(5 * time.Second):
		t.Fatal("binding was not resolved")
	}
}

func TestExposeBindingRejectsDuplicate(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	fn := func(*BindingSource, ...interface{}) (interface{}, error) { return nil, nil }
	require.NoError(t, page.ExposeBinding("dup", fn))
	err := page.ExposeBinding("dup", fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestExpectEventTimesOut(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	_, err := page.WaitForEvent(EventDownload, nil, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExpectEventRejectsOnPageClose(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	done := make(chan error, 1)
	go func() {
		_, err := page.WaitForEvent(EventDownload, nil)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	f.event("page@1", "close", nil)

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTargetClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not rejected on close")
	}
}

func TestExpectPopup(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	popup, err := page.ExpectPopup(func() error {
		f.create("context@1", "Frame", "frame@pop", map[string]interface{}{"url": "about:blank"})
		f.create("context@1", "Page", "page@pop", map[string]interface{}{"mainFrame": ref("frame@pop")})
		f.event("page@1", "popup", map[string]interface{}{"page": ref("page@pop")})
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, "page@pop", popup.guid)
}

func TestConsoleMessageParsing(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	messages := make(chan *ConsoleMessage, 1)
	page.On(EventConsole, func(payload interface{}) {
		messages <- payload.(*ConsoleMessage)
	})
	f.event("page@1", "console", map[string]interface{}{
		"type": "warning",
		"text": "deprecated API",
		"location": map[string]interface{}{
			"url":          "https://example.com/app.js",
			"lineNumber":   float64(41),
			"columnNumber": float64(7),
		},
	})

	msg := <-messages
	assert.Equal(t, "warning", msg.Type())
	assert.Equal(t, "deprecated API", msg.Text())
	assert.Equal(t, 41, msg.Location().LineNumber)
}

func TestDialogWithoutListenerIsDismissed(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	launchPage(t, f, pw)

	f.create("page@1", "Dialog", "dialog@1", map[string]interface{}{
		"type":    "alert",
		"message": "hello",
	})
	f.event("page@1", "dialog", map[string]interface{}{"dialog": ref("dialog@1")})
	require.NotNil(t, f.lastCall("dismiss"))
}

func TestBeforeUnloadDialogWithoutListenerIsAccepted(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	launchPage(t, f, pw)

	f.create("page@1", "Dialog", "dialog@2", map[string]interface{}{
		"type": "beforeunload",
	})
	f.event("page@1", "dialog", map[string]interface{}{"dialog": ref("dialog@2")})
	require.NotNil(t, f.lastCall("accept"))
}

func TestPageCloseRemovesFromContext(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)
	context := page.Context()
	require.NotNil(t, context)

	closed := make(chan struct{}, 1)
	page.On(EventClose, func(interface{}) { closed <- struct{}{} })

	f.handle("close", func(msg *transport.Message) {
		f.event("page@1", "close", nil)
		f.reply(msg.ID, map[string]interface{}{})
	})
	require.NoError(t, page.Close())
	<-closed
	assert.True(t, page.IsClosed())
	assert.NotContains(t, context.Pages(), page)
}

func TestFrameTreeAttachDetach(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	f.create("page@1", "Frame", "frame@child", map[string]interface{}{
		"name":        "menu",
		"url":         "https://example.com/menu",
		"parentFrame": ref("frame@main"),
	})
	f.event("page@1", "frameAttached", map[string]interface{}{"frame": ref("frame@child")})

	require.Len(t, page.Frames(), 2)
	child := page.Frame("menu")
	require.NotNil(t, child)
	assert.Same(t, page.MainFrame(), child.ParentFrame())
	assert.Contains(t, page.MainFrame().ChildFrames(), child)
	require.NotNil(t, page.FrameByURL("**/menu"))

	f.event("page@1", "frameDetached", map[string]interface{}{"frame": ref("frame@child")})
	assert.Len(t, page.Frames(), 1)
	assert.True(t, child.IsDetached())
}

func TestSelectOptionParams(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	f.handle("selectOption", func(msg *transport.Message) {
		f.reply(msg.ID, map[string]interface{}{"values": []interface{}{"blue"}})
	})
	values, err := page.SelectOption("#color", SelectOptionValues{Values: []string{"blue"}, Indexes: []int{2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, values)

	call := f.lastCall("selectOption")
	options := call.Params["options"].([]interface{})
	require.Len(t, options, 2)
	assert.Equal(t, map[string]interface{}{"value": "blue"}, options[0])
	assert.Equal(t, map[string]interface{}{"index": 2}, options[1])
}

func TestKeyboardAndMouseSendPageCommands(t *testing.T) {
	f := newFakeDriver(t)
	_, pw := startClient(t, f)
	page := launchPage(t, f, pw)

	require.NoError(t, page.Keyboard.Press("Control+a"))
	press := f.lastCall("keyboardPress")
	require.NotNil(t, press)
	assert.Equal(t, "page@1", press.GUID)
	assert.Equal(t, "Control+a", press.Params["key"])

	require.NoError(t, page.Mouse.Click(10, 20))
	click := f.lastCall("mouseClick")
	require.NotNil(t, click)
	assert.Equal(t, float64(10), click.Params["x"].(float64))
}
