package pagedriver

import "sync"

// Worker is a dedicated WebWorker spawned by a page.
type Worker struct {
	channelOwner

	mu   sync.Mutex
	page *Page
}

func newWorker(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Worker {
	w := &Worker{}
	w.createChannelOwner(w, parent, parent.conn, objectType, guid, initializer)
	w.onProto("close", func(interface{}) {
		w.onClose()
	})
	return w
}

func (w *Worker) onClose() {
	w.mu.Lock()
	page := w.page
	w.page = nil
	w.mu.Unlock()
	if page != nil {
		page.removeWorker(w)
	}
	w.Emit("close", w)
}

func (w *Worker) setPage(page *Page) {
	w.mu.Lock()
	w.page = page
	w.mu.Unlock()
}

func (w *Worker) URL() string {
	return w.initializerString("url")
}

func (w *Worker) Evaluate(expression string, arg interface{}) (interface{}, error) {
	return evaluateOnChannel(w.ch, "evaluateExpression", expression, arg)
}

func (w *Worker) EvaluateHandle(expression string, arg interface{}) (*JSHandle, error) {
	result, err := evaluateHandleOnChannel(w.ch, "evaluateExpressionHandle", expression, arg)
	if err != nil {
		return nil, err
	}
	return toJSHandle(result), nil
}
