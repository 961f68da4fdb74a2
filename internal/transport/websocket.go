package transport

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	wsPingInterval  = 20 * time.Second
	wsWriteDeadline = 10 * time.Second
)

// WebSocketTransport speaks the protocol to a remote driver endpoint. Bodies
// are the same JSON objects as on the pipe, carried as text messages with no
// length prefix.
type WebSocketTransport struct {
	conn      *websocket.Conn
	logger    *zap.Logger
	onMessage func(*Message)

	writeMu sync.Mutex
	stateMu sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// DialWebSocket connects to wsEndpoint with the given timeout and headers.
func DialWebSocket(wsEndpoint string, timeout time.Duration, headers http.Header, logger *zap.Logger) (*WebSocketTransport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		// Driver frames can be large (screenshots, trace chunks).
		ReadBufferSize:  1 << 20,
		WriteBufferSize: 1 << 20,
	}
	conn, _, err := dialer.Dial(wsEndpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", wsEndpoint, err)
	}
	return &WebSocketTransport{
		conn:      conn,
		logger:    logger,
		onMessage: func(*Message) {},
		stopCh:    make(chan struct{}),
	}, nil
}

// SetOnMessage registers the handler invoked for every incoming frame. Must
// be called before Start.
func (t *WebSocketTransport) SetOnMessage(fn func(*Message)) {
	t.onMessage = fn
}

// Send writes one message as a single text frame.
func (t *WebSocketTransport) Send(msg *Message) error {
	if t.isStopped() {
		return ErrClosed
	}
	data, err := marshalMessage(msg)
	if err != nil {
		return fmt.Errorf("transport: marshal message: %w", err)
	}
	logSend(t.logger, data)

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Start runs the read loop and the keepalive pinger until Stop or a socket
// error.
func (t *WebSocketTransport) Start() error {
	var g errgroup.Group
	g.Go(t.readLoop)
	g.Go(t.pingLoop)
	return g.Wait()
}

// Stop sends a close frame and tears the socket down.
func (t *WebSocketTransport) Stop() error {
	t.stateMu.Lock()
	if t.stopped {
		t.stateMu.Unlock()
		return nil
	}
	t.stopped = true
	close(t.stopCh)
	t.stateMu.Unlock()

	t.writeMu.Lock()
	deadline := time.Now().Add(wsWriteDeadline)
	_ = t.conn.SetWriteDeadline(deadline)
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	t.writeMu.Unlock()
	return t.conn.Close()
}

func (t *WebSocketTransport) isStopped() bool {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.stopped
}

func (t *WebSocketTransport) readLoop() error {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if t.isStopped() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("transport: websocket read: %w", err)
		}
		logRecv(t.logger, data)
		msg, err := unmarshalMessage(data)
		if err != nil {
			t.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		if t.isStopped() {
			return nil
		}
		t.onMessage(msg)
	}
}

func (t *WebSocketTransport) pingLoop() error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopCh:
			return nil
		case <-ticker.C:
			t.writeMu.Lock()
			err := t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteDeadline))
			t.writeMu.Unlock()
			if err != nil {
				if t.isStopped() {
					return nil
				}
				return fmt.Errorf("transport: websocket ping: %w", err)
			}
		}
	}
}
