package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades incoming connections and echoes every text frame with
// the method prefixed, so tests can tell their own frames apart.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			msg.Method = "echo:" + msg.Method
			reply, _ := json.Marshal(&msg)
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketRoundTrip(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	ws, err := DialWebSocket(wsURL(server), 5*time.Second, nil, nil)
	require.NoError(t, err)

	received := make(chan *Message, 1)
	ws.SetOnMessage(func(msg *Message) { received <- msg })
	done := make(chan error, 1)
	go func() { done <- ws.Start() }()

	require.NoError(t, ws.Send(&Message{ID: 3, GUID: "page@9", Method: "reload"}))

	select {
	case msg := <-received:
		assert.Equal(t, 3, msg.ID)
		assert.Equal(t, "page@9", msg.GUID)
		assert.Equal(t, "echo:reload", msg.Method)
	case <-time.After(5 * time.Second):
		t.Fatal("no echo received")
	}

	require.NoError(t, ws.Stop())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not exit")
	}
}

func TestWebSocketSendAfterStop(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	ws, err := DialWebSocket(wsURL(server), 5*time.Second, nil, nil)
	require.NoError(t, err)
	require.NoError(t, ws.Stop())

	err = ws.Send(&Message{Method: "reload"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWebSocketStopTwice(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	ws, err := DialWebSocket(wsURL(server), 5*time.Second, nil, nil)
	require.NoError(t, err)
	require.NoError(t, ws.Stop())
	require.NoError(t, ws.Stop())
}

func TestWebSocketDialFailure(t *testing.T) {
	_, err := DialWebSocket("ws://127.0.0.1:1/doesnotexist", 500*time.Millisecond, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
}
