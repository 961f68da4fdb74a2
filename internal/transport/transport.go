// Package transport frames driver protocol messages over the two supported
// byte streams: the stdio pipes of a locally spawned driver process and a
// websocket to a remote driver endpoint. The framing is fixed by the driver:
// a 4-byte little-endian length prefix followed by a UTF-8 JSON body on
// pipes, and bare JSON text messages on websockets.
package transport

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Message is a single protocol frame. Calls carry ID+GUID+Method+Params,
// replies carry ID and either Result or Error, events carry GUID+Method+Params
// with no ID.
type Message struct {
	ID       int                    `json:"id,omitempty"`
	GUID     string                 `json:"guid"`
	Method   string                 `json:"method,omitempty"`
	Params   map[string]interface{} `json:"params,omitempty"`
	Result   interface{}            `json:"result,omitempty"`
	Error    *ErrorWrapper          `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Log      []string               `json:"log,omitempty"`
}

// ErrorWrapper is the outer error envelope of a reply.
type ErrorWrapper struct {
	Error ErrorPayload `json:"error"`
}

// ErrorPayload describes a driver-side failure.
type ErrorPayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// Transport moves messages between the client and the driver. Send may be
// called from any goroutine. Start blocks running the read loop until Stop is
// called or the underlying stream fails; the registered message handler is
// invoked from the read loop goroutine.
type Transport interface {
	Send(msg *Message) error
	SetOnMessage(fn func(*Message))
	Start() error
	Stop() error
}

func logSend(logger *zap.Logger, data []byte) {
	if logger.Core().Enabled(zap.DebugLevel) {
		logger.Debug("SEND>", zap.ByteString("frame", data))
	}
}

func logRecv(logger *zap.Logger, data []byte) {
	if logger.Core().Enabled(zap.DebugLevel) {
		logger.Debug("RECV>", zap.ByteString("frame", data))
	}
}

func marshalMessage(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

func unmarshalMessage(data []byte) (*Message, error) {
	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
