package transport

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func writeFrame(t *testing.T, w io.Writer, msg *Message) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(data)))
	_, err = w.Write(prefix[:])
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
}

func TestPipeSendWritesLengthPrefixedFrame(t *testing.T) {
	var buf bytes.Buffer
	pipe := NewPipe(nopWriteCloser{&buf}, strings.NewReader(""), nil)

	err := pipe.Send(&Message{ID: 7, GUID: "browser@1", Method: "close"})
	require.NoError(t, err)

	raw := buf.Bytes()
	require.Greater(t, len(raw), 4)
	length := binary.LittleEndian.Uint32(raw[:4])
	require.Equal(t, int(length), len(raw)-4)

	var decoded Message
	require.NoError(t, json.Unmarshal(raw[4:], &decoded))
	assert.Equal(t, 7, decoded.ID)
	assert.Equal(t, "browser@1", decoded.GUID)
	assert.Equal(t, "close", decoded.Method)
}

func TestPipeReadsMultipleFrames(t *testing.T) {
	var frames bytes.Buffer
	writeFrame(t, &frames, &Message{ID: 1, GUID: "a", Method: "one"})
	writeFrame(t, &frames, &Message{GUID: "b", Method: "two", Params: map[string]interface{}{"key": "value"}})

	in, out := io.Pipe()
	pipe := NewPipe(nopWriteCloser{io.Discard}, in, nil)
	received := make(chan *Message, 2)
	pipe.SetOnMessage(func(msg *Message) { received <- msg })

	done := make(chan error, 1)
	go func() { done <- pipe.Start() }()

	_, err := out.Write(frames.Bytes())
	require.NoError(t, err)

	first := <-received
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "one", first.Method)
	second := <-received
	assert.Equal(t, "two", second.Method)
	assert.Equal(t, map[string]interface{}{"key": "value"}, second.Params)

	require.NoError(t, pipe.Stop())
	require.NoError(t, out.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit")
	}
}

func TestPipeBodyLargerThanChunkSize(t *testing.T) {
	big := strings.Repeat("x", readChunkSize*2+17)
	var frames bytes.Buffer
	writeFrame(t, &frames, &Message{GUID: "page@1", Method: "blob", Params: map[string]interface{}{"data": big}})

	pipe := NewPipe(nopWriteCloser{io.Discard}, &frames, nil)
	received := make(chan *Message, 1)
	pipe.SetOnMessage(func(msg *Message) { received <- msg })

	done := make(chan error, 1)
	go func() { done <- pipe.Start() }()

	msg := <-received
	assert.Equal(t, big, msg.Params["data"])

	require.NoError(t, pipe.Stop())
	<-done
}

func TestPipeUnexpectedEOFIsAnError(t *testing.T) {
	in, out := io.Pipe()
	pipe := NewPipe(nopWriteCloser{io.Discard}, in, nil)

	done := make(chan error, 1)
	go func() { done <- pipe.Start() }()

	require.NoError(t, out.Close())
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed while reading")
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit")
	}
}

func TestPipeCleanEOFAfterStop(t *testing.T) {
	in, out := io.Pipe()
	pipe := NewPipe(nopWriteCloser{io.Discard}, in, nil)

	done := make(chan error, 1)
	go func() { done <- pipe.Start() }()

	require.NoError(t, pipe.Stop())
	require.NoError(t, out.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit")
	}
}

func TestPipeSendAfterStop(t *testing.T) {
	pipe := NewPipe(nopWriteCloser{io.Discard}, strings.NewReader(""), nil)
	require.NoError(t, pipe.Stop())
	err := pipe.Send(&Message{Method: "ping"})
	assert.ErrorIs(t, err, ErrClosed)
}
