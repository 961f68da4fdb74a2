package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// readChunkSize matches the driver's stream buffer; bodies larger than this
// arrive in multiple reads.
const readChunkSize = 32768

// ErrClosed is returned by Send after the transport stopped or the driver
// side of the pipe went away.
var ErrClosed = errors.New("transport: connection closed")

// PipeTransport speaks the length-prefixed protocol over a pair of byte
// streams, normally the stdin/stdout pipes of the driver process.
type PipeTransport struct {
	out       io.WriteCloser
	in        io.Reader
	logger    *zap.Logger
	onMessage func(*Message)

	writeMu sync.Mutex
	stateMu sync.Mutex
	stopped bool
}

// NewPipe wraps the given streams. out is the driver's stdin, in its stdout.
func NewPipe(out io.WriteCloser, in io.Reader, logger *zap.Logger) *PipeTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipeTransport{
		out:       out,
		in:        in,
		logger:    logger,
		onMessage: func(*Message) {},
	}
}

// SetOnMessage registers the handler invoked for every incoming frame. Must
// be called before Start.
func (t *PipeTransport) SetOnMessage(fn func(*Message)) {
	t.onMessage = fn
}

// Send writes one frame. Frames are never interleaved; the writer mutex keeps
// the length prefix and body of concurrent senders intact.
func (t *PipeTransport) Send(msg *Message) error {
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
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(data)))
	if _, err := t.out.Write(prefix[:]); err != nil {
		return fmt.Errorf("transport: write frame header: %w", err)
	}
	if _, err := t.out.Write(data); err != nil {
		return fmt.Errorf("transport: write frame body: %w", err)
	}
	return nil
}

// Start runs the read loop until EOF or Stop. A clean EOF after Stop returns
// nil; an unexpected EOF means the driver died and surfaces as an error.
func (t *PipeTransport) Start() error {
	for {
		msg, err := t.readFrame()
		if err != nil {
			if t.isStopped() && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe)) {
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("transport: connection closed while reading from the driver: %w", err)
			}
			return err
		}
		if t.isStopped() {
			return nil
		}
		t.onMessage(msg)
	}
}

// Stop closes the driver's stdin, which tells the driver to exit and in turn
// ends the read loop at EOF.
func (t *PipeTransport) Stop() error {
	t.stateMu.Lock()
	if t.stopped {
		t.stateMu.Unlock()
		return nil
	}
	t.stopped = true
	t.stateMu.Unlock()
	return t.out.Close()
}

func (t *PipeTransport) isStopped() bool {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.stopped
}

func (t *PipeTransport) readFrame() (*Message, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(t.in, prefix[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(prefix[:])
	body := make([]byte, 0, length)
	remaining := int(length)
	chunk := make([]byte, readChunkSize)
	for remaining > 0 {
		toRead := remaining
		if toRead > readChunkSize {
			toRead = readChunkSize
		}
		if _, err := io.ReadFull(t.in, chunk[:toRead]); err != nil {
			return nil, err
		}
		body = append(body, chunk[:toRead]...)
		remaining -= toRead
	}
	logRecv(t.logger, body)
	return unmarshalMessage(body)
}
