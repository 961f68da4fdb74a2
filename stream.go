package pagedriver

import (
	"encoding/base64"
	"io"
)

const streamChunkSize = 1024 * 1024

// Stream reads a server-side file over the channel in base64 chunks.
type Stream struct {
	channelOwner
}

func newStream(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Stream {
	s := &Stream{}
	s.createChannelOwner(s, parent, parent.conn, objectType, guid, initializer)
	return s
}

// copyTo drains the stream into w. An empty chunk marks end of stream.
func (s *Stream) copyTo(w io.Writer) error {
	for {
		result, err := s.ch.Send("read", map[string]interface{}{"size": streamChunkSize})
		if err != nil {
			return err
		}
		encoded, _ := result.(string)
		if encoded == "" {
			return nil
		}
		chunk, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
}

func (s *Stream) close() error {
	_, err := s.ch.Send("close", nil)
	return err
}
