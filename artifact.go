package pagedriver

import (
	"bytes"
	"os"
)

// Artifact is a server-side file produced by the browser, such as a
// download or a video recording.
type Artifact struct {
	channelOwner
}

func newArtifact(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Artifact {
	a := &Artifact{}
	a.createChannelOwner(a, parent, parent.conn, objectType, guid, initializer)
	return a
}

// AbsolutePath is where the driver stores the artifact on disk.
func (a *Artifact) AbsolutePath() string {
	return a.initializerString("absolutePath")
}

// PathAfterFinished blocks until the artifact is fully written and returns
// its path. The path lives on the driver host and is therefore unavailable
// over remote connections.
func (a *Artifact) PathAfterFinished() (string, error) {
	if a.conn.isRemote {
		return "", &Error{Name: "Error", Message: "Path is not available when connecting remotely. Use SaveAs to save a local copy."}
	}
	result, err := a.ch.Send("pathAfterFinished", nil)
	if err != nil {
		return "", err
	}
	path, _ := result.(string)
	return path, nil
}

// SaveAs copies the artifact to path, streaming it over the channel so it
// also works against remote browsers.
func (a *Artifact) SaveAs(path string) error {
	result, err := a.ch.Send("saveAsStream", nil)
	if err != nil {
		return err
	}
	stream, ok := result.(*Stream)
	if !ok {
		return &Error{Name: "Error", Message: "artifact did not return a stream"}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := stream.copyTo(file); err != nil {
		return err
	}
	return stream.close()
}

// Failure returns the download error, empty on success.
func (a *Artifact) Failure() (string, error) {
	result, err := a.ch.Send("failure", nil)
	if err != nil {
		return "", err
	}
	failure, _ := result.(string)
	return failure, nil
}

// Delete removes the artifact from disk.
func (a *Artifact) Delete() error {
	_, err := a.ch.Send("delete", nil)
	return err
}

// Cancel aborts an in-flight download.
func (a *Artifact) Cancel() error {
	_, err := a.ch.Send("cancel", nil)
	return err
}

// ReadIntoBuffer streams the whole artifact into memory.
func (a *Artifact) ReadIntoBuffer() ([]byte, error) {
	result, err := a.ch.Send("stream", nil)
	if err != nil {
		return nil, err
	}
	stream, ok := result.(*Stream)
	if !ok {
		return nil, &Error{Name: "Error", Message: "artifact did not return a stream"}
	}
	var buf bytes.Buffer
	if err := stream.copyTo(&buf); err != nil {
		return nil, err
	}
	if err := stream.close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
