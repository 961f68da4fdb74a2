package pagedriver

import (
	"encoding/base64"
	"encoding/json"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Request represents a network request issued by a page.
type Request struct {
	channelOwner

	mu          sync.Mutex
	failureText string
	timing      map[string]interface{}

	headers      map[string]string
	postData     []byte
	redirectedTo *Request
}

func newRequest(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Request {
	r := &Request{}
	r.createChannelOwner(r, parent, parent.conn, objectType, guid, initializer)
	r.headers = parseHeaders(initializer["headers"])
	if encoded, ok := initializer["postData"].(string); ok {
		if data, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			r.postData = data
		}
	}
	if timing, ok := initializer["timing"].(map[string]interface{}); ok {
		r.timing = timing
	}
	if from := r.RedirectedFrom(); from != nil {
		from.mu.Lock()
		from.redirectedTo = r
		from.mu.Unlock()
	}
	return r
}

func (r *Request) URL() string {
	return r.initializerString("url")
}

func (r *Request) Method() string {
	return r.initializerString("method")
}

func (r *Request) ResourceType() string {
	return r.initializerString("resourceType")
}

func (r *Request) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

func (r *Request) PostData() string {
	return string(r.postData)
}

func (r *Request) PostDataBuffer() []byte {
	return r.postData
}

// PostDataJSON decodes the request body into v.
func (r *Request) PostDataJSON(v interface{}) error {
	if len(r.postData) == 0 {
		return &Error{Name: "Error", Message: "Request has no post data"}
	}
	return json.Unmarshal(r.postData, v)
}

// Frame returns the frame that issued the request.
func (r *Request) Frame() *Frame {
	frame, _ := r.initializer["frame"].(*Frame)
	return frame
}

// RedirectedFrom returns the request that was redirected to this one, if any.
func (r *Request) RedirectedFrom() *Request {
	request, _ := r.initializer["redirectedFrom"].(*Request)
	return request
}

// RedirectedTo returns the request this one was redirected to, if any.
func (r *Request) RedirectedTo() *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirectedTo
}

func (r *Request) IsNavigationRequest() bool {
	return r.initializerBool("isNavigationRequest")
}

// Failure returns the error text for failed requests, empty otherwise.
func (r *Request) Failure() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failureText
}

func (r *Request) setFailure(text string) {
	r.mu.Lock()
	r.failureText = text
	r.mu.Unlock()
}

// Timing returns the raw resource timing values reported so far.
func (r *Request) Timing() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timing
}

// Response returns the matching response, or nil when none was received.
func (r *Request) Response() (*Response, error) {
	result, err := r.ch.Send("response", nil)
	if err != nil {
		return nil, err
	}
	response, _ := result.(*Response)
	return response, nil
}

// Response represents the response for a request.
type Response struct {
	channelOwner

	headers map[string]string
}

func newResponse(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Response {
	r := &Response{}
	r.createChannelOwner(r, parent, parent.conn, objectType, guid, initializer)
	r.headers = parseHeaders(initializer["headers"])
	if request := r.Request(); request != nil {
		if timing, ok := initializer["timing"].(map[string]interface{}); ok {
			request.mu.Lock()
			request.timing = timing
			request.mu.Unlock()
		}
	}
	return r
}

func (r *Response) URL() string {
	return r.initializerString("url")
}

func (r *Response) Status() int {
	return int(r.initializerFloat("status"))
}

func (r *Response) StatusText() string {
	return r.initializerString("statusText")
}

func (r *Response) Ok() bool {
	status := r.Status()
	return status == 0 || (status >= 200 && status <= 299)
}

func (r *Response) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

func (r *Response) Request() *Request {
	request, _ := r.initializer["request"].(*Request)
	return request
}

func (r *Response) Frame() *Frame {
	if request := r.Request(); request != nil {
		return request.Frame()
	}
	return nil
}

// Body returns the raw response body.
func (r *Response) Body() ([]byte, error) {
	result, err := r.ch.Send("body", nil)
	if err != nil {
		return nil, err
	}
	encoded, _ := result.(string)
	return base64.StdEncoding.DecodeString(encoded)
}

func (r *Response) Text() (string, error) {
	body, err := r.Body()
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON decodes the response body into v.
func (r *Response) JSON(v interface{}) error {
	body, err := r.Body()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// Finished blocks until the response is fully received.
func (r *Response) Finished() error {
	_, err := r.ch.Send("finished", nil)
	return err
}

// Route lets a registered request handler decide the fate of an intercepted
// request: abort it, continue it (optionally modified), or answer it with a
// synthetic response.
type Route struct {
	channelOwner
}

func newRoute(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Route {
	r := &Route{}
	r.createChannelOwner(r, parent, parent.conn, objectType, guid, initializer)
	return r
}

// Request returns the request being intercepted.
func (r *Route) Request() *Request {
	request, _ := r.initializer["request"].(*Request)
	return request
}

// Abort fails the request. errorCode defaults to "failed".
func (r *Route) Abort(errorCode ...string) error {
	params := map[string]interface{}{}
	if len(errorCode) > 0 {
		params["errorCode"] = errorCode[0]
	}
	_, err := r.ch.Send("abort", params)
	return err
}

// Continue resumes the request, applying any overrides.
func (r *Route) Continue(options ...RouteContinueOptions) error {
	opts := firstOption(options)
	params := toParams(opts)
	if opts != nil {
		if opts.Headers != nil {
			params["headers"] = serializeHeaders(opts.Headers)
		}
		switch data := opts.PostData.(type) {
		case string:
			params["postData"] = base64.StdEncoding.EncodeToString([]byte(data))
		case []byte:
			params["postData"] = base64.StdEncoding.EncodeToString(data)
		}
	}
	_, err := r.ch.Send("continue", params)
	return err
}

// Fulfill answers the request with a synthetic response instead of letting
// it hit the network.
func (r *Route) Fulfill(options RouteFulfillOptions) error {
	params := toParams(options)
	status := 200
	if options.Status != nil {
		status = *options.Status
	}
	params["status"] = status

	var body []byte
	isBase64 := false
	contentType := ""
	if options.Path != nil {
		data, err := os.ReadFile(*options.Path)
		if err != nil {
			return err
		}
		body = data
		isBase64 = true
		contentType = mime.TypeByExtension(filepath.Ext(*options.Path))
	} else {
		switch data := options.Body.(type) {
		case string:
			body = []byte(data)
		case []byte:
			body = data
			isBase64 = true
		}
	}
	if options.ContentType != nil {
		contentType = *options.ContentType
	}

	headers := make(map[string]string, len(options.Headers)+2)
	for k, v := range options.Headers {
		headers[k] = v
	}
	if contentType != "" {
		headers["content-type"] = contentType
	}
	if body != nil {
		if _, ok := headers["content-length"]; !ok {
			headers["content-length"] = strconv.Itoa(len(body))
		}
		if isBase64 {
			params["body"] = base64.StdEncoding.EncodeToString(body)
			params["isBase64"] = true
		} else {
			params["body"] = string(body)
			params["isBase64"] = false
		}
	}
	params["headers"] = serializeHeaders(headers)

	_, err := r.ch.Send("fulfill", params)
	return err
}
