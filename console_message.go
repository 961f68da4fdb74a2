package pagedriver

// ConsoleMessage is a console API call reported by the page.
type ConsoleMessage struct {
	msgType  string
	text     string
	args     []*JSHandle
	location ConsoleMessageLocation
}

type ConsoleMessageLocation struct {
	URL          string
	LineNumber   int
	ColumnNumber int
}

func newConsoleMessage(params map[string]interface{}) *ConsoleMessage {
	m := &ConsoleMessage{}
	m.msgType, _ = params["type"].(string)
	m.text, _ = params["text"].(string)
	if args, ok := params["args"].([]interface{}); ok {
		for _, arg := range args {
			if handle := toJSHandle(arg); handle != nil {
				m.args = append(m.args, handle)
			}
		}
	}
	if location, ok := params["location"].(map[string]interface{}); ok {
		m.location.URL, _ = location["url"].(string)
		if v, ok := location["lineNumber"].(float64); ok {
			m.location.LineNumber = int(v)
		}
		if v, ok := location["columnNumber"].(float64); ok {
			m.location.ColumnNumber = int(v)
		}
	}
	return m
}

// Type is one of "log", "debug", "info", "error", "warning" and the other
// console API names.
func (m *ConsoleMessage) Type() string {
	return m.msgType
}

func (m *ConsoleMessage) Text() string {
	return m.text
}

func (m *ConsoleMessage) String() string {
	return m.text
}

// Args returns handles to the values passed to the console call.
func (m *ConsoleMessage) Args() []*JSHandle {
	return m.args
}

func (m *ConsoleMessage) Location() ConsoleMessageLocation {
	return m.location
}
