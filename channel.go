package pagedriver

// channel is an object's handle for sending protocol calls. Replies carry
// named results; Send unwraps one level when the result has exactly one key.
type channel struct {
	connection *connection
	guid       string
	owner      *channelOwner
}

// hasChannel is implemented by every API object; outgoing params replace
// such values with {"guid": ...} references.
type hasChannel interface {
	channel() *channel
}

func (c *channel) Send(method string, params map[string]interface{}) (interface{}, error) {
	result, err := c.innerSend(method, params)
	if err != nil {
		return nil, err
	}
	m, ok := result.(map[string]interface{})
	if !ok || m == nil {
		return result, nil
	}
	if len(m) == 0 {
		return nil, nil
	}
	if len(m) == 1 {
		for _, value := range m {
			return value, nil
		}
	}
	return m, nil
}

// SendReturnAsDict bypasses single-key unwrapping for ambiguous results.
func (c *channel) SendReturnAsDict(method string, params map[string]interface{}) (map[string]interface{}, error) {
	result, err := c.innerSend(method, params)
	if err != nil {
		return nil, err
	}
	m, _ := result.(map[string]interface{})
	return m, nil
}

func (c *channel) innerSend(method string, params map[string]interface{}) (interface{}, error) {
	if err := c.connection.takeListenerError(); err != nil {
		return nil, err
	}
	callback, err := c.connection.sendMessageToServer(c.owner, method, params, false)
	if err != nil {
		return nil, err
	}
	<-callback.done
	if callback.err != nil {
		return nil, callback.err
	}
	return callback.result, nil
}

// SendNoReply fires a call whose reply is intentionally ignored, e.g.
// waitForEventInfo(after) and the NoReply timeout setters.
func (c *channel) SendNoReply(method string, params map[string]interface{}) {
	if _, err := c.connection.sendMessageToServer(c.owner, method, params, true); err != nil {
		c.connection.logger.Debug("no-reply send failed", zapError(err))
	}
}
