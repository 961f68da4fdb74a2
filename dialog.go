package pagedriver

// Dialog is a javascript dialog (alert, confirm, prompt, beforeunload)
// awaiting a decision. A dialog handler must either Accept or Dismiss it,
// otherwise the page stalls.
type Dialog struct {
	channelOwner
}

func newDialog(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Dialog {
	d := &Dialog{}
	d.createChannelOwner(d, parent, parent.conn, objectType, guid, initializer)
	return d
}

func (d *Dialog) Type() string {
	return d.initializerString("type")
}

func (d *Dialog) Message() string {
	return d.initializerString("message")
}

func (d *Dialog) DefaultValue() string {
	return d.initializerString("defaultValue")
}

// Accept closes the dialog affirmatively. promptText only applies to
// prompt dialogs.
func (d *Dialog) Accept(promptText ...string) error {
	params := map[string]interface{}{}
	if len(promptText) > 0 {
		params["promptText"] = promptText[0]
	}
	_, err := d.ch.Send("accept", params)
	return err
}

func (d *Dialog) Dismiss() error {
	_, err := d.ch.Send("dismiss", nil)
	return err
}
