package pagedriver

// Keyboard drives the page's virtual keyboard. All methods target the
// currently focused element.
type Keyboard struct {
	ch *channel
}

// Down dispatches a keydown event. Held modifier keys affect subsequent
// input until Up is called.
func (k *Keyboard) Down(key string) error {
	_, err := k.ch.Send("keyboardDown", map[string]interface{}{"key": key})
	return err
}

func (k *Keyboard) Up(key string) error {
	_, err := k.ch.Send("keyboardUp", map[string]interface{}{"key": key})
	return err
}

// InsertText types text without dispatching key events.
func (k *Keyboard) InsertText(text string) error {
	_, err := k.ch.Send("keyboardInsertText", map[string]interface{}{"text": text})
	return err
}

func (k *Keyboard) Type(text string, delay ...float64) error {
	params := map[string]interface{}{"text": text}
	if len(delay) > 0 {
		params["delay"] = delay[0]
	}
	_, err := k.ch.Send("keyboardType", params)
	return err
}

// Press presses a key or key combination such as "Control+a".
func (k *Keyboard) Press(key string, delay ...float64) error {
	params := map[string]interface{}{"key": key}
	if len(delay) > 0 {
		params["delay"] = delay[0]
	}
	_, err := k.ch.Send("keyboardPress", params)
	return err
}

// Mouse drives the page's virtual mouse in main-frame CSS pixels.
type Mouse struct {
	ch *channel
}

func (m *Mouse) Move(x, y float64, steps ...int) error {
	params := map[string]interface{}{"x": x, "y": y}
	if len(steps) > 0 {
		params["steps"] = steps[0]
	}
	_, err := m.ch.Send("mouseMove", params)
	return err
}

func (m *Mouse) Down(options ...MouseDownOptions) error {
	_, err := m.ch.Send("mouseDown", toParams(firstOption(options)))
	return err
}

func (m *Mouse) Up(options ...MouseDownOptions) error {
	_, err := m.ch.Send("mouseUp", toParams(firstOption(options)))
	return err
}

func (m *Mouse) Click(x, y float64, options ...MouseClickOptions) error {
	params := toParams(firstOption(options))
	params["x"] = x
	params["y"] = y
	_, err := m.ch.Send("mouseClick", params)
	return err
}

func (m *Mouse) DblClick(x, y float64, options ...MouseClickOptions) error {
	opts := firstOption(options)
	if opts == nil {
		opts = &MouseClickOptions{}
	}
	opts.ClickCount = Int(2)
	return m.Click(x, y, *opts)
}

// Wheel scrolls by the given deltas.
func (m *Mouse) Wheel(deltaX, deltaY float64) error {
	_, err := m.ch.Send("mouseWheel", map[string]interface{}{
		"deltaX": deltaX,
		"deltaY": deltaY,
	})
	return err
}

// Touchscreen drives touch input on pages created with HasTouch.
type Touchscreen struct {
	ch *channel
}

func (t *Touchscreen) Tap(x, y float64) error {
	_, err := t.ch.Send("touchscreenTap", map[string]interface{}{"x": x, "y": y})
	return err
}
