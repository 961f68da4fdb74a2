package pagedriver

import "sync"

// Selectors registers custom selector engines. Registrations apply to every
// driver connection the client knows about, so engines registered before
// Connect also reach remote browsers.
type Selectors struct {
	mu            sync.Mutex
	channels      []*SelectorsOwner
	registrations []map[string]interface{}
}

func newSelectors() *Selectors {
	return &Selectors{}
}

// Register adds a selector engine under the given name. The engine source
// comes from options.Script or options.Path.
func (s *Selectors) Register(name string, options SelectorsRegisterOptions) error {
	source := ""
	switch {
	case options.Script != nil:
		source = *options.Script
	case options.Path != nil:
		content, err := readFileText(*options.Path)
		if err != nil {
			return err
		}
		source = content
	default:
		return &Error{Name: "Error", Message: "either Script or Path must be specified"}
	}
	params := map[string]interface{}{
		"name":   name,
		"source": source,
	}
	if options.ContentScript != nil && *options.ContentScript {
		params["contentScript"] = true
	}

	s.mu.Lock()
	channels := append([]*SelectorsOwner(nil), s.channels...)
	s.registrations = append(s.registrations, params)
	s.mu.Unlock()

	for _, owner := range channels {
		if _, err := owner.ch.Send("register", params); err != nil {
			return err
		}
	}
	return nil
}

func (s *Selectors) addChannel(owner *SelectorsOwner) {
	s.mu.Lock()
	s.channels = append(s.channels, owner)
	pending := append([]map[string]interface{}(nil), s.registrations...)
	s.mu.Unlock()
	for _, params := range pending {
		owner.ch.SendNoReply("register", params)
	}
}

func (s *Selectors) removeChannel(owner *SelectorsOwner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.channels {
		if c == owner {
			s.channels = append(s.channels[:i], s.channels[i+1:]...)
			return
		}
	}
}

// SelectorsOwner is the driver-side selectors object for one connection.
type SelectorsOwner struct {
	channelOwner
}

func newSelectorsOwner(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *SelectorsOwner {
	s := &SelectorsOwner{}
	s.createChannelOwner(s, parent, parent.conn, objectType, guid, initializer)
	return s
}
