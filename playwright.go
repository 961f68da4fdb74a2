package pagedriver

// DeviceDescriptor describes a device preset for NewContext emulation.
type DeviceDescriptor struct {
	UserAgent          string
	Viewport           Size
	DeviceScaleFactor  float64
	IsMobile           bool
	HasTouch           bool
	DefaultBrowserType string
}

// Playwright is the entry object handed back by Run or Connect. It exposes
// the three browser types, the selector registry and the device catalog.
type Playwright struct {
	channelOwner

	Chromium *BrowserType
	Firefox  *BrowserType
	WebKit   *BrowserType

	Selectors *Selectors
	Devices   map[string]DeviceDescriptor

	selectorsOwner *SelectorsOwner
}

func newPlaywright(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *Playwright {
	p := &Playwright{
		Selectors: newSelectors(),
		Devices:   make(map[string]DeviceDescriptor),
	}
	p.createChannelOwner(p, parent, parent.conn, objectType, guid, initializer)

	p.Chromium, _ = initializer["chromium"].(*BrowserType)
	p.Firefox, _ = initializer["firefox"].(*BrowserType)
	p.WebKit, _ = initializer["webkit"].(*BrowserType)
	for _, bt := range []*BrowserType{p.Chromium, p.Firefox, p.WebKit} {
		if bt != nil {
			bt.playwright = p
		}
	}

	if owner, ok := initializer["selectors"].(*SelectorsOwner); ok {
		p.selectorsOwner = owner
		p.Selectors.addChannel(owner)
	}

	if devices, ok := initializer["deviceDescriptors"].([]interface{}); ok {
		for _, entry := range devices {
			raw, _ := entry.(map[string]interface{})
			name, _ := raw["name"].(string)
			descriptor, _ := raw["descriptor"].(map[string]interface{})
			if name == "" || descriptor == nil {
				continue
			}
			p.Devices[name] = parseDeviceDescriptor(descriptor)
		}
	}
	return p
}

func parseDeviceDescriptor(raw map[string]interface{}) DeviceDescriptor {
	d := DeviceDescriptor{}
	d.UserAgent, _ = raw["userAgent"].(string)
	if viewport, ok := raw["viewport"].(map[string]interface{}); ok {
		if w, ok := viewport["width"].(float64); ok {
			d.Viewport.Width = int(w)
		}
		if h, ok := viewport["height"].(float64); ok {
			d.Viewport.Height = int(h)
		}
	}
	d.DeviceScaleFactor, _ = raw["deviceScaleFactor"].(float64)
	d.IsMobile, _ = raw["isMobile"].(bool)
	d.HasTouch, _ = raw["hasTouch"].(bool)
	d.DefaultBrowserType, _ = raw["defaultBrowserType"].(string)
	return d
}

// Stop disconnects from the driver. When the connection owns a driver
// process started by Run, closing it also reaps that process.
func (p *Playwright) Stop() error {
	return p.conn.Stop()
}
