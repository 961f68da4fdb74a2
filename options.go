package pagedriver

import "encoding/json"

// Geometry and credential types shared across options.

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Geolocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type HTTPCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Proxy struct {
	Server   string  `json:"server"`
	Bypass   *string `json:"bypass,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Cookie mirrors the driver's cookie records.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	URL      *string  `json:"url,omitempty"`
	Domain   *string  `json:"domain,omitempty"`
	Path     *string  `json:"path,omitempty"`
	Expires  *float64 `json:"expires,omitempty"`
	HTTPOnly *bool    `json:"httpOnly,omitempty"`
	Secure   *bool    `json:"secure,omitempty"`
	SameSite *string  `json:"sameSite,omitempty"`
}

// FilePayload carries an in-memory file for SetInputFiles.
type FilePayload struct {
	Name     string
	MimeType string
	Buffer   []byte
}

type LaunchOptions struct {
	ExecutablePath       *string                `json:"executablePath,omitempty"`
	Args                 []string               `json:"args,omitempty"`
	IgnoreAllDefaultArgs *bool                  `json:"ignoreAllDefaultArgs,omitempty"`
	Headless             *bool                  `json:"headless,omitempty"`
	Devtools             *bool                  `json:"devtools,omitempty"`
	Proxy                *Proxy                 `json:"proxy,omitempty"`
	DownloadsPath        *string                `json:"downloadsPath,omitempty"`
	SlowMo               *float64               `json:"slowMo,omitempty"`
	Timeout              *float64               `json:"timeout,omitempty"`
	Env                  map[string]string      `json:"env,omitempty"`
	ChromiumSandbox      *bool                  `json:"chromiumSandbox,omitempty"`
	FirefoxUserPrefs     map[string]interface{} `json:"firefoxUserPrefs,omitempty"`
}

// LaunchPersistentContextOptions combines launch and context options for
// LaunchPersistentContext.
type LaunchPersistentContextOptions struct {
	ExecutablePath       *string                `json:"executablePath,omitempty"`
	Args                 []string               `json:"args,omitempty"`
	IgnoreAllDefaultArgs *bool                  `json:"ignoreAllDefaultArgs,omitempty"`
	Headless             *bool                  `json:"headless,omitempty"`
	Devtools             *bool                  `json:"devtools,omitempty"`
	Proxy                *Proxy                 `json:"proxy,omitempty"`
	DownloadsPath        *string                `json:"downloadsPath,omitempty"`
	SlowMo               *float64               `json:"slowMo,omitempty"`
	Timeout              *float64               `json:"timeout,omitempty"`
	Env                  map[string]string      `json:"env,omitempty"`
	ChromiumSandbox      *bool                  `json:"chromiumSandbox,omitempty"`
	FirefoxUserPrefs     map[string]interface{} `json:"firefoxUserPrefs,omitempty"`
	Viewport             *Size                  `json:"viewport,omitempty"`
	NoDefaultViewport    *bool                  `json:"noDefaultViewport,omitempty"`
	IgnoreHTTPSErrors    *bool                  `json:"ignoreHTTPSErrors,omitempty"`
	JavaScriptEnabled    *bool                  `json:"javaScriptEnabled,omitempty"`
	BypassCSP            *bool                  `json:"bypassCSP,omitempty"`
	UserAgent            *string                `json:"userAgent,omitempty"`
	Locale               *string                `json:"locale,omitempty"`
	TimezoneID           *string                `json:"timezoneId,omitempty"`
	Geolocation          *Geolocation           `json:"geolocation,omitempty"`
	Permissions          []string               `json:"permissions,omitempty"`
	ExtraHTTPHeaders     map[string]string      `json:"-"`
	Offline              *bool                  `json:"offline,omitempty"`
	HTTPCredentials      *HTTPCredentials       `json:"httpCredentials,omitempty"`
	DeviceScaleFactor    *float64               `json:"deviceScaleFactor,omitempty"`
	IsMobile             *bool                  `json:"isMobile,omitempty"`
	HasTouch             *bool                  `json:"hasTouch,omitempty"`
	ColorScheme          *string                `json:"colorScheme,omitempty"`
	AcceptDownloads      *bool                  `json:"acceptDownloads,omitempty"`
	BaseURL              *string                `json:"baseURL,omitempty"`
}

type ConnectOptions struct {
	Timeout *float64          `json:"timeout,omitempty"`
	SlowMo  *float64          `json:"slowMo,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type NewContextOptions struct {
	Viewport          *Size             `json:"viewport,omitempty"`
	NoDefaultViewport *bool             `json:"noDefaultViewport,omitempty"`
	IgnoreHTTPSErrors *bool             `json:"ignoreHTTPSErrors,omitempty"`
	JavaScriptEnabled *bool             `json:"javaScriptEnabled,omitempty"`
	BypassCSP         *bool             `json:"bypassCSP,omitempty"`
	UserAgent         *string           `json:"userAgent,omitempty"`
	Locale            *string           `json:"locale,omitempty"`
	TimezoneID        *string           `json:"timezoneId,omitempty"`
	Geolocation       *Geolocation      `json:"geolocation,omitempty"`
	Permissions       []string          `json:"permissions,omitempty"`
	ExtraHTTPHeaders  map[string]string `json:"-"`
	Offline           *bool             `json:"offline,omitempty"`
	HTTPCredentials   *HTTPCredentials  `json:"httpCredentials,omitempty"`
	DeviceScaleFactor *float64          `json:"deviceScaleFactor,omitempty"`
	IsMobile          *bool             `json:"isMobile,omitempty"`
	HasTouch          *bool             `json:"hasTouch,omitempty"`
	ColorScheme       *string           `json:"colorScheme,omitempty"`
	AcceptDownloads   *bool             `json:"acceptDownloads,omitempty"`
	BaseURL           *string           `json:"baseURL,omitempty"`
	UserDataDir       *string           `json:"-"`
}

type GotoOptions struct {
	Timeout   *float64 `json:"timeout,omitempty"`
	WaitUntil *string  `json:"waitUntil,omitempty"`
	Referer   *string  `json:"referer,omitempty"`
}

type NavigationOptions struct {
	Timeout   *float64 `json:"timeout,omitempty"`
	WaitUntil *string  `json:"waitUntil,omitempty"`
}

type WaitForNavigationOptions struct {
	URL       URLMatch
	WaitUntil *string
	Timeout   *float64
}

type ClickOptions struct {
	Button      *string   `json:"button,omitempty"`
	ClickCount  *int      `json:"clickCount,omitempty"`
	Delay       *float64  `json:"delay,omitempty"`
	Position    *Position `json:"position,omitempty"`
	Modifiers   []string  `json:"modifiers,omitempty"`
	Force       *bool     `json:"force,omitempty"`
	NoWaitAfter *bool     `json:"noWaitAfter,omitempty"`
	Timeout     *float64  `json:"timeout,omitempty"`
}

type HoverOptions struct {
	Position  *Position `json:"position,omitempty"`
	Modifiers []string  `json:"modifiers,omitempty"`
	Force     *bool     `json:"force,omitempty"`
	Timeout   *float64  `json:"timeout,omitempty"`
}

type FillOptions struct {
	Force       *bool    `json:"force,omitempty"`
	NoWaitAfter *bool    `json:"noWaitAfter,omitempty"`
	Timeout     *float64 `json:"timeout,omitempty"`
}

type TypeOptions struct {
	Delay       *float64 `json:"delay,omitempty"`
	NoWaitAfter *bool    `json:"noWaitAfter,omitempty"`
	Timeout     *float64 `json:"timeout,omitempty"`
}

type CheckOptions struct {
	Position    *Position `json:"position,omitempty"`
	Force       *bool     `json:"force,omitempty"`
	NoWaitAfter *bool     `json:"noWaitAfter,omitempty"`
	Timeout     *float64  `json:"timeout,omitempty"`
}

type SelectOptionValues struct {
	Values   []string
	Labels   []string
	Indexes  []int
	Elements []*ElementHandle
}

type SetInputFilesOptions struct {
	NoWaitAfter *bool    `json:"noWaitAfter,omitempty"`
	Timeout     *float64 `json:"timeout,omitempty"`
}

type DispatchEventOptions struct {
	Timeout *float64 `json:"timeout,omitempty"`
}

type WaitForSelectorOptions struct {
	State   *string  `json:"state,omitempty"`
	Strict  *bool    `json:"strict,omitempty"`
	Timeout *float64 `json:"timeout,omitempty"`
}

type WaitForFunctionOptions struct {
	Polling *interface{} `json:"polling,omitempty"`
	Timeout *float64     `json:"timeout,omitempty"`
}

type ScreenshotOptions struct {
	Path           *string  `json:"-"`
	Type           *string  `json:"type,omitempty"`
	Quality        *int     `json:"quality,omitempty"`
	FullPage       *bool    `json:"fullPage,omitempty"`
	Clip           *Rect    `json:"clip,omitempty"`
	OmitBackground *bool    `json:"omitBackground,omitempty"`
	Timeout        *float64 `json:"timeout,omitempty"`
}

type PDFOptions struct {
	Scale               *float64          `json:"scale,omitempty"`
	DisplayHeaderFooter *bool             `json:"displayHeaderFooter,omitempty"`
	HeaderTemplate      *string           `json:"headerTemplate,omitempty"`
	FooterTemplate      *string           `json:"footerTemplate,omitempty"`
	PrintBackground     *bool             `json:"printBackground,omitempty"`
	Landscape           *bool             `json:"landscape,omitempty"`
	PageRanges          *string           `json:"pageRanges,omitempty"`
	Format              *string           `json:"format,omitempty"`
	Width               *string           `json:"width,omitempty"`
	Height              *string           `json:"height,omitempty"`
	PreferCSSPageSize   *bool             `json:"preferCSSPageSize,omitempty"`
	Margin              map[string]string `json:"margin,omitempty"`
	Path                *string           `json:"-"`
}

type EmulateMediaOptions struct {
	Media       *string `json:"media,omitempty"`
	ColorScheme *string `json:"colorScheme,omitempty"`
}

type AddTagOptions struct {
	URL     *string `json:"url,omitempty"`
	Path    *string `json:"-"`
	Content *string `json:"content,omitempty"`
	Type    *string `json:"type,omitempty"`
}

type PageCloseOptions struct {
	RunBeforeUnload *bool `json:"runBeforeUnload,omitempty"`
}

type RouteFulfillOptions struct {
	Status      *int              `json:"status,omitempty"`
	Headers     map[string]string `json:"-"`
	ContentType *string           `json:"-"`
	Body        interface{}       `json:"-"`
	Path        *string           `json:"-"`
}

type RouteContinueOptions struct {
	Method   *string           `json:"method,omitempty"`
	Headers  map[string]string `json:"-"`
	PostData interface{}       `json:"-"`
	URL      *string           `json:"url,omitempty"`
}

type MouseDownOptions struct {
	Button     *string `json:"button,omitempty"`
	ClickCount *int    `json:"clickCount,omitempty"`
}

type MouseClickOptions struct {
	Button     *string  `json:"button,omitempty"`
	ClickCount *int     `json:"clickCount,omitempty"`
	Delay      *float64 `json:"delay,omitempty"`
}

type SelectorsRegisterOptions struct {
	Script        *string `json:"-"`
	Path          *string `json:"-"`
	ContentScript *bool   `json:"-"`
}

// Helper conversions.

func String(v string) *string { return &v }
func Bool(v bool) *bool { return &v }
func Int(v int) *int { return &v }
func Float(v float64) *float64 { return &v }

// toParams converts an options struct to wire params via its json tags.
// A nil or zero options value yields an empty, non-nil map so required
// params can be merged in.
func toParams(options interface{}) map[string]interface{} {
	params := make(map[string]interface{})
	if options == nil {
		return params
	}
	data, err := json.Marshal(options)
	if err != nil {
		return params
	}
	// A typed nil pointer marshals to "null", which would replace the map
	// with nil and break later params[...] assignments.
	if string(data) == "null" {
		return params
	}
	_ = json.Unmarshal(data, &params)
	return params
}

// firstOption returns the only allowed variadic options value, letting call
// sites omit options entirely.
func firstOption[T any](options []T) *T {
	if len(options) == 0 {
		return nil
	}
	return &options[0]
}
