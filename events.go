package pagedriver

// Event names accepted by On/Once on the corresponding objects.
const (
	// Browser
	EventDisconnected = "disconnected"

	// BrowserContext
	EventContextClose = "close"

	// Page
	EventClose            = "close"
	EventConsole          = "console"
	EventCrash            = "crash"
	EventDialog           = "dialog"
	EventDOMContentLoaded = "domcontentloaded"
	EventDownload         = "download"
	EventFileChooser      = "filechooser"
	EventFrameAttached    = "frameattached"
	EventFrameDetached    = "framedetached"
	EventFrameNavigated   = "framenavigated"
	EventLoad             = "load"
	EventPage             = "page"
	EventPageError        = "pageerror"
	EventPopup            = "popup"
	EventRequest          = "request"
	EventRequestFailed    = "requestfailed"
	EventRequestFinished  = "requestfinished"
	EventResponse         = "response"
	EventWorker           = "worker"
)
