package pagedriver

// createObjectFactory builds typed objects for __create__ events. Unknown
// types still get a registered owner so guid references in later payloads
// resolve, they just expose no API.
func createObjectFactory() objectFactory {
	return func(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) interface{} {
		switch objectType {
		case "Playwright":
			return newPlaywright(parent, objectType, guid, initializer)
		case "BrowserType":
			return newBrowserType(parent, objectType, guid, initializer)
		case "Browser":
			return newBrowser(parent, objectType, guid, initializer)
		case "BrowserContext":
			return newBrowserContext(parent, objectType, guid, initializer)
		case "Page":
			return newPage(parent, objectType, guid, initializer)
		case "Frame":
			return newFrame(parent, objectType, guid, initializer)
		case "ElementHandle":
			return newElementHandle(parent, objectType, guid, initializer)
		case "JSHandle":
			return newJSHandle(parent, objectType, guid, initializer)
		case "Request":
			return newRequest(parent, objectType, guid, initializer)
		case "Response":
			return newResponse(parent, objectType, guid, initializer)
		case "Route":
			return newRoute(parent, objectType, guid, initializer)
		case "Worker":
			return newWorker(parent, objectType, guid, initializer)
		case "Dialog":
			return newDialog(parent, objectType, guid, initializer)
		case "BindingCall":
			return newBindingCall(parent, objectType, guid, initializer)
		case "Artifact":
			return newArtifact(parent, objectType, guid, initializer)
		case "Stream":
			return newStream(parent, objectType, guid, initializer)
		case "Selectors":
			return newSelectorsOwner(parent, objectType, guid, initializer)
		default:
			return newDummyObject(parent, objectType, guid, initializer)
		}
	}
}

type dummyObject struct {
	channelOwner
}

func newDummyObject(parent *channelOwner, objectType, guid string, initializer map[string]interface{}) *dummyObject {
	d := &dummyObject{}
	d.createChannelOwner(d, parent, parent.conn, objectType, guid, initializer)
	return d
}
