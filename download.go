package pagedriver

// Download is a file download started by the page. The underlying artifact
// lives with the browser, so Path/SaveAs work against remote browsers too.
type Download struct {
	page              *Page
	url               string
	suggestedFilename string
	artifact          *Artifact
}

func newDownload(page *Page, params map[string]interface{}) *Download {
	d := &Download{page: page}
	d.url, _ = params["url"].(string)
	d.suggestedFilename, _ = params["suggestedFilename"].(string)
	d.artifact, _ = params["artifact"].(*Artifact)
	return d
}

func (d *Download) Page() *Page {
	return d.page
}

func (d *Download) URL() string {
	return d.url
}

// SuggestedFilename is the name the browser proposed for the download.
func (d *Download) SuggestedFilename() string {
	return d.suggestedFilename
}

// Path blocks until the download finishes and returns the file path.
func (d *Download) Path() (string, error) {
	return d.artifact.PathAfterFinished()
}

func (d *Download) SaveAs(path string) error {
	return d.artifact.SaveAs(path)
}

func (d *Download) Failure() (string, error) {
	return d.artifact.Failure()
}

func (d *Download) Delete() error {
	return d.artifact.Delete()
}

func (d *Download) Cancel() error {
	return d.artifact.Cancel()
}
