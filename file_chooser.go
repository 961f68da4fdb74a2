package pagedriver

// FileChooser is emitted when the page asks for files. SetFiles answers it.
type FileChooser struct {
	page       *Page
	element    *ElementHandle
	isMultiple bool
}

func newFileChooser(page *Page, element *ElementHandle, isMultiple bool) *FileChooser {
	return &FileChooser{page: page, element: element, isMultiple: isMultiple}
}

func (f *FileChooser) Page() *Page {
	return f.page
}

// Element returns the input element that triggered the chooser.
func (f *FileChooser) Element() *ElementHandle {
	return f.element
}

func (f *FileChooser) IsMultiple() bool {
	return f.isMultiple
}

func (f *FileChooser) SetFiles(files []FilePayload, options ...SetInputFilesOptions) error {
	return f.element.SetInputFiles(files, options...)
}
