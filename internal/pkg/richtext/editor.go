package richtext

// FieldPath is the record field the narrative is written to.
const FieldPath = "observationsRichText"

// FieldUpdater receives the serialized narrative after every command.
type FieldUpdater interface {
	UpdateField(path string, value any) error
}

// Editor applies commands to a document and mirrors the result into a record.
type Editor struct {
	doc  *Document
	sink FieldUpdater
}

// NewEditor starts editing from the narrative markup already on the record.
func NewEditor(sink FieldUpdater, initial string) *Editor {
	return &Editor{doc: ParseHTML(initial), sink: sink}
}

// Document returns the document being edited.
func (e *Editor) Document() *Document { return e.doc }

func (e *Editor) sync() error {
	return e.sink.UpdateField(FieldPath, e.doc.HTML())
}

func (e *Editor) Type(text string) error {
	e.doc.Type(text)
	return e.sync()
}

func (e *Editor) ToggleBold() error {
	e.doc.ToggleBold()
	return e.sync()
}

func (e *Editor) ToggleUnderline() error {
	e.doc.ToggleUnderline()
	return e.sync()
}

func (e *Editor) Bullet() error {
	e.doc.Bullet()
	return e.sync()
}

func (e *Editor) Numbered() error {
	e.doc.Numbered()
	return e.sync()
}

func (e *Editor) LineBreak() error {
	e.doc.LineBreak()
	return e.sync()
}
