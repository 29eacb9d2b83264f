package tui

import "phocaforme/model"

type Mode int

const (
	BrowserMode Mode = iota
	PreviewMode
	DraftMode
	FieldEditMode
	HelpMode
)

type SubmittedMsg struct {
	ID  model.ID
	Err error
}

// StatusTickMsg clears a status message. Seq guards against clearing a
// newer message than the one that scheduled the tick.
type StatusTickMsg struct {
	Seq int
}
