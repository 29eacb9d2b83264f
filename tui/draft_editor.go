package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"phocaforme/model"
)

// DraftEditor edits the text fields of a listing draft in place.
type DraftEditor struct {
	draft          *model.Draft
	editingField   int
	editBuffer     string
	isEditing      bool
	isDirty        bool
	undoStack      []model.Draft
	redoStack      []model.Draft
	validationErrs map[string]string
}

type DraftField struct {
	Name      string
	Value     string
	Validator func(string) error
}

const (
	FieldTitle = iota
	FieldContent
	FieldCardType
	FieldGroup
	FieldOwnMembers
	FieldTargetMembers
	FieldCount
)

func NewDraftEditor(draft *model.Draft) *DraftEditor {
	return &DraftEditor{
		draft:          draft,
		validationErrs: make(map[string]string),
	}
}

func (de *DraftEditor) GetFields() []DraftField {
	d := de.draft
	return []DraftField{
		{Name: "Title", Value: d.Title, Validator: validateLength("title", 100)},
		{Name: "Content", Value: d.Content, Validator: validateLength("content", 1000)},
		{Name: "Card type", Value: d.CardType, Validator: validateLength("card type", 50)},
		{Name: "Group", Value: formatID(d.GroupID), Validator: validateGroup},
		{Name: "Have", Value: formatIDs(d.OwnMembers), Validator: validateMembers},
		{Name: "Want", Value: formatIDs(d.TargetMembers), Validator: validateMembers},
	}
}

func (de *DraftEditor) StartEditing(fieldIndex int) {
	if fieldIndex < 0 || fieldIndex >= FieldCount {
		return
	}

	de.editingField = fieldIndex
	de.isEditing = true
	de.editBuffer = de.GetFields()[fieldIndex].Value
}

// StopEditing commits the buffer. A value that fails validation keeps the
// editor open with the error recorded against the field.
func (de *DraftEditor) StopEditing() bool {
	if !de.isEditing {
		return true
	}

	field := de.GetFields()[de.editingField]
	if err := field.Validator(de.editBuffer); err != nil {
		de.validationErrs[field.Name] = err.Error()
		return false
	}
	delete(de.validationErrs, field.Name)

	if field.Value != strings.TrimSpace(de.editBuffer) {
		de.saveFieldValue(de.editingField, de.editBuffer)
	}

	de.isEditing = false
	de.editBuffer = ""
	return true
}

func (de *DraftEditor) CancelEditing() {
	if de.isEditing {
		delete(de.validationErrs, de.GetFields()[de.editingField].Name)
	}
	de.isEditing = false
	de.editBuffer = ""
}

func (de *DraftEditor) UpdateEditBuffer(value string) {
	de.editBuffer = value
}

func (de *DraftEditor) saveFieldValue(fieldIndex int, value string) {
	de.createUndoSnapshot()
	value = strings.TrimSpace(value)

	switch fieldIndex {
	case FieldTitle:
		de.draft.Title = value
	case FieldContent:
		de.draft.Content = value
	case FieldCardType:
		de.draft.CardType = value
	case FieldGroup:
		de.draft.GroupID, _ = parseID(value)
	case FieldOwnMembers:
		de.draft.OwnMembers, _ = parseIDs(value)
	case FieldTargetMembers:
		de.draft.TargetMembers, _ = parseIDs(value)
	}

	de.isDirty = true
}

func (de *DraftEditor) MoveToPreviousField() {
	de.editingField--
	if de.editingField < 0 {
		de.editingField = FieldCount - 1
	}
}

func (de *DraftEditor) MoveToNextField() {
	de.editingField++
	if de.editingField >= FieldCount {
		de.editingField = 0
	}
}

func (de *DraftEditor) GetEditingField() int {
	return de.editingField
}

func (de *DraftEditor) IsEditing() bool {
	return de.isEditing
}

func (de *DraftEditor) GetEditBuffer() string {
	return de.editBuffer
}

func (de *DraftEditor) IsDirty() bool {
	return de.isDirty
}

func (de *DraftEditor) GetValidationError(fieldName string) string {
	return de.validationErrs[fieldName]
}

func (de *DraftEditor) Undo() bool {
	if len(de.undoStack) == 0 {
		return false
	}

	de.redoStack = append(de.redoStack, copyDraft(*de.draft))
	last := len(de.undoStack) - 1
	*de.draft = de.undoStack[last]
	de.undoStack = de.undoStack[:last]

	de.isDirty = true
	return true
}

func (de *DraftEditor) Redo() bool {
	if len(de.redoStack) == 0 {
		return false
	}

	de.undoStack = append(de.undoStack, copyDraft(*de.draft))
	last := len(de.redoStack) - 1
	*de.draft = de.redoStack[last]
	de.redoStack = de.redoStack[:last]

	de.isDirty = true
	return true
}

func (de *DraftEditor) createUndoSnapshot() {
	const maxUndoSize = 20
	if len(de.undoStack) >= maxUndoSize {
		de.undoStack = de.undoStack[1:]
	}
	de.undoStack = append(de.undoStack, copyDraft(*de.draft))
	de.redoStack = nil
}

func copyDraft(d model.Draft) model.Draft {
	d.OwnMembers = slices.Clone(d.OwnMembers)
	d.TargetMembers = slices.Clone(d.TargetMembers)
	return d
}

func validateLength(name string, limit int) func(string) error {
	return func(value string) error {
		if len([]rune(strings.TrimSpace(value))) > limit {
			return fmt.Errorf("%s too long (max %d characters)", name, limit)
		}
		return nil
	}
}

func validateGroup(value string) error {
	if _, err := parseID(value); err != nil {
		return fmt.Errorf("group must be a number")
	}
	return nil
}

func validateMembers(value string) error {
	if _, err := parseIDs(value); err != nil {
		return fmt.Errorf("members must be comma separated numbers")
	}
	return nil
}

func parseID(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func parseIDs(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
