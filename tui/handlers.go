package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (a *App) handleKeyPress(key string) tea.Cmd {
	if a.currentMode == FieldEditMode {
		return a.handleFieldEditKeys(key)
	}

	// Global
	switch key {
	case "ctrl+c", "q":
		return tea.Quit
	case "?":
		return a.toggleHelp()
	case "esc":
		return a.handleEscape()
	case "s", "ctrl+s":
		if a.currentMode != HelpMode {
			return a.submit()
		}
	case "tab":
		if a.currentMode != HelpMode {
			a.cycleFocus()
			return nil
		}
	}

	switch a.currentMode {
	case BrowserMode:
		return a.handleBrowserKeys(key)
	case PreviewMode:
		return a.handlePreviewKeys(key)
	case DraftMode:
		return a.handleDraftKeys(key)
	}

	return nil
}

func (a *App) cycleFocus() {
	switch a.currentMode {
	case BrowserMode:
		a.currentMode = PreviewMode
	case PreviewMode:
		a.currentMode = DraftMode
	default:
		a.currentMode = BrowserMode
	}
}

func (a *App) handleBrowserKeys(key string) tea.Cmd {
	switch key {
	case "up", "k":
		a.fileBrowser.MoveUp()
	case "down", "j":
		a.fileBrowser.MoveDown()
	case "pgup":
		a.fileBrowser.PageUp(10)
	case "pgdown", "pgdn":
		a.fileBrowser.PageDown(10)
	case "enter":
		if file := a.fileBrowser.GetSelectedFile(); file != nil {
			return a.addSelected()
		}
		if err := a.fileBrowser.Navigate(); err != nil {
			a.setError("Navigation failed", err.Error())
		}
	case "h":
		a.fileBrowser.ToggleHidden()
		return a.setStatus("Hidden files: "+map[bool]string{true: "ON", false: "OFF"}[a.fileBrowser.ShowsHidden()], 2)
	}

	return nil
}

func (a *App) handlePreviewKeys(key string) tea.Cmd {
	n := a.composer.Pipeline().Len()
	switch key {
	case "left", "h", "up", "k":
		if a.selected > 0 {
			a.selected--
		}
	case "right", "l", "down", "j":
		if a.selected < n-1 {
			a.selected++
		}
	case "d", "x", "delete", "backspace":
		return a.removeSelected()
	}
	return nil
}

func (a *App) handleDraftKeys(key string) tea.Cmd {
	switch key {
	case "up", "k":
		a.draftEditor.MoveToPreviousField()
	case "down", "j":
		a.draftEditor.MoveToNextField()
	case "enter", "e":
		a.draftEditor.StartEditing(a.draftEditor.GetEditingField())
		a.currentMode = FieldEditMode
	case "u":
		if a.draftEditor.Undo() {
			return a.setStatus("Undone", 1)
		}
	case "r":
		if a.draftEditor.Redo() {
			return a.setStatus("Redone", 1)
		}
	}

	return nil
}

func (a *App) handleFieldEditKeys(key string) tea.Cmd {
	switch key {
	case "enter":
		if a.draftEditor.StopEditing() {
			a.currentMode = DraftMode
		}
	case "esc":
		a.draftEditor.CancelEditing()
		a.currentMode = DraftMode
	case "ctrl+c":
		return tea.Quit
	default:
		buffer := a.draftEditor.GetEditBuffer()
		switch key {
		case "backspace":
			if r := []rune(buffer); len(r) > 0 {
				a.draftEditor.UpdateEditBuffer(string(r[:len(r)-1]))
			}
		case "ctrl+u":
			a.draftEditor.UpdateEditBuffer("")
		case "space":
			a.draftEditor.UpdateEditBuffer(buffer + " ")
		default:
			if len([]rune(key)) == 1 {
				a.draftEditor.UpdateEditBuffer(buffer + key)
			}
		}
	}

	return nil
}

func (a *App) toggleHelp() tea.Cmd {
	if a.currentMode == HelpMode {
		a.currentMode = a.previousMode
	} else {
		a.previousMode = a.currentMode
		a.currentMode = HelpMode
	}
	return nil
}

func (a *App) handleEscape() tea.Cmd {
	if strings.HasPrefix(a.statusMessage, IconCross) {
		a.statusMessage = ""
		return nil
	}
	if a.currentMode == HelpMode {
		a.currentMode = a.previousMode
	}
	return nil
}
