package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"phocaforme/ingest"
	"phocaforme/market"
	"phocaforme/utils"
)

// App is the listing composer: pick images on the left, edit the draft in
// the middle, watch previews fill in on the right.
type App struct {
	fileBrowser *FileBrowser
	draftEditor *DraftEditor
	composer    *market.Composer
	layout      *Layout
	theme       *Theme

	currentMode  Mode
	previousMode Mode
	selected     int

	statusMessage string
	statusSeq     int
	submitting    bool
	submittedID   string
	submitTimeout time.Duration

	initialFiles []string
}

func NewApp(startDir string, composer *market.Composer) *App {
	return &App{
		fileBrowser:   NewFileBrowser(startDir),
		draftEditor:   NewDraftEditor(&composer.Draft),
		composer:      composer,
		layout:        NewLayout(),
		theme:         DefaultTheme(),
		currentMode:   BrowserMode,
		submitTimeout: 2 * time.Minute,
	}
}

func (a *App) Init() tea.Cmd {
	if len(a.initialFiles) == 0 {
		return nil
	}
	files := a.initialFiles
	a.initialFiles = nil
	return a.composer.Pipeline().Enqueue(ingest.FileSources(files...)...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.layout.Update(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKeyPress(msg.String())

	case ingest.DecodedMsg:
		a.composer.Pipeline().Update(msg)
		return a, nil

	case SubmittedMsg:
		a.submitting = false
		if msg.Err != nil {
			a.setError("Submit failed", msg.Err.Error())
			return a, nil
		}
		a.submittedID = msg.ID.String()
		return a, a.setStatus(fmt.Sprintf("%s Listing %s created", IconCheck, msg.ID), 3)

	case StatusTickMsg:
		if msg.Seq == a.statusSeq {
			a.statusMessage = ""
		}
		return a, nil
	}
	return a, nil
}

func (a *App) setError(message, details string) {
	errorMsg := message
	if details != "" {
		errorMsg += ": " + details
	}
	a.statusSeq++
	a.statusMessage = IconCross + " " + errorMsg
}

// setStatus shows message for the given number of seconds.
func (a *App) setStatus(message string, seconds int) tea.Cmd {
	a.statusSeq++
	a.statusMessage = message
	seq := a.statusSeq
	return tea.Tick(time.Duration(seconds)*time.Second, func(time.Time) tea.Msg {
		return StatusTickMsg{Seq: seq}
	})
}

// addSelected enqueues the highlighted image and returns its decode command.
func (a *App) addSelected() tea.Cmd {
	file := a.fileBrowser.GetSelectedFile()
	if file == nil {
		return nil
	}
	p := a.composer.Pipeline()
	cmd := p.Enqueue(ingest.FileSource{Path: file.Path})
	a.selected = p.Len() - 1
	if a.composer.Draft.Title == "" {
		a.composer.Draft.Title = utils.DeriveTitleFromFilename(file.Path)
	}
	logrus.WithField("file", file.Path).Debug("image added")
	return tea.Batch(cmd, a.setStatus("Added "+file.Name, 1))
}

func (a *App) removeSelected() tea.Cmd {
	p := a.composer.Pipeline()
	if !p.RemoveAt(a.selected) {
		return nil
	}
	if a.selected >= p.Len() {
		a.selected = max(p.Len()-1, 0)
	}
	return a.setStatus("Removed image", 1)
}

func (a *App) submit() tea.Cmd {
	if a.submitting {
		return nil
	}
	sub, err := a.composer.Prepare()
	if err != nil {
		a.setError("Cannot submit", strings.ReplaceAll(err.Error(), "\n", ", "))
		return nil
	}
	a.submitting = true
	timeout := a.submitTimeout
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			id, err := sub.Send(ctx)
			return SubmittedMsg{ID: id, Err: err}
		},
		a.setStatus("Uploading listing...", 2),
	)
}

func (a *App) View() string {
	if !a.layout.IsMinimumSize() {
		return "Terminal too small. Minimum size: 60x20"
	}

	if a.currentMode == HelpMode {
		return a.renderHelp()
	}
	return a.renderMainView(a.layout.Calculate())
}

func (a *App) renderMainView(layout AdaptiveLayout) string {
	leftPanel := a.renderFileBrowser(layout.LeftPanelWidth, layout.ContentHeight)

	var mainContent string
	if layout.MiddlePanelWidth > 0 {
		mainContent = lipgloss.JoinHorizontal(
			lipgloss.Top,
			leftPanel,
			a.renderDraftPanel(layout.MiddlePanelWidth, layout.ContentHeight),
			a.renderPreviewPanel(layout.RightPanelWidth, layout.ContentHeight, layout.PreviewColumns),
		)
	} else {
		right := lipgloss.JoinVertical(
			lipgloss.Left,
			a.renderDraftPanel(layout.RightPanelWidth, layout.DraftPanelHeight),
			a.renderPreviewPanel(layout.RightPanelWidth, layout.ContentHeight-layout.DraftPanelHeight, layout.PreviewColumns),
		)
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, a.renderStatusBar())
}

func (a *App) panel(content string, width, height int, focused bool) string {
	style := lipgloss.NewStyle().
		Border(a.theme.PanelBorder).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Padding(0, 1)
	if focused {
		return style.BorderForeground(ColorPrimary).Render(content)
	}
	return style.BorderForeground(ColorBorder).Render(content)
}

func (a *App) renderFileBrowser(width, height int) string {
	theme := a.theme
	entries := a.fileBrowser.GetEntries()
	selectedIndex := a.fileBrowser.GetSelectedIndex()

	lines := []string{
		theme.HeaderStyle.Render(IconFolder + " Images"),
		theme.MutedTextStyle.Render(truncate(a.fileBrowser.GetCurrentDir(), width-6)),
		Separator(width-6, "─", ColorBorderLight),
	}

	contentHeight := max(height-6, 1)
	startIdx := 0
	if selectedIndex >= contentHeight {
		startIdx = selectedIndex - contentHeight + 1
	}
	endIdx := min(startIdx+contentHeight, len(entries))

	for i := startIdx; i < endIdx; i++ {
		entry := entries[i]

		prefix := "  "
		if i == selectedIndex {
			prefix = IconArrowRight + " "
		}

		var line string
		if entry.IsDir {
			line = prefix + IconFolder + " " + theme.HighlightStyle.Render(truncate(entry.Name+"/", width-12))
		} else {
			line = prefix + IconImage + " " + theme.NormalTextStyle.Render(truncate(entry.Name, width-22)) +
				" " + theme.MutedTextStyle.Render(utils.FormatSize(entry.Size))
		}
		if i == selectedIndex {
			line = theme.SelectedItemStyle.Render(line)
		}
		lines = append(lines, line)
	}

	for len(lines) < contentHeight+3 {
		lines = append(lines, "")
	}
	if len(entries) > 0 {
		lines = append(lines, theme.MutedTextStyle.Render(fmt.Sprintf("%d/%d", selectedIndex+1, len(entries))))
	} else {
		lines = append(lines, theme.MutedTextStyle.Render("No images"))
	}

	return a.panel(strings.Join(lines, "\n"), width, height, a.currentMode == BrowserMode)
}

func (a *App) renderDraftPanel(width, height int) string {
	theme := a.theme

	header := "Listing"
	if a.draftEditor.IsDirty() {
		header += " " + StatusBadge("EDITED", "warning", theme)
	}
	if a.submittedID != "" {
		header += " " + StatusBadge("#"+a.submittedID, "success", theme)
	}
	lines := []string{theme.HeaderStyle.Render(header), Separator(width-6, "─", ColorBorderLight)}

	editing := a.draftEditor.IsEditing()
	current := a.draftEditor.GetEditingField()
	focused := a.currentMode == DraftMode || a.currentMode == FieldEditMode

	for i, field := range a.draftEditor.GetFields() {
		prefix := "  "
		if focused && i == current {
			prefix = IconArrowRight + " "
		}

		var value string
		switch {
		case editing && i == current:
			value = a.draftEditor.GetEditBuffer() + theme.EditingStyle.Render("_")
		case field.Value == "":
			value = theme.MutedTextStyle.Render("(empty)")
		default:
			value = theme.FieldValueStyle.Render(truncate(field.Value, width-20))
		}

		line := prefix + theme.MutedTextStyle.Render(field.Name+":") + " " + value
		if editing && i == current {
			line = theme.EditingStyle.Render(line)
		}
		lines = append(lines, line)

		if err := a.draftEditor.GetValidationError(field.Name); err != "" {
			lines = append(lines, "  "+theme.ErrorStyle.Render(IconCross+" "+err))
		}
	}

	return a.panel(strings.Join(lines, "\n"), width, height, focused)
}

func (a *App) renderPreviewPanel(width, height, columns int) string {
	theme := a.theme
	p := a.composer.Pipeline()
	sources, previews := p.Snapshot()
	entries := p.Entries()

	header := fmt.Sprintf("%s Photos (%d)", IconImage, len(sources))
	if pending := p.Pending(); pending > 0 {
		header += " " + StatusBadge(fmt.Sprintf("%d loading", pending), "info", theme)
	}
	lines := []string{theme.HeaderStyle.Render(header)}
	if len(sources) > 0 {
		lines = append(lines, RenderProgressBar(len(sources)-p.Pending(), len(sources), min(width-6, 30), theme))
	}

	if len(sources) == 0 {
		lines = append(lines, "", theme.MutedTextStyle.Render("Press Enter on an image to add it"))
		return a.panel(strings.Join(lines, "\n"), width, height, a.currentMode == PreviewMode)
	}

	var rows []string
	var row []string
	for i := range sources {
		row = append(row, a.renderCard(i, sources[i], previews[i], entries[i].Err))
		if len(row) == columns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	lines = append(lines, rows...)

	return a.panel(strings.Join(lines, "\n"), width, height, a.currentMode == PreviewMode)
}

func (a *App) renderCard(i int, src ingest.Source, preview *ingest.Preview, err error) string {
	theme := a.theme
	inner := previewCardWidth - 4

	var body string
	switch {
	case preview != nil:
		body = theme.SuccessStyle.Render(fmt.Sprintf("%dx%d", preview.Width, preview.Height)) + "\n" +
			theme.MutedTextStyle.Render(preview.MIME+" "+utils.FormatSize(int64(preview.Bytes)))
	case err != nil:
		body = theme.ErrorStyle.Render("no preview") + "\n" + theme.MutedTextStyle.Render(truncate(err.Error(), inner))
	default:
		body = theme.MutedTextStyle.Render(IconHourglass+" loading…") + "\n"
	}

	content := fmt.Sprintf("%d. %s\n%s", i+1, truncate(src.Name(), inner-3), body)
	if a.currentMode == PreviewMode && i == a.selected {
		return theme.SelectedCardStyle.Render(content)
	}
	return theme.CardStyle.Render(content)
}

func (a *App) renderStatusBar() string {
	theme := a.theme
	separator := theme.MutedTextStyle.Render(" │ ")

	if a.statusMessage != "" {
		if strings.HasPrefix(a.statusMessage, IconCross) {
			return theme.ErrorStyle.Render(a.statusMessage) + theme.MutedTextStyle.Render(" │ Press ESC to dismiss")
		}
		if strings.HasPrefix(a.statusMessage, IconCheck) {
			return theme.SuccessStyle.Render(a.statusMessage)
		}
		return theme.NormalTextStyle.Render(a.statusMessage)
	}

	var hints []string
	switch a.currentMode {
	case BrowserMode:
		hints = []string{
			KeyHelp("↑↓", "navigate", theme),
			KeyHelp("Enter", "add/open", theme),
			KeyHelp("Tab", "photos", theme),
			KeyHelp("h", "hidden", theme),
			KeyHelp("s", "submit", theme),
			KeyHelp("?", "help", theme),
			KeyHelp("q", "quit", theme),
		}
	case PreviewMode:
		hints = []string{
			KeyHelp("←→", "select", theme),
			KeyHelp("d/x", "remove", theme),
			KeyHelp("Tab", "draft", theme),
			KeyHelp("s", "submit", theme),
			KeyHelp("q", "quit", theme),
		}
	case DraftMode:
		hints = []string{
			KeyHelp("↑↓", "navigate", theme),
			KeyHelp("Enter/e", "edit", theme),
			KeyHelp("u/r", "undo/redo", theme),
			KeyHelp("Tab", "files", theme),
			KeyHelp("s", "submit", theme),
			KeyHelp("q", "quit", theme),
		}
	case FieldEditMode:
		hints = []string{
			KeyHelp("Type", "edit", theme),
			KeyHelp("Enter", "save", theme),
			KeyHelp("Esc", "cancel", theme),
			KeyHelp("Ctrl+U", "clear", theme),
		}
	}

	return strings.Join(hints, separator)
}

func (a *App) renderHelp() string {
	return `╔══════════════════════════════════════════════════════════════╗
║                      phocaforme composer                     ║
╠══════════════════════════════════════════════════════════════╣
║ Images:                                                      ║
║   ↑/↓, k/j    Navigate                                       ║
║   PgUp/PgDn   Page up/down                                   ║
║   Enter       Open directory / add image                     ║
║   h           Toggle hidden files                            ║
║                                                              ║
║ Photos:                                                      ║
║   ←/→, h/l    Select photo                                   ║
║   d, x, Del   Remove selected photo                          ║
║                                                              ║
║ Listing:                                                     ║
║   ↑/↓, k/j    Navigate fields                                ║
║   Enter, e    Edit field                                     ║
║   u / r       Undo / redo                                    ║
║                                                              ║
║ Global:                                                      ║
║   Tab         Cycle panels                                   ║
║   s, Ctrl+S   Submit listing                                 ║
║   ?           Show/hide this help                            ║
║   q, Ctrl+C   Quit                                           ║
╚══════════════════════════════════════════════════════════════╝

Press esc to return...`
}
