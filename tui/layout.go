package tui

type Layout struct {
	WindowWidth  int
	WindowHeight int
	Breakpoints  LayoutBreakpoints
}

type LayoutBreakpoints struct {
	MinWidth  int
	MinHeight int
}

type AdaptiveLayout struct {
	LeftPanelWidth   int
	MiddlePanelWidth int
	RightPanelWidth  int
	ContentHeight    int
	DraftPanelHeight int
	// PreviewColumns is how many preview cards fit side by side.
	PreviewColumns int
}

const previewCardWidth = 24

func NewLayout() *Layout {
	return &Layout{
		Breakpoints: LayoutBreakpoints{
			MinWidth:  60,
			MinHeight: 20,
		},
	}
}

func (l *Layout) Update(width, height int) {
	l.WindowWidth = width
	l.WindowHeight = height
}

// Calculate splits the window into browser | draft | previews. Below 100
// columns the draft panel is stacked above the previews.
func (l *Layout) Calculate() AdaptiveLayout {
	leftPanelWidth := min(max(l.WindowWidth/3, 25), 45)
	contentHeight := l.WindowHeight - 3

	middlePanelWidth := 0
	if l.WindowWidth >= 100 {
		middlePanelWidth = min(40, l.WindowWidth/4)
	}

	rightPanelWidth := l.WindowWidth - leftPanelWidth - middlePanelWidth - 2
	if rightPanelWidth < 24 {
		middlePanelWidth = 0
		rightPanelWidth = l.WindowWidth - leftPanelWidth - 2
	}

	draftHeight := 0
	if middlePanelWidth == 0 {
		draftHeight = min(11, contentHeight/2)
	}

	return AdaptiveLayout{
		LeftPanelWidth:   leftPanelWidth,
		MiddlePanelWidth: middlePanelWidth,
		RightPanelWidth:  rightPanelWidth,
		ContentHeight:    contentHeight,
		DraftPanelHeight: draftHeight,
		PreviewColumns:   max((rightPanelWidth-4)/previewCardWidth, 1),
	}
}

func (l *Layout) IsMinimumSize() bool {
	return l.WindowWidth >= l.Breakpoints.MinWidth &&
		l.WindowHeight >= l.Breakpoints.MinHeight
}
