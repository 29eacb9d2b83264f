package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"phocaforme/ingest"
	"phocaforme/market"
	"phocaforme/model"
)

type stubClient struct {
	photos []ingest.Source
	err    error
}

func (s *stubClient) GetListing(ctx context.Context, id model.ID) (*model.Listing, error) {
	return nil, market.ErrNotFound
}

func (s *stubClient) CreateListing(ctx context.Context, draft model.Draft, photos []ingest.Source) (model.ID, error) {
	if s.err != nil {
		return "", s.err
	}
	s.photos = photos
	return "77", nil
}

func (s *stubClient) DeleteListing(ctx context.Context, id model.ID) error { return nil }
func (s *stubClient) BumpListing(ctx context.Context, id model.ID) error   { return nil }
func (s *stubClient) OpenChat(ctx context.Context, id model.ID) (model.ChatRoom, error) {
	return model.ChatRoom{}, nil
}

func newTestApp(t *testing.T, files ...string) (*App, *stubClient) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("img"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "album"), 0o755); err != nil {
		t.Fatal(err)
	}

	decoder := ingest.DecoderFunc(func(ctx context.Context, src ingest.Source) (*ingest.Preview, error) {
		return &ingest.Preview{MIME: "image/png", Width: 10, Height: 10}, nil
	})
	p := ingest.New(decoder)
	t.Cleanup(p.Close)

	client := &stubClient{}
	app := NewApp(dir, market.NewComposer(client, p))
	app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return app, client
}

func press(a *App, keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, last = a.Update(msg)
	}
	return last
}

// selectFile moves the browser cursor onto name.
func selectFile(t *testing.T, a *App, name string) {
	t.Helper()
	for i, e := range a.fileBrowser.GetEntries() {
		if e.Name == name {
			a.fileBrowser.selectedIndex = i
			return
		}
	}
	t.Fatalf("%s not listed", name)
}

func TestFileBrowser_ListsImagesAndDirs(t *testing.T) {
	app, _ := newTestApp(t, "b.png", "a.jpg", "notes.txt", ".hidden.png")

	var names []string
	for _, e := range app.fileBrowser.GetEntries() {
		names = append(names, e.Name)
	}
	got := strings.Join(names, ",")
	if got != "..,album,a.jpg,b.png" {
		t.Fatalf("entries = %s", got)
	}

	app.fileBrowser.ToggleHidden()
	if len(app.fileBrowser.GetEntries()) != 5 {
		t.Fatalf("expected hidden image listed, got %d entries", len(app.fileBrowser.GetEntries()))
	}
}

func TestApp_EnterAddsImageAndDecodes(t *testing.T) {
	app, _ := newTestApp(t, "01_minji.png")
	selectFile(t, app, "01_minji.png")

	cmd := press(app, "enter")
	p := app.composer.Pipeline()
	if p.Len() != 1 || p.Pending() != 1 {
		t.Fatalf("expected one pending entry, len=%d pending=%d", p.Len(), p.Pending())
	}
	if app.composer.Draft.Title != "minji" {
		t.Fatalf("title not derived from filename: %q", app.composer.Draft.Title)
	}
	if !strings.Contains(app.View(), "loading…") {
		t.Fatal("expected loading placeholder in view")
	}

	for _, m := range flatten(cmd) {
		if dm, ok := m.(ingest.DecodedMsg); ok {
			app.Update(dm)
		}
	}
	if p.Pending() != 0 {
		t.Fatal("expected preview applied")
	}
	if !strings.Contains(app.View(), "10x10") {
		t.Fatal("expected preview dimensions in view")
	}
}

func shortWait() <-chan time.Time {
	return time.After(300 * time.Millisecond)
}

// flatten runs c and expands nested batches. Commands that do not report
// promptly (status ticks) are skipped.
func flatten(c tea.Cmd) []tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- c() }()
	select {
	case m := <-done:
		if batch, ok := m.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, inner := range batch {
				if inner != nil {
					out = append(out, flatten(inner)...)
				}
			}
			return out
		}
		return []tea.Msg{m}
	case <-shortWait():
		return nil
	}
}

func TestApp_LateDecodeAfterRemoval(t *testing.T) {
	app, _ := newTestApp(t, "a.png", "b.png")
	p := app.composer.Pipeline()

	selectFile(t, app, "a.png")
	press(app, "enter")
	selectFile(t, app, "b.png")
	press(app, "enter")
	tokA := p.Entries()[0].Token
	tokB := p.Entries()[1].Token

	press(app, "tab") // photos
	app.selected = 0
	press(app, "d")
	if p.Len() != 1 || p.Entries()[0].Token != tokB {
		t.Fatal("expected a.png removed")
	}

	app.Update(ingest.DecodedMsg{Token: tokA, Preview: &ingest.Preview{Width: 1, Height: 1}})
	app.Update(ingest.DecodedMsg{Token: tokB, Preview: &ingest.Preview{Width: 2, Height: 2}})

	_, previews := p.Snapshot()
	if len(previews) != 1 || previews[0] == nil || previews[0].Width != 2 {
		t.Fatalf("late decode landed in the wrong slot: %+v", previews)
	}
}

func TestApp_FailedDecodeShowsNoPreview(t *testing.T) {
	app, _ := newTestApp(t, "a.png")
	selectFile(t, app, "a.png")
	press(app, "enter")
	tok := app.composer.Pipeline().Entries()[0].Token

	app.Update(ingest.DecodedMsg{Token: tok, Err: errors.New("corrupt")})
	if !strings.Contains(app.View(), "no preview") {
		t.Fatal("expected no preview marker")
	}
}

func TestApp_SubmitRequiresValidDraft(t *testing.T) {
	app, client := newTestApp(t)

	if cmd := press(app, "s"); cmd != nil {
		t.Fatal("expected no command for invalid draft")
	}
	if !strings.HasPrefix(app.statusMessage, IconCross) {
		t.Fatalf("expected error status, got %q", app.statusMessage)
	}
	if client.photos != nil {
		t.Fatal("nothing should be uploaded")
	}
}

func TestApp_SubmitUploads(t *testing.T) {
	app, client := newTestApp(t, "a.png")
	selectFile(t, app, "a.png")
	press(app, "enter")
	app.composer.Draft.CardType = "album"

	cmd := press(app, "s")
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	var result *SubmittedMsg
	for _, m := range flatten(cmd) {
		if sm, ok := m.(SubmittedMsg); ok {
			result = &sm
		}
	}
	if result == nil || result.Err != nil || result.ID != "77" {
		t.Fatalf("unexpected submit result %+v", result)
	}
	if len(client.photos) != 1 || client.photos[0].Name() != "a.png" {
		t.Fatalf("unexpected upload %+v", client.photos)
	}

	app.Update(*result)
	if app.SubmittedID() != "77" {
		t.Fatalf("submitted id = %q", app.SubmittedID())
	}
}

func TestApp_EditDraftField(t *testing.T) {
	app, _ := newTestApp(t)
	press(app, "tab", "tab") // draft
	if app.currentMode != DraftMode {
		t.Fatalf("mode = %v", app.currentMode)
	}

	press(app, "down", "down", "enter", "p", "o", "b", "enter")
	if app.composer.Draft.CardType != "pob" {
		t.Fatalf("card type = %q", app.composer.Draft.CardType)
	}

	press(app, "down", "enter", "x", "enter")
	if app.currentMode != FieldEditMode {
		t.Fatal("invalid group should keep the editor open")
	}
	press(app, "esc")
	if app.composer.Draft.GroupID != 0 {
		t.Fatalf("group = %d", app.composer.Draft.GroupID)
	}

	press(app, "u")
	if app.composer.Draft.CardType != "" {
		t.Fatal("undo should restore the empty card type")
	}
}

func TestApp_InitQueuesInitialFiles(t *testing.T) {
	app, _ := newTestApp(t)
	app.initialFiles = []string{"/tmp/x.png", "/tmp/y.png"}

	if cmd := app.Init(); cmd == nil {
		t.Fatal("expected decode command")
	}
	if app.composer.Pipeline().Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", app.composer.Pipeline().Len())
	}
	if app.Init() != nil {
		t.Fatal("initial files must only be queued once")
	}
}
