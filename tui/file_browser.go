package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"phocaforme/utils"
)

type FileBrowser struct {
	currentDir    string
	entries       []FileEntry
	selectedIndex int
	showHidden    bool
}

type FileEntry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	IsImage bool
}

func NewFileBrowser(startDir string) *FileBrowser {
	absDir, err := filepath.Abs(startDir)
	if err != nil || absDir == "" {
		absDir = startDir
	}
	absDir = filepath.Clean(absDir)

	fb := &FileBrowser{
		currentDir: absDir,
		entries:    make([]FileEntry, 0),
	}
	fb.LoadDirectory()
	return fb
}

// LoadDirectory lists subdirectories and image files of the current dir.
func (fb *FileBrowser) LoadDirectory() error {
	items, err := os.ReadDir(fb.currentDir)
	if err != nil {
		return err
	}

	fb.entries = make([]FileEntry, 0)

	parentDir := filepath.Dir(fb.currentDir)
	if parentDir != fb.currentDir {
		fb.entries = append(fb.entries, FileEntry{
			Name:  "..",
			Path:  parentDir,
			IsDir: true,
		})
	}

	for _, item := range items {
		if !fb.showHidden && strings.HasPrefix(item.Name(), ".") {
			continue
		}

		info, err := item.Info()
		if err != nil {
			continue
		}

		entry := FileEntry{
			Name:    item.Name(),
			Path:    filepath.Join(fb.currentDir, item.Name()),
			IsDir:   item.IsDir(),
			Size:    info.Size(),
			IsImage: !item.IsDir() && utils.IsImageName(item.Name()),
		}

		if entry.IsDir || entry.IsImage {
			fb.entries = append(fb.entries, entry)
		}
	}

	sort.SliceStable(fb.entries, func(i, j int) bool {
		if fb.entries[i].Name == ".." || fb.entries[j].Name == ".." {
			return fb.entries[i].Name == ".."
		}
		if fb.entries[i].IsDir != fb.entries[j].IsDir {
			return fb.entries[i].IsDir
		}
		return strings.ToLower(fb.entries[i].Name) < strings.ToLower(fb.entries[j].Name)
	})

	if fb.selectedIndex >= len(fb.entries) {
		fb.selectedIndex = max(len(fb.entries)-1, 0)
	}
	return nil
}

// Navigate enters the selected directory. It is a no-op on files.
func (fb *FileBrowser) Navigate() error {
	if len(fb.entries) == 0 {
		return nil
	}
	selected := fb.entries[fb.selectedIndex]
	if !selected.IsDir {
		return nil
	}
	previous := fb.currentDir
	fb.currentDir = selected.Path
	fb.selectedIndex = 0
	if err := fb.LoadDirectory(); err != nil {
		fb.currentDir = previous
		fb.LoadDirectory()
		return err
	}
	return nil
}

// GetSelectedFile returns the highlighted image, or nil for a directory.
func (fb *FileBrowser) GetSelectedFile() *FileEntry {
	if fb.selectedIndex >= len(fb.entries) || len(fb.entries) == 0 {
		return nil
	}

	selected := &fb.entries[fb.selectedIndex]
	if selected.IsImage {
		return selected
	}

	return nil
}

func (fb *FileBrowser) MoveUp() {
	if fb.selectedIndex > 0 {
		fb.selectedIndex--
	}
}

func (fb *FileBrowser) MoveDown() {
	if fb.selectedIndex < len(fb.entries)-1 {
		fb.selectedIndex++
	}
}

func (fb *FileBrowser) PageUp(pageSize int) {
	fb.selectedIndex -= pageSize
	if fb.selectedIndex < 0 {
		fb.selectedIndex = 0
	}
}

func (fb *FileBrowser) PageDown(pageSize int) {
	fb.selectedIndex += pageSize
	if fb.selectedIndex >= len(fb.entries) {
		fb.selectedIndex = len(fb.entries) - 1
	}
	if fb.selectedIndex < 0 {
		fb.selectedIndex = 0
	}
}

func (fb *FileBrowser) GetCurrentDir() string {
	return fb.currentDir
}

func (fb *FileBrowser) GetEntries() []FileEntry {
	return fb.entries
}

func (fb *FileBrowser) GetSelectedIndex() int {
	return fb.selectedIndex
}

func (fb *FileBrowser) ToggleHidden() {
	fb.showHidden = !fb.showHidden
	fb.LoadDirectory()
}

func (fb *FileBrowser) ShowsHidden() bool {
	return fb.showHidden
}
