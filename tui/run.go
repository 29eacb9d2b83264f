package tui

import (
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"phocaforme/config"
	"phocaforme/market"
)

// redirectLogging sends logrus to a file, or nowhere when logging is off,
// so the alt screen stays clean. restore puts the previous output back.
func redirectLogging(enabled bool) (restore func(), err error) {
	logger := logrus.StandardLogger()
	previous := logger.Out

	if !enabled {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(previous) }, nil
	}

	logDir := filepath.Join(os.TempDir(), "phocaforme")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(f)
	logrus.WithField("ts", time.Now().Format(time.RFC3339)).Info("tui session start")
	return func() {
		logger.SetOutput(previous)
		f.Close()
	}, nil
}

// Run opens the composer with files already queued and blocks until the
// user quits. The returned App carries the id of the listing if one was
// created.
func Run(cfg *config.Config, composer *market.Composer, files []string) (*App, error) {
	restore, err := redirectLogging(cfg.EnableLogging)
	if err != nil {
		return nil, err
	}
	defer restore()

	startDir := cfg.DefaultDirectory
	if startDir == "" || startDir == "." {
		if wd, err := os.Getwd(); err == nil {
			startDir = wd
		}
	}

	app := NewApp(startDir, composer)
	app.initialFiles = files
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return app, err
}

func (a *App) SubmittedID() string {
	return a.submittedID
}
