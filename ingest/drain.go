package ingest

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Drain is a control loop for callers without a bubbletea program. It runs
// cmd and every command batched inside it concurrently, and applies the
// resulting messages to p on the calling goroutine as they arrive. It
// returns once every command has reported, or with ctx's error.
func Drain(ctx context.Context, p *Pipeline, cmd tea.Cmd) error {
	if cmd == nil {
		return nil
	}

	msgs := make(chan tea.Msg)
	pending := 0
	start := func(c tea.Cmd) {
		pending++
		go func() {
			msg := c()
			select {
			case msgs <- msg:
			case <-ctx.Done():
			}
		}()
	}

	start(cmd)
	for pending > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-msgs:
			pending--
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					if c != nil {
						start(c)
					}
				}
				continue
			}
			p.Update(msg)
		}
	}
	return nil
}
