// Package ingest turns picked image files into previews.
//
// Files are decoded concurrently, but every preview lands in the slot its
// file was given when it was enqueued. Decodes report back as bubbletea
// messages and are matched to their entry by token, so a decode that
// finishes after its entry was removed is dropped instead of filling some
// other slot.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Token identifies an entry for its whole lifetime. Tokens are never reused.
type Token uint64

type Preview struct {
	DataURI string
	MIME    string
	Width   int
	Height  int
	// Bytes is the size of the original file.
	Bytes int
}

type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

type Entry struct {
	Token   Token
	Source  Source
	Preview *Preview
	Err     error
}

func (e Entry) Status() Status {
	switch {
	case e.Preview != nil:
		return StatusReady
	case e.Err != nil:
		return StatusFailed
	default:
		return StatusPending
	}
}

// DecodedMsg reports the outcome of one decode.
type DecodedMsg struct {
	Token   Token
	Preview *Preview
	Err     error
}

type Decoder interface {
	Decode(ctx context.Context, src Source) (*Preview, error)
}

type DecoderFunc func(ctx context.Context, src Source) (*Preview, error)

func (f DecoderFunc) Decode(ctx context.Context, src Source) (*Preview, error) {
	return f(ctx, src)
}

var errNoPreview = errors.New("decoder returned no preview")

type Option func(*Pipeline)

// WithDecodeTimeout bounds each decode. Zero means no limit.
func WithDecodeTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// Pipeline holds the picked files and their previews, index aligned.
//
// A Pipeline belongs to a single control loop (a bubbletea model or Drain).
// Enqueue, Update, RemoveAt and Snapshot must all be called from that loop;
// the decode commands it hands out may run anywhere.
type Pipeline struct {
	decoder Decoder
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc

	entries []Entry
	next    Token
	log     logrus.FieldLogger
}

func New(decoder Decoder, opts ...Option) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		decoder: decoder,
		ctx:     ctx,
		cancel:  cancel,
		log:     logrus.WithField("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enqueue appends srcs after the current entries, in order, and returns the
// command that decodes them. Each decode reports a DecodedMsg.
func (p *Pipeline) Enqueue(srcs ...Source) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(srcs))
	for _, src := range srcs {
		if src == nil {
			continue
		}
		p.next++
		tok := p.next
		p.entries = append(p.entries, Entry{Token: tok, Source: src})
		cmds = append(cmds, p.decodeCmd(tok, src))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (p *Pipeline) decodeCmd(tok Token, src Source) tea.Cmd {
	parent, decoder, timeout := p.ctx, p.decoder, p.timeout

	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}

		result := make(chan DecodedMsg, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					result <- DecodedMsg{Token: tok, Err: fmt.Errorf("decode panicked: %v", r)}
				}
			}()
			preview, err := decoder.Decode(ctx, src)
			result <- DecodedMsg{Token: tok, Preview: preview, Err: err}
		}()

		select {
		case msg := <-result:
			return msg
		case <-ctx.Done():
			return DecodedMsg{Token: tok, Err: fmt.Errorf("decode %s: %w", src.Name(), ctx.Err())}
		}
	}
}

// Update applies msg if it is a DecodedMsg and reports whether an entry
// changed.
func (p *Pipeline) Update(msg tea.Msg) bool {
	if m, ok := msg.(DecodedMsg); ok {
		return p.Apply(m)
	}
	return false
}

// Apply stores a decode result on the entry holding its token. Results for
// removed entries and repeated results for settled entries are dropped.
func (p *Pipeline) Apply(msg DecodedMsg) bool {
	i := p.Index(msg.Token)
	if i < 0 {
		p.log.WithField("token", msg.Token).Debug("dropping decode for removed entry")
		return false
	}
	e := &p.entries[i]
	if e.Status() != StatusPending {
		return false
	}

	switch {
	case msg.Err != nil:
		e.Err = msg.Err
	case msg.Preview == nil:
		e.Err = errNoPreview
	default:
		cp := *msg.Preview
		e.Preview = &cp
		return true
	}
	p.log.WithError(e.Err).WithField("file", e.Source.Name()).Warn("no preview available")
	return true
}

// RemoveAt drops the file and preview at index i. Out of range is a no-op.
func (p *Pipeline) RemoveAt(i int) bool {
	if i < 0 || i >= len(p.entries) {
		return false
	}
	p.entries = slices.Delete(p.entries, i, i+1)
	return true
}

// Index returns the current position of tok, or -1.
func (p *Pipeline) Index(tok Token) int {
	for i := range p.entries {
		if p.entries[i].Token == tok {
			return i
		}
	}
	return -1
}

// Snapshot returns the files and previews, index aligned. A nil preview is
// still loading or failed to decode.
func (p *Pipeline) Snapshot() ([]Source, []*Preview) {
	srcs := make([]Source, len(p.entries))
	previews := make([]*Preview, len(p.entries))
	for i, e := range p.entries {
		srcs[i] = e.Source
		if e.Preview != nil {
			cp := *e.Preview
			previews[i] = &cp
		}
	}
	return srcs, previews
}

func (p *Pipeline) Entries() []Entry {
	return slices.Clone(p.entries)
}

func (p *Pipeline) Sources() []Source {
	srcs, _ := p.Snapshot()
	return srcs
}

func (p *Pipeline) Len() int {
	return len(p.entries)
}

// Pending counts entries still waiting for their decode.
func (p *Pipeline) Pending() int {
	n := 0
	for _, e := range p.entries {
		if e.Status() == StatusPending {
			n++
		}
	}
	return n
}

// Close cancels decodes still in flight.
func (p *Pipeline) Close() {
	p.cancel()
}
