package ingest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source is a raw file handle. The pipeline never looks inside it; only the
// decoder and the uploader open it.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type FileSource struct {
	Path string
}

func (f FileSource) Name() string {
	return filepath.Base(f.Path)
}

func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// BytesSource is an in-memory file, e.g. a pasted image.
type BytesSource struct {
	Filename string
	Data     []byte
}

func (b BytesSource) Name() string {
	return b.Filename
}

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

func FileSources(paths ...string) []Source {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		out = append(out, FileSource{Path: p})
	}
	return out
}
