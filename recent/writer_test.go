package recent

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"phocaforme/model"
	"phocaforme/storage"
)

func TestWriter_ConcurrentRecordsAreSerialized(t *testing.T) {
	c := New(storage.NewMemoryStore())
	w := NewWriter(c, 4)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w.Record(item(fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got := c.Load()
	if len(got) != 3 {
		t.Fatalf("lost update: expected 3 entries, got %v", ids(got))
	}
}

func TestWriter_PreservesArrivalOrder(t *testing.T) {
	c := New(storage.NewMemoryStore())
	w := NewWriter(c, 0)

	w.Record(item("1"))
	w.Record(item("2"))
	w.Forget("1")
	w.Record(item("3"))
	w.Record(item("2"))
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := ids(c.Load())
	want := []string{"3", "2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestWriter_UseAfterClose(t *testing.T) {
	c := New(storage.NewMemoryStore())
	w := NewWriter(c, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	w.Record(model.ViewedItem{ID: "late"})
	w.Forget("late")
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
	if got := c.Load(); len(got) != 0 {
		t.Fatalf("record after close was applied: %v", ids(got))
	}
}
