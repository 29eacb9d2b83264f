package market

import (
	"context"
	"errors"
	"sync"
	"testing"

	"phocaforme/ingest"
	"phocaforme/model"
)

type fakeClient struct {
	mu       sync.Mutex
	listings map[model.ID]*model.Listing
	failWith error

	created []ingest.Source
	draft   model.Draft
	deleted []model.ID
	bumped  []model.ID
}

func (f *fakeClient) GetListing(ctx context.Context, id model.ID) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	l, ok := f.listings[id]
	if !ok {
		return nil, &StatusError{Method: "GET", Code: 404}
	}
	return l, nil
}

func (f *fakeClient) CreateListing(ctx context.Context, draft model.Draft, photos []ingest.Source) (model.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.draft = draft
	f.created = photos
	return "new", nil
}

func (f *fakeClient) DeleteListing(ctx context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) BumpListing(ctx context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.bumped = append(f.bumped, id)
	return nil
}

func (f *fakeClient) OpenChat(ctx context.Context, id model.ID) (model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return model.ChatRoom{}, f.failWith
	}
	return model.ChatRoom{ID: "room-" + id, BarterID: id}, nil
}

type fakeRecorder struct {
	recorded  []model.ViewedItem
	forgotten []model.ID
}

func (r *fakeRecorder) Record(item model.ViewedItem) { r.recorded = append(r.recorded, item) }
func (r *fakeRecorder) Forget(id model.ID)           { r.forgotten = append(r.forgotten, id) }

func TestViewer_RecordsOnSuccess(t *testing.T) {
	client := &fakeClient{listings: map[model.ID]*model.Listing{
		"1": {ID: "1", Title: "Minji", Photos: []string{"p.jpg"}, Bartered: true},
	}}
	rec := &fakeRecorder{}
	v := NewViewer(client, rec)

	listing, err := v.View(context.Background(), "1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if listing.Title != "Minji" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if len(rec.recorded) != 1 {
		t.Fatalf("expected one record, got %d", len(rec.recorded))
	}
	got := rec.recorded[0]
	if got.ID != "1" || got.Title != "Minji" || len(got.Images) != 1 || !got.IsResolved {
		t.Fatalf("unexpected viewed item %+v", got)
	}
}

func TestViewer_FailedFetchNotRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	v := NewViewer(&fakeClient{}, rec)

	if _, err := v.View(context.Background(), "404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(rec.recorded) != 0 {
		t.Fatalf("failed fetch must not be recorded: %+v", rec.recorded)
	}
}

func TestViewer_DeleteForgetsOnlyOnSuccess(t *testing.T) {
	client := &fakeClient{}
	rec := &fakeRecorder{}
	v := NewViewer(client, rec)

	if err := v.Delete(context.Background(), "3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(rec.forgotten) != 1 || rec.forgotten[0] != "3" {
		t.Fatalf("expected 3 forgotten, got %v", rec.forgotten)
	}

	client.failWith = errors.New("boom")
	if err := v.Delete(context.Background(), "4"); err == nil {
		t.Fatal("expected delete error")
	}
	if len(rec.forgotten) != 1 {
		t.Fatalf("failed delete must not forget: %v", rec.forgotten)
	}
}

func TestViewer_Bump(t *testing.T) {
	client := &fakeClient{}
	v := NewViewer(client, &fakeRecorder{})
	if err := v.Bump(context.Background(), "8"); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if len(client.bumped) != 1 || client.bumped[0] != "8" {
		t.Fatalf("unexpected bumps %v", client.bumped)
	}
}

func TestViewer_OpenChatLeavesHistoryAlone(t *testing.T) {
	rec := &fakeRecorder{}
	v := NewViewer(&fakeClient{}, rec)

	room, err := v.OpenChat(context.Background(), "8")
	if err != nil {
		t.Fatalf("OpenChat: %v", err)
	}
	if room.ID != "room-8" {
		t.Fatalf("room = %+v", room)
	}
	if len(rec.recorded) != 0 || len(rec.forgotten) != 0 {
		t.Fatal("opening a chat must not touch the history")
	}
}
