package market

import (
	"context"

	"github.com/sirupsen/logrus"

	"phocaforme/model"
	"phocaforme/recent"
)

// Viewer fetches listings and keeps the recently viewed history in step
// with what the user actually saw.
type Viewer struct {
	client  Client
	history recent.Recorder
}

func NewViewer(client Client, history recent.Recorder) *Viewer {
	return &Viewer{client: client, history: history}
}

// View records the listing only once the fetch succeeded.
func (v *Viewer) View(ctx context.Context, id model.ID) (*model.Listing, error) {
	listing, err := v.client.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	v.history.Record(listing.Viewed())
	return listing, nil
}

func (v *Viewer) Delete(ctx context.Context, id model.ID) error {
	if err := v.client.DeleteListing(ctx, id); err != nil {
		return err
	}
	v.history.Forget(id)
	logrus.WithField("id", id.String()).Debug("listing deleted")
	return nil
}

func (v *Viewer) Bump(ctx context.Context, id model.ID) error {
	return v.client.BumpListing(ctx, id)
}

func (v *Viewer) OpenChat(ctx context.Context, id model.ID) (model.ChatRoom, error) {
	return v.client.OpenChat(ctx, id)
}
