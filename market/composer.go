package market

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"phocaforme/ingest"
	"phocaforme/model"
)

var (
	ErrNoTitle    = errors.New("title is required")
	ErrNoPhotos   = errors.New("at least one photo is required")
	ErrNoCardType = errors.New("card type is required")
)

// Composer pairs a draft with the pipeline holding its photos.
type Composer struct {
	Draft    model.Draft
	client   Client
	pipeline *ingest.Pipeline
}

func NewComposer(client Client, pipeline *ingest.Pipeline) *Composer {
	return &Composer{client: client, pipeline: pipeline}
}

func (c *Composer) Pipeline() *ingest.Pipeline {
	return c.pipeline
}

func (c *Composer) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Draft.Title) == "" {
		errs = append(errs, ErrNoTitle)
	}
	if c.pipeline.Len() == 0 {
		errs = append(errs, ErrNoPhotos)
	}
	if strings.TrimSpace(c.Draft.CardType) == "" {
		errs = append(errs, ErrNoCardType)
	}
	return errors.Join(errs...)
}

// Submission is a validated draft with its photos frozen in pipeline
// order. It no longer touches the pipeline, so it may be sent from any
// goroutine.
type Submission struct {
	Draft  model.Draft
	Photos []ingest.Source
	client Client
}

// Prepare validates the draft and snapshots the photos. It must run on the
// loop that owns the pipeline. Photos whose preview is still loading are
// included all the same.
func (c *Composer) Prepare() (*Submission, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if pending := c.pipeline.Pending(); pending > 0 {
		logrus.WithField("pending", pending).Debug("submitting before every preview finished")
	}
	draft := c.Draft
	draft.OwnMembers = slices.Clone(draft.OwnMembers)
	draft.TargetMembers = slices.Clone(draft.TargetMembers)
	return &Submission{Draft: draft, Photos: c.pipeline.Sources(), client: c.client}, nil
}

func (s *Submission) Send(ctx context.Context) (model.ID, error) {
	id, err := s.client.CreateListing(ctx, s.Draft, s.Photos)
	if err != nil {
		return "", fmt.Errorf("failed to create listing: %w", err)
	}
	return id, nil
}

func (c *Composer) Submit(ctx context.Context) (model.ID, error) {
	sub, err := c.Prepare()
	if err != nil {
		return "", err
	}
	return sub.Send(ctx)
}
