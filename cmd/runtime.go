package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"phocaforme/config"
	"phocaforme/ingest"
	"phocaforme/market"
	"phocaforme/recent"
	"phocaforme/storage"
)

// runtime bundles what the commands share: config, the history store and
// the marketplace client.
type runtime struct {
	cfg     *config.Config
	store   storage.Store
	history *recent.Cache
	client  market.Client
}

func openRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if !verbose {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(level)
		}
	}

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.StorageBackend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	client, err := market.NewClient(cfg.APIURL,
		market.WithTimeout(cfg.Timeout()),
		market.WithToken(cfg.AuthToken),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"backend": cfg.StorageBackend,
		"api":     cfg.APIURL,
	}).Debug("runtime ready")

	return &runtime{
		cfg:     cfg,
		store:   store,
		history: recent.New(store),
		client:  client,
	}, nil
}

func (r *runtime) pipeline() *ingest.Pipeline {
	decoder := ingest.NewImageDecoder(r.cfg.MaxImageSize, r.cfg.PreviewMaxDimension)
	return ingest.New(decoder, ingest.WithDecodeTimeout(r.cfg.DecodeTimeoutDuration()))
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		logrus.Warnf("failed to close storage: %v", err)
	}
}

func mustRuntime() *runtime {
	rt, err := openRuntime()
	if err != nil {
		logrus.Fatalf("failed to start: %v", err)
	}
	return rt
}
