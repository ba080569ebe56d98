package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/config"
	"github.com/sells-group/flightdelay/internal/dataset"
	"github.com/sells-group/flightdelay/internal/model"
	"github.com/sells-group/flightdelay/internal/store"
)

func thresholds(c *config.Config) classify.Thresholds {
	return classify.Thresholds{
		OnTimeMaxMinutes:   c.Classify.OnTimeMaxMinutes,
		ModerateMaxMinutes: c.Classify.ModerateMaxMinutes,
	}
}

func aggregateOptions(c *config.Config) aggregate.Options {
	return aggregate.Options{
		Thresholds:    thresholds(c),
		LabelMinCount: c.Classify.LabelMinCount,
	}
}

func poolConfig(c *config.Config) *store.PoolConfig {
	return &store.PoolConfig{MaxConns: c.Store.MaxConns, MinConns: c.Store.MinConns}
}

func sourceConfig(c *config.Config) dataset.SourceConfig {
	return dataset.SourceConfig{
		Source:     c.Data.Source,
		Format:     c.Data.Format,
		CacheDir:   c.Data.CacheDir,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
		RateLimit:  c.Fetch.RateLimit,
		Pool:       poolConfig(c),
	}
}

// newDatasetCache builds the cache for the configured source without loading it.
func newDatasetCache(c *config.Config) (*dataset.Cache, error) {
	l, err := dataset.NewLoader(sourceConfig(c))
	if err != nil {
		return nil, eris.Wrap(err, "init dataset loader")
	}
	return dataset.NewCache(l), nil
}

// loadDataset reads the configured source once.
func loadDataset(ctx context.Context, c *config.Config) (*model.Dataset, error) {
	cache, err := newDatasetCache(c)
	if err != nil {
		return nil, err
	}
	ds, err := cache.Get(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load dataset")
	}
	return ds, nil
}
