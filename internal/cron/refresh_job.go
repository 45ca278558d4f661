package cron

import (
	"context"
	"fmt"
)

type catalogLoader interface {
	Load(ctx context.Context) error
}

// CatalogRefreshJob reloads the menu cache from the sales backend.
type CatalogRefreshJob struct {
	catalog catalogLoader
}

// NewCatalogRefreshJob builds the refresh job.
func NewCatalogRefreshJob(catalog catalogLoader) (*CatalogRefreshJob, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &CatalogRefreshJob{catalog: catalog}, nil
}

// Name identifies the job in logs and metrics.
func (j *CatalogRefreshJob) Name() string { return "catalog_refresh" }

// Run performs one full catalog reload.
func (j *CatalogRefreshJob) Run(ctx context.Context) error {
	return j.catalog.Load(ctx)
}
