package cron

import (
	"context"
	"fmt"

	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/metrics"
)

// productRecounter refreshes cached per-category product counts.
type productRecounter interface {
	RecountProducts(ctx context.Context) (int, error)
}

// CategoryRecountJobParams configure the category recount sweep.
type CategoryRecountJobParams struct {
	Logger     *logger.Logger
	Categories productRecounter
	Metrics    *metrics.CronJobMetrics
}

// NewCategoryRecountJob builds the job that reconciles category product
// counters against live product rows.
func NewCategoryRecountJob(params CategoryRecountJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category recounter required")
	}
	return &categoryRecountJob{
		logg:       params.Logger,
		categories: params.Categories,
		metrics:    params.Metrics,
	}, nil
}

type categoryRecountJob struct {
	logg       *logger.Logger
	categories productRecounter
	metrics    *metrics.CronJobMetrics
}

func (j *categoryRecountJob) Name() string { return "category-recount" }

func (j *categoryRecountJob) Run(ctx context.Context) error {
	updated, err := j.categories.RecountProducts(ctx)
	if err != nil {
		return fmt.Errorf("recount category products: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), updated)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": updated})
	j.logg.Info(logCtx, "category recount complete")
	return nil
}
