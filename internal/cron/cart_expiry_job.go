package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/metrics"
)

// staleCartExpirer flips abandoned carts to inactive.
type staleCartExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// CartExpiryJobParams configure the cart expiry sweep.
type CartExpiryJobParams struct {
	Logger  *logger.Logger
	Carts   staleCartExpirer
	Metrics *metrics.CronJobMetrics
}

// NewCartExpiryJob builds the job that retires carts past their TTL.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart expirer required")
	}
	return &cartExpiryJob{
		logg:    params.Logger,
		carts:   params.Carts,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type cartExpiryJob struct {
	logg    *logger.Logger
	carts   staleCartExpirer
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *cartExpiryJob) Name() string { return "cart-expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	swept, err := j.carts.ExpireStale(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire stale carts: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), int(swept))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": swept})
	j.logg.Info(logCtx, "cart expiry sweep complete")
	return nil
}
