package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/oakmart/storefront-backend/pkg/logger"
)

type fakeRecounter struct {
	updated int
	err     error
	calls   int
}

func (f *fakeRecounter) RecountProducts(context.Context) (int, error) {
	f.calls++
	return f.updated, f.err
}

func TestCategoryRecountJobRuns(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	recounter := &fakeRecounter{updated: 2}
	job, err := NewCategoryRecountJob(CategoryRecountJobParams{Logger: logg, Categories: recounter})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if recounter.calls != 1 {
		t.Fatalf("expected one recount, got %d", recounter.calls)
	}
}

func TestCategoryRecountJobPropagatesError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	recounter := &fakeRecounter{err: errors.New("db down")}
	job, err := NewCategoryRecountJob(CategoryRecountJobParams{Logger: logg, Categories: recounter})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected recount error to surface")
	}
}
