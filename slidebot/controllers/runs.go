package controllers

import (
	"context"
	"errors"

	"slidebot/slidebot/sources/psql/models"
)

var ErrHistoryDisabled = errors.New("run history is not configured")

// RunLister reads recorded runs, newest first.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.Run, error)
}

type RunsController struct {
	runs RunLister
}

// NewRunsController accepts a nil lister when no database is configured.
func NewRunsController(runs RunLister) *RunsController {
	return &RunsController{runs: runs}
}

func (c *RunsController) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if c.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return c.runs.ListRecent(ctx, limit)
}
