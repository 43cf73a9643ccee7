// slidebot/sources/psql/dao/dao.run.go
package dao

import (
	"context"

	"slidebot/slidebot/sources/psql/models"
	"slidebot/slidebot/utils/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type RunDAO struct {
	DB *gorm.DB
}

func NewRunDAO(db *gorm.DB) *RunDAO {
	return &RunDAO{DB: db}
}

func (dao *RunDAO) CreateRun(ctx context.Context, run *models.Run) error {
	return dao.DB.WithContext(ctx).Create(run).Error
}

// Record stores a pipeline outcome.
func (dao *RunDAO) Record(ctx context.Context, outcome types.RunOutcome) error {
	id, err := uuid.Parse(outcome.RunID)
	if err != nil {
		id = uuid.New()
	}
	run := &models.Run{
		ID:         id,
		ChannelID:  outcome.ChannelID,
		Link:       string(outcome.Link),
		State:      string(outcome.State),
		Reply:      outcome.Reply,
		HostedLink: outcome.HostedLink,
		Pages:      outcome.Pages,
	}
	if outcome.Err != nil {
		run.Error = outcome.Err.Error()
	}
	return dao.CreateRun(ctx, run)
}

func (dao *RunDAO) ListRecent(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var runs []models.Run
	err := dao.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
