// slidebot/sources/psql/models/run.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Run is the recorded outcome of one pipeline run.
type Run struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChannelID  string    `json:"channel_id" gorm:"type:varchar(64);index"`
	Link       string    `json:"link" gorm:"type:text;not null"`
	State      string    `json:"state" gorm:"type:varchar(32);not null"`
	Reply      string    `json:"reply" gorm:"type:text"`
	HostedLink string    `json:"hosted_link" gorm:"type:text"`
	Pages      int       `json:"pages"`
	Error      string    `json:"error" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Run) TableName() string {
	return "runs"
}
