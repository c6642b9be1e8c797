package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptState string

const (
	AttemptOpen   AttemptState = "OPEN"
	AttemptGraded AttemptState = "GRADED"
)

// Answers maps question id to the submitted option value.
type Answers map[string]string

// Attempt is open while CompletedAt is nil. The partial unique index allows
// at most one open attempt per (user, test).
type Attempt struct {
	ID          string                      `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID      string                      `gorm:"type:varchar(128);not null;index;index:ux_attempts_open,unique,where:completed_at IS NULL" json:"userId"`
	TestID      string                      `gorm:"type:varchar(64);not null;index;index:ux_attempts_open,unique,where:completed_at IS NULL" json:"testId"`
	Test        *Test                       `gorm:"constraint:OnDelete:RESTRICT" json:"test,omitempty"`
	StartedAt   time.Time                   `gorm:"not null;index" json:"startedAt"`
	CompletedAt *time.Time                  `json:"completedAt"`
	Answers     datatypes.JSONType[Answers] `json:"answers"`
	Score       *int                        `json:"score"`
	Passed      *bool                       `json:"passed"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Attempt) State() AttemptState {
	if a.CompletedAt == nil {
		return AttemptOpen
	}
	return AttemptGraded
}
