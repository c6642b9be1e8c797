package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type Test struct {
	ID              string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	SkillID         string     `gorm:"type:varchar(64);not null;index" json:"skillId"`
	Skill           *Skill     `gorm:"constraint:OnDelete:CASCADE" json:"skill,omitempty"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `gorm:"type:varchar(16);not null;default:MEDIUM" json:"difficulty"`
	DurationMinutes int        `gorm:"not null;default:15" json:"durationMinutes"`
	PassingScore    int        `gorm:"not null;default:70" json:"passingScore"` // percentage
	IsActive        bool       `gorm:"not null;default:true;index" json:"isActive"`
	Questions       []Question `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Question carries the answer key and must never be serialized to callers
// directly; see PublicQuestion.
type Question struct {
	ID            string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	TestID        string     `gorm:"type:varchar(64);not null;index:idx_questions_test_order,priority:1" json:"testId"`
	QuestionText  string     `gorm:"not null" json:"questionText"`
	QuestionType  string     `gorm:"type:varchar(16);not null;default:MCQ" json:"questionType"`
	Options       StringList `json:"options"`
	CorrectAnswer string     `gorm:"not null" json:"-"`
	Points        int        `gorm:"not null;default:1" json:"points"`
	OrderIndex    int        `gorm:"not null;index:idx_questions_test_order,priority:2" json:"orderIndex"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// MaxScore is the sum of the question weights of a test.
func MaxScore(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}
