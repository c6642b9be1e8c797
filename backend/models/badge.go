package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeTier string

const (
	TierBeginner     BadgeTier = "BEGINNER"
	TierIntermediate BadgeTier = "INTERMEDIATE"
	TierAdvanced     BadgeTier = "ADVANCED"
	TierExpert       BadgeTier = "EXPERT"
	// TierVerified is a fallback state outside the ordering. It ranks below
	// every earned tier and is never the target of an upgrade.
	TierVerified BadgeTier = "VERIFIED"
)

var tierRank = map[BadgeTier]int{
	TierVerified:     0,
	TierBeginner:     1,
	TierIntermediate: 2,
	TierAdvanced:     3,
	TierExpert:       4,
}

// Rank returns the tier's position in the upgrade order. Unknown values rank
// with VERIFIED.
func (t BadgeTier) Rank() int {
	return tierRank[t]
}

// Outranks reports whether t is strictly higher than other.
func (t BadgeTier) Outranks(other BadgeTier) bool {
	return t.Rank() > other.Rank()
}

func (t BadgeTier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// TierForScore derives the tier a passing score justifies.
func TierForScore(score int) BadgeTier {
	switch {
	case score >= 95:
		return TierExpert
	case score >= 85:
		return TierAdvanced
	case score >= 75:
		return TierIntermediate
	default:
		return TierBeginner
	}
}

type Badge struct {
	ID            string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_badges_user_skill" json:"userId"`
	SkillID       string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_badges_user_skill" json:"skillId"`
	Skill         *Skill    `gorm:"constraint:OnDelete:CASCADE" json:"skill,omitempty"`
	Tier          BadgeTier `gorm:"column:badge_type;type:varchar(16);not null" json:"badgeType"`
	TestAttemptID string    `gorm:"type:varchar(64);not null;index" json:"testAttemptId"`
	TestAttempt   *Attempt  `gorm:"foreignKey:TestAttemptID" json:"testAttempt,omitempty"`
	IssuedAt      time.Time `gorm:"not null" json:"issuedAt"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
