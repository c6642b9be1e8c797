package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillcred/backend/database"
	"skillcred/backend/models"
	"skillcred/backend/utils"
)

type BadgeAction string

const (
	BadgeIssued    BadgeAction = "issued"
	BadgeUpgraded  BadgeAction = "upgraded"
	BadgeUnchanged BadgeAction = "unchanged"
)

type BadgeOutcome struct {
	Badge        *models.Badge    `json:"badge"`
	Action       BadgeAction      `json:"action"`
	PreviousTier models.BadgeTier `json:"previousBadgeType,omitempty"`
}

// BadgeIssuer records a passing attempt in the badge ledger. It runs inside
// the caller's transaction so the grade and the credential commit together.
type BadgeIssuer interface {
	IssueOrUpgrade(tx *gorm.DB, userID, skillID string, candidate models.BadgeTier, attemptID string) (*BadgeOutcome, error)
}

type BadgeService struct {
	gw  *database.Gateway
	now func() time.Time
}

func NewBadgeService(gw *database.Gateway) *BadgeService {
	return &BadgeService{gw: gw, now: time.Now}
}

// IssueOrUpgrade keeps one badge per (user, skill) whose tier only ever
// rises. A candidate that does not outrank the held tier leaves the badge
// untouched; that is not an error.
func (s *BadgeService) IssueOrUpgrade(tx *gorm.DB, userID, skillID string, candidate models.BadgeTier, attemptID string) (*BadgeOutcome, error) {
	if !candidate.Valid() || candidate == models.TierVerified {
		return nil, fmt.Errorf("cannot award badge tier %q", candidate)
	}

	existing, err := lockBadge(tx, userID, skillID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if existing == nil {
		badge := &models.Badge{
			UserID:        userID,
			SkillID:       skillID,
			Tier:          candidate,
			TestAttemptID: attemptID,
			IssuedAt:      now,
		}
		// A concurrent submit may have issued the badge since the read.
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(badge)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return &BadgeOutcome{Badge: badge, Action: BadgeIssued}, nil
		}
		if existing, err = lockBadge(tx, userID, skillID); err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("badge for skill %s vanished during issue", skillID)
		}
	}

	if !candidate.Outranks(existing.Tier) {
		return &BadgeOutcome{Badge: existing, Action: BadgeUnchanged}, nil
	}

	previous := existing.Tier
	err = tx.Model(existing).Updates(map[string]interface{}{
		"badge_type":      candidate,
		"test_attempt_id": attemptID,
		"issued_at":       now,
	}).Error
	if err != nil {
		return nil, err
	}
	existing.Tier = candidate
	existing.TestAttemptID = attemptID
	existing.IssuedAt = now
	return &BadgeOutcome{Badge: existing, Action: BadgeUpgraded, PreviousTier: previous}, nil
}

// lockBadge reads the (user, skill) badge FOR UPDATE. It returns nil when
// none exists.
func lockBadge(tx *gorm.DB, userID, skillID string) (*models.Badge, error) {
	var badge models.Badge
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		Take(&badge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// ListBadges returns the caller's badges, most recently issued first.
func (s *BadgeService) ListBadges(ctx context.Context, userID string) ([]models.BadgeView, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}

	var badges []models.Badge
	err := s.gw.Do(database.WithUserID(ctx, userID), func(tx *gorm.DB) error {
		return tx.Preload("Skill").Preload("TestAttempt").
			Where("user_id = ?", userID).
			Order("issued_at DESC").Order("id").
			Find(&badges).Error
	})
	if err != nil {
		return nil, utils.Persistence("list badges", err)
	}

	views := make([]models.BadgeView, 0, len(badges))
	for i := range badges {
		views = append(views, models.NewBadgeView(&badges[i]))
	}
	return views, nil
}
