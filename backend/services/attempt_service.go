package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"skillcred/backend/database"
	"skillcred/backend/events"
	"skillcred/backend/metrics"
	"skillcred/backend/models"
	"skillcred/backend/scoring"
	"skillcred/backend/utils"
)

// TestSource resolves the public definition of an active test.
type TestSource interface {
	GetTest(ctx context.Context, testID string) (*models.TestDetail, error)
}

type AttemptService struct {
	gw     *database.Gateway
	tests  TestSource
	badges BadgeIssuer
	events events.Publisher
	logger *log.Logger
	now    func() time.Time
}

func NewAttemptService(gw *database.Gateway, tests TestSource, badges BadgeIssuer, pub events.Publisher, logger *log.Logger) *AttemptService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &AttemptService{
		gw:     gw,
		tests:  tests,
		badges: badges,
		events: pub,
		logger: logger,
		now:    time.Now,
	}
}

type StartResult struct {
	Attempt   *models.Attempt         `json:"attempt"`
	Test      models.TestSummary      `json:"test"`
	Questions []models.PublicQuestion `json:"questions"`
	// Resumed is set when the caller already had an open attempt for the test.
	Resumed bool `json:"resumed"`
}

type GradingResult struct {
	Attempt         *models.Attempt          `json:"attempt"`
	Score           int                      `json:"score"`
	Passed          bool                     `json:"passed"`
	PassingScore    int                      `json:"passingScore"`
	TotalQuestions  int                      `json:"totalQuestions"`
	CorrectAnswers  int                      `json:"correctAnswers"`
	EarnedPoints    int                      `json:"earnedPoints"`
	TotalPoints     int                      `json:"totalPoints"`
	QuestionResults []scoring.QuestionResult `json:"questionResults"`
	Badge           *BadgeOutcome            `json:"badge,omitempty"`
}

type AttemptDetail struct {
	models.Attempt
	QuestionResults []scoring.QuestionResult `json:"questionResults,omitempty"`
	Badge           *models.BadgeView        `json:"badge,omitempty"`
}

// Start opens an attempt on an active test. A caller who already has an
// open attempt for the test gets that attempt back instead of a second one.
func (s *AttemptService) Start(ctx context.Context, userID, testID string) (*StartResult, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}
	detail, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	var attempt models.Attempt
	resumed := false
	err = s.gw.Do(database.WithUserID(ctx, userID), func(tx *gorm.DB) error {
		open, err := latestOpenAttempt(tx, userID, testID)
		if err != nil {
			return err
		}
		if open != nil {
			attempt, resumed = *open, true
			return nil
		}
		attempt = models.Attempt{
			UserID:    userID,
			TestID:    testID,
			StartedAt: s.now().UTC(),
			Answers:   datatypes.NewJSONType(models.Answers{}),
		}
		return tx.Create(&attempt).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, utils.ErrConflictingAttempt
	}
	if err != nil {
		return nil, utils.Persistence("start attempt", err)
	}

	metrics.AttemptsStarted.Inc()
	return &StartResult{
		Attempt:   &attempt,
		Test:      detail.TestSummary,
		Questions: detail.Questions,
		Resumed:   resumed,
	}, nil
}

func latestOpenAttempt(tx *gorm.DB, userID, testID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := tx.Where("user_id = ? AND test_id = ? AND completed_at IS NULL", userID, testID).
		Order("started_at DESC").
		Take(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Submit grades the caller's most recent open attempt on testID. Grading
// reads questions from the store, never from the catalog cache. The grade
// and any badge change commit together or not at all.
func (s *AttemptService) Submit(ctx context.Context, userID, testID string, answers models.Answers) (*GradingResult, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}
	if answers == nil {
		answers = models.Answers{}
	}

	var (
		test    models.Test
		attempt *models.Attempt
		result  scoring.Result
		outcome *BadgeOutcome
	)
	err := s.gw.Do(database.WithUserID(ctx, userID), func(tx *gorm.DB) error {
		err := tx.Preload("Questions", orderedQuestions).First(&test, "id = ?", testID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}

		attempt, err = latestOpenAttempt(tx, userID, testID)
		if err != nil {
			return err
		}
		if attempt == nil {
			return utils.ErrNoActiveAttempt
		}

		result = scoring.Grade(test.Questions, answers, test.PassingScore)
		completed := s.now().UTC()
		attempt.CompletedAt = &completed
		attempt.Score = &result.Score
		attempt.Passed = &result.Passed
		attempt.Answers = datatypes.NewJSONType(answers)

		// Guarded on completed_at so a concurrent submit grades only once.
		upd := tx.Model(&models.Attempt{}).
			Where("id = ? AND completed_at IS NULL", attempt.ID).
			Updates(map[string]interface{}{
				"completed_at": completed,
				"score":        result.Score,
				"passed":       result.Passed,
				"answers":      attempt.Answers,
			})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return utils.ErrNoActiveAttempt
		}

		if result.Passed {
			outcome, err = s.badges.IssueOrUpgrade(tx, userID, test.SkillID, models.TierForScore(result.Score), attempt.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, utils.Persistence("submit attempt", err)
	}

	s.afterGrading(ctx, &test, attempt, outcome)

	return &GradingResult{
		Attempt:         attempt,
		Score:           result.Score,
		Passed:          result.Passed,
		PassingScore:    test.PassingScore,
		TotalQuestions:  len(test.Questions),
		CorrectAnswers:  result.CorrectCount,
		EarnedPoints:    result.EarnedPoints,
		TotalPoints:     result.TotalPoints,
		QuestionResults: result.Questions,
		Badge:           outcome,
	}, nil
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}

// afterGrading runs once the submit transaction has committed. Publish
// failures are logged only.
func (s *AttemptService) afterGrading(ctx context.Context, test *models.Test, attempt *models.Attempt, outcome *BadgeOutcome) {
	metrics.AttemptsGraded.WithLabelValues(metrics.GradeResult(*attempt.Passed)).Inc()

	err := s.events.AttemptGraded(ctx, events.AttemptGraded{
		AttemptID:    attempt.ID,
		UserID:       attempt.UserID,
		TestID:       test.ID,
		SkillID:      test.SkillID,
		Score:        *attempt.Score,
		Passed:       *attempt.Passed,
		PassingScore: test.PassingScore,
		CompletedAt:  *attempt.CompletedAt,
	})
	if err != nil {
		s.logger.Printf("publish attempt %s graded: %v", attempt.ID, err)
	}

	if outcome == nil {
		return
	}
	metrics.BadgesAwarded.WithLabelValues(string(outcome.Action), string(outcome.Badge.Tier)).Inc()
	if outcome.Action == BadgeUnchanged {
		return
	}
	err = s.events.BadgeAwarded(ctx, events.BadgeAwarded{
		BadgeID:       outcome.Badge.ID,
		UserID:        outcome.Badge.UserID,
		SkillID:       outcome.Badge.SkillID,
		Tier:          string(outcome.Badge.Tier),
		PreviousTier:  string(outcome.PreviousTier),
		TestAttemptID: outcome.Badge.TestAttemptID,
		IssuedAt:      outcome.Badge.IssuedAt,
	})
	if err != nil {
		s.logger.Printf("publish badge %s %s: %v", outcome.Badge.ID, outcome.Action, err)
	}
}

// ListAttempts returns every attempt of the caller, newest first.
func (s *AttemptService) ListAttempts(ctx context.Context, userID string) ([]models.Attempt, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}
	var attempts []models.Attempt
	err := s.gw.Do(database.WithUserID(ctx, userID), func(tx *gorm.DB) error {
		return tx.Preload("Test.Skill").
			Where("user_id = ?", userID).
			Order("started_at DESC").Order("id").
			Find(&attempts).Error
	})
	if err != nil {
		return nil, utils.Persistence("list attempts", err)
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	return attempts, nil
}

// GetAttempt returns one of the caller's attempts. Attempts owned by anyone
// else are reported as utils.ErrNotFound. Graded attempts carry the
// per-question review and the badge they justify, if any.
func (s *AttemptService) GetAttempt(ctx context.Context, userID, attemptID string) (*AttemptDetail, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}

	var detail AttemptDetail
	err := s.gw.Do(database.WithUserID(ctx, userID), func(tx *gorm.DB) error {
		err := tx.Preload("Test.Skill").
			Where("id = ? AND user_id = ?", attemptID, userID).
			Take(&detail.Attempt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}
		if detail.State() != models.AttemptGraded {
			return nil
		}

		var questions []models.Question
		if err := orderedQuestions(tx.Where("test_id = ?", detail.TestID)).Find(&questions).Error; err != nil {
			return err
		}
		passing := 0
		if detail.Test != nil {
			passing = detail.Test.PassingScore
		}
		detail.QuestionResults = scoring.Grade(questions, detail.Answers.Data(), passing).Questions

		var badge models.Badge
		err = tx.Preload("Skill").
			Where("test_attempt_id = ? AND user_id = ?", detail.ID, userID).
			Take(&badge).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			view := models.NewBadgeView(&badge)
			detail.Badge = &view
		}
		return nil
	})
	if err != nil {
		return nil, utils.Persistence("get attempt", err)
	}
	return &detail, nil
}
