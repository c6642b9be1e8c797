// Package dbtest opens throwaway SQLite stores with the engine's schema for
// package tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skillcred/backend/database"
	"skillcred/backend/models"
)

// Open returns a migrated in-memory store. The pool holds one connection so
// the whole test shares a single database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NoopBinder stands in for set_config, which SQLite does not have.
func NoopBinder(tx *gorm.DB, userID string) error { return nil }

// Gateway wraps db with NoopBinder.
func Gateway(db *gorm.DB) *database.Gateway {
	return database.NewGateway(db, database.WithBinder(NoopBinder))
}

// SeedTest inserts skill (if new) and an active test whose questions have
// the given point weights. Question i has id "<testID>-q<i>" and correct
// answer "correct".
func SeedTest(t *testing.T, db *gorm.DB, skill *models.Skill, testID string, passingScore int, points ...int) *models.Test {
	t.Helper()
	if skill != nil {
		require.NoError(t, db.FirstOrCreate(skill, models.Skill{ID: skill.ID}).Error)
	}

	test := &models.Test{
		ID:              testID,
		SkillID:         skill.ID,
		Title:           "Test " + testID,
		Difficulty:      models.DifficultyMedium,
		DurationMinutes: 15,
		PassingScore:    passingScore,
		IsActive:        true,
	}
	for i, p := range points {
		test.Questions = append(test.Questions, models.Question{
			ID:            fmt.Sprintf("%s-q%d", testID, i+1),
			QuestionText:  fmt.Sprintf("Question %d of %s?", i+1, testID),
			QuestionType:  "MCQ",
			Options:       models.StringList{"correct", "wrong", "other"},
			CorrectAnswer: "correct",
			Points:        p,
			OrderIndex:    i + 1,
		})
	}
	require.NoError(t, db.Create(test).Error)
	return test
}

// RaceOpenAttempt makes the next attempt insert lose a race: right before
// gorm writes it, a second open attempt for the same user and test is
// inserted on the same transaction, as a concurrent start would have done.
func RaceOpenAttempt(t *testing.T, db *gorm.DB) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("dbtest:race_open_attempt", func(tx *gorm.DB) {
		attempt, ok := tx.Statement.Dest.(*models.Attempt)
		if fired || !ok {
			return
		}
		fired = true
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO attempts (id, user_id, test_id, started_at) VALUES (?, ?, ?, ?)",
			uuid.NewString(), attempt.UserID, attempt.TestID, time.Now().UTC())
		if err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
}
