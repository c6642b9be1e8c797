package catalog_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"skillcred/backend/cache"
	"skillcred/backend/catalog"
	"skillcred/backend/database/dbtest"
	"skillcred/backend/models"
	"skillcred/backend/utils"
)

func newCatalog(t *testing.T) (*catalog.Catalog, *cache.MemoryStore, *gorm.DB) {
	db := dbtest.Open(t)
	store := cache.NewMemoryStore()
	return catalog.New(dbtest.Gateway(db), store, log.New(io.Discard, "", 0), 0, 0), store, db
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, catalog.IsPlaceholder(0, ""))
	assert.True(t, catalog.IsPlaceholder(10, "Sample EASY question 1 for Python?"))
	assert.True(t, catalog.IsPlaceholder(3, "Sample HARD question 12 for SQL"))
	assert.False(t, catalog.IsPlaceholder(10, "What does len() return?"))
	assert.False(t, catalog.IsPlaceholder(10, "Sample size: how many rows does this return?"))
	assert.False(t, catalog.IsPlaceholder(10, "sample EASY question 1 for Python?"))
}

func TestListTestsHidesPlaceholders(t *testing.T) {
	c, _, db := newCatalog(t)
	skill := &models.Skill{ID: "python", Name: "Python", Category: "Programming"}

	dbtest.SeedTest(t, db, skill, "py-real", 70, 1, 1, 1)
	dbtest.SeedTest(t, db, skill, "py-empty", 70)

	stub := &models.Test{ID: "py-stub", SkillID: skill.ID, Title: "Stub", PassingScore: 70, IsActive: true}
	for i := 1; i <= 10; i++ {
		stub.Questions = append(stub.Questions, models.Question{
			QuestionText:  fmt.Sprintf("Sample EASY question %d for Python?", i),
			Options:       models.StringList{"a", "b"},
			CorrectAnswer: "a",
			Points:        1,
			OrderIndex:    i,
		})
	}
	require.NoError(t, db.Create(stub).Error)

	single := &models.Test{ID: "py-single", SkillID: skill.ID, Title: "Single", PassingScore: 70, IsActive: true,
		Questions: []models.Question{{
			QuestionText:  "Sample EASY question 1 for Python?",
			Options:       models.StringList{"a", "b"},
			CorrectAnswer: "a",
			Points:        1,
			OrderIndex:    1,
		}},
	}
	require.NoError(t, db.Create(single).Error)

	tests, err := c.ListTests(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, "py-real", tests[0].ID)
	assert.Equal(t, 3, tests[0].QuestionCount)
	require.NotNil(t, tests[0].Skill)
	assert.Equal(t, "Python", tests[0].Skill.Name)
}

func TestListTestsFiltersBySkill(t *testing.T) {
	c, _, db := newCatalog(t)

	dbtest.SeedTest(t, db, &models.Skill{ID: "js", Name: "JavaScript"}, "js-basics", 70, 1, 1)
	dbtest.SeedTest(t, db, &models.Skill{ID: "sql", Name: "SQL"}, "sql-basics", 70, 1, 1)

	all, err := c.ListTests(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	js, err := c.ListTests(context.Background(), "js")
	require.NoError(t, err)
	require.Len(t, js, 1)
	assert.Equal(t, "js-basics", js[0].ID)

	none, err := c.ListTests(context.Background(), "go")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTestsServedFromCacheUntilFlush(t *testing.T) {
	c, store, db := newCatalog(t)
	ctx := context.Background()

	dbtest.SeedTest(t, db, &models.Skill{ID: "js", Name: "JavaScript"}, "js-basics", 70, 1, 1)

	first, err := c.ListTests(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = store.Get(ctx, "catalog:tests")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Test{}).Where("id = ?", "js-basics").Update("title", "Renamed").Error)

	cached, err := c.ListTests(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Test js-basics", cached[0].Title)

	// Mutating the returned slice must not reach the cache.
	cached[0].Title = "mutated"
	again, err := c.ListTests(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Test js-basics", again[0].Title)

	require.NoError(t, c.Flush(ctx))
	fresh, err := c.ListTests(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh[0].Title)
}

func TestGetTestOmitsAnswerKey(t *testing.T) {
	c, store, db := newCatalog(t)
	ctx := context.Background()

	dbtest.SeedTest(t, db, &models.Skill{ID: "js", Name: "JavaScript"}, "js-basics", 70, 2, 1, 3)

	detail, err := c.GetTest(ctx, "js-basics")
	require.NoError(t, err)
	require.Len(t, detail.Questions, 3)
	for i, q := range detail.Questions {
		assert.Equal(t, i+1, q.OrderIndex)
	}
	assert.Equal(t, []string{"correct", "wrong", "other"}, detail.Questions[0].Options)

	body, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "correctAnswer")

	raw, err := store.Get(ctx, "catalog:test:js-basics")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correctAnswer")
	assert.NotContains(t, string(raw), "CorrectAnswer")
}

func TestGetTestNotFound(t *testing.T) {
	c, _, db := newCatalog(t)
	ctx := context.Background()

	_, err := c.GetTest(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	dbtest.SeedTest(t, db, &models.Skill{ID: "js", Name: "JavaScript"}, "js-old", 70, 1)
	require.NoError(t, db.Model(&models.Test{}).Where("id = ?", "js-old").Update("is_active", false).Error)

	_, err = c.GetTest(ctx, "js-old")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	tests, err := c.ListTests(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tests)
}
