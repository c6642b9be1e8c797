// Package catalog serves test listings and test definitions through a
// read-through TTL cache. Cached entries never include answer keys, and the
// cache is never authoritative: grading reads questions from the store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"skillcred/backend/cache"
	"skillcred/backend/database"
	"skillcred/backend/metrics"
	"skillcred/backend/models"
	"skillcred/backend/utils"
)

const (
	DefaultListTTL = 1800 * time.Second
	DefaultTestTTL = 3600 * time.Second

	keyPrefix = "catalog:"
)

type Catalog struct {
	gw      *database.Gateway
	store   cache.Store
	logger  *log.Logger
	listTTL time.Duration
	testTTL time.Duration
}

// New builds a catalog. Zero TTLs fall back to the defaults.
func New(gw *database.Gateway, store cache.Store, logger *log.Logger, listTTL, testTTL time.Duration) *Catalog {
	if listTTL <= 0 {
		listTTL = DefaultListTTL
	}
	if testTTL <= 0 {
		testTTL = DefaultTestTTL
	}
	return &Catalog{gw: gw, store: store, logger: logger, listTTL: listTTL, testTTL: testTTL}
}

func listKey(skillID string) string {
	if skillID == "" {
		return keyPrefix + "tests"
	}
	return keyPrefix + "tests:" + skillID
}

func testKey(testID string) string {
	return keyPrefix + "test:" + testID
}

// ListTests returns active, non-placeholder tests, newest first, optionally
// restricted to one skill.
func (c *Catalog) ListTests(ctx context.Context, skillID string) ([]models.TestSummary, error) {
	key := listKey(skillID)
	var cached []models.TestSummary
	if c.lookup(ctx, "tests", key, &cached) {
		return cached, nil
	}

	var summaries []models.TestSummary
	err := c.gw.Do(ctx, func(tx *gorm.DB) error {
		var err error
		summaries, err = loadSummaries(tx, skillID)
		return err
	})
	if err != nil {
		return nil, utils.Persistence("list tests", err)
	}

	c.fill(ctx, key, summaries, c.listTTL)
	return summaries, nil
}

type questionHead struct {
	TestID       string
	QuestionText string
	OrderIndex   int
}

func loadSummaries(tx *gorm.DB, skillID string) ([]models.TestSummary, error) {
	q := tx.Preload("Skill").Where("is_active = ?", true)
	if skillID != "" {
		q = q.Where("skill_id = ?", skillID)
	}
	var tests []models.Test
	if err := q.Order("created_at DESC").Order("id").Find(&tests).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.TestSummary, 0, len(tests))
	if len(tests) == 0 {
		return summaries, nil
	}

	ids := make([]string, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
	}
	var heads []questionHead
	err := tx.Model(&models.Question{}).
		Select("test_id, question_text, order_index").
		Where("test_id IN ?", ids).
		Order("test_id").Order("order_index ASC").
		Scan(&heads).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tests))
	first := make(map[string]string, len(tests))
	for _, h := range heads {
		if counts[h.TestID] == 0 {
			first[h.TestID] = h.QuestionText
		}
		counts[h.TestID]++
	}

	for i := range tests {
		t := &tests[i]
		if IsPlaceholder(counts[t.ID], first[t.ID]) {
			continue
		}
		summaries = append(summaries, models.NewTestSummary(t, counts[t.ID]))
	}
	return summaries, nil
}

// GetTest returns a test with its ordered questions and no answer key.
// Unknown and inactive tests are reported as utils.ErrNotFound.
func (c *Catalog) GetTest(ctx context.Context, testID string) (*models.TestDetail, error) {
	key := testKey(testID)
	var detail *models.TestDetail
	if !c.lookup(ctx, "test", key, &detail) || detail == nil {
		err := c.gw.Do(ctx, func(tx *gorm.DB) error {
			var test models.Test
			err := tx.Preload("Skill").
				Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
				First(&test, "id = ?", testID).Error
			if err != nil {
				return err
			}
			detail = models.NewTestDetail(&test)
			return nil
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		if err != nil {
			return nil, utils.Persistence("get test", err)
		}
		c.fill(ctx, key, detail, c.testTTL)
	}

	if !detail.IsActive {
		return nil, utils.ErrNotFound
	}
	return detail, nil
}

// Flush drops every catalog entry. Writes to tests and questions are not
// otherwise reflected until the TTL expires.
func (c *Catalog) Flush(ctx context.Context) error {
	return c.store.DelPattern(ctx, keyPrefix+"*")
}

// lookup decodes a cached entry into dst. Cache failures are logged and
// treated as a miss.
func (c *Catalog) lookup(ctx context.Context, kind, key string, dst interface{}) bool {
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		metrics.CatalogCache.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err == nil {
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		c.logger.Printf("catalog cache read %s: %v", key, err)
		metrics.CatalogCache.WithLabelValues(kind, "error").Inc()
		return false
	}
	metrics.CatalogCache.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *Catalog) fill(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err == nil {
		err = c.store.Set(ctx, key, data, ttl)
	}
	if err != nil {
		c.logger.Printf("catalog cache write %s: %v", key, err)
	}
}
