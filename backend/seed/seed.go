// Package seed loads the reference skill and test catalog.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillcred/backend/database"
	"skillcred/backend/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Skills []SkillSpec `yaml:"skills"`
	Tests  []TestSpec  `yaml:"tests"`
}

type SkillSpec struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type TestSpec struct {
	ID              string         `yaml:"id"`
	Skill           string         `yaml:"skill"`
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	Difficulty      string         `yaml:"difficulty"`
	DurationMinutes int            `yaml:"durationMinutes"`
	PassingScore    int            `yaml:"passingScore"`
	Questions       []QuestionSpec `yaml:"questions"`
}

type QuestionSpec struct {
	Text    string   `yaml:"text"`
	Type    string   `yaml:"type"`
	Options []string `yaml:"options"`
	Answer  string   `yaml:"answer"`
	Points  int      `yaml:"points"`
}

type Stats struct {
	Skills    int
	Tests     int
	Questions int
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	skills := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("skill %q: id and name are required", s.ID)
		}
		skills[s.ID] = true
	}

	seen := make(map[string]bool, len(c.Tests))
	for _, t := range c.Tests {
		switch {
		case t.ID == "":
			return fmt.Errorf("test %q: id is required", t.Title)
		case seen[t.ID]:
			return fmt.Errorf("test %s: duplicate id", t.ID)
		case !skills[t.Skill]:
			return fmt.Errorf("test %s: unknown skill %q", t.ID, t.Skill)
		case t.PassingScore < 0 || t.PassingScore > 100:
			return fmt.Errorf("test %s: passing score %d out of range", t.ID, t.PassingScore)
		}
		switch models.Difficulty(t.Difficulty) {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard, "":
		default:
			return fmt.Errorf("test %s: unknown difficulty %q", t.ID, t.Difficulty)
		}
		seen[t.ID] = true

		for i, q := range t.Questions {
			if !contains(q.Options, q.Answer) {
				return fmt.Errorf("test %s question %d: answer %q is not an option", t.ID, i+1, q.Answer)
			}
			if q.Points < 0 {
				return fmt.Errorf("test %s question %d: negative points", t.ID, i+1)
			}
		}
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// Apply upserts the catalog in one transaction. Tests are keyed by id and
// their question sets are replaced, so Apply can be re-run.
func Apply(ctx context.Context, gw *database.Gateway, c *Catalog) (Stats, error) {
	var stats Stats
	err := gw.Do(ctx, func(tx *gorm.DB) error {
		for _, s := range c.Skills {
			skill := models.Skill{ID: s.ID, Name: s.Name, Category: s.Category}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "category"}),
			}).Create(&skill).Error
			if err != nil {
				return fmt.Errorf("skill %s: %w", s.ID, err)
			}
			stats.Skills++
		}

		for _, t := range c.Tests {
			n, err := applyTest(tx, t)
			if err != nil {
				return fmt.Errorf("test %s: %w", t.ID, err)
			}
			stats.Tests++
			stats.Questions += n
		}
		return nil
	})
	return stats, err
}

func applyTest(tx *gorm.DB, t TestSpec) (int, error) {
	test := models.Test{
		ID:              t.ID,
		SkillID:         t.Skill,
		Title:           t.Title,
		Description:     t.Description,
		Difficulty:      models.Difficulty(t.Difficulty),
		DurationMinutes: t.DurationMinutes,
		PassingScore:    t.PassingScore,
		IsActive:        true,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"skill_id", "title", "description", "difficulty",
			"duration_minutes", "passing_score", "is_active", "updated_at",
		}),
	}).Omit(clause.Associations).Create(&test).Error
	if err != nil {
		return 0, err
	}

	if err := tx.Where("test_id = ?", t.ID).Delete(&models.Question{}).Error; err != nil {
		return 0, err
	}
	if len(t.Questions) == 0 {
		return 0, nil
	}

	questions := make([]models.Question, 0, len(t.Questions))
	for i, q := range t.Questions {
		qType := q.Type
		if qType == "" {
			qType = "MCQ"
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		questions = append(questions, models.Question{
			ID:            fmt.Sprintf("%s-q%d", t.ID, i+1),
			TestID:        t.ID,
			QuestionText:  q.Text,
			QuestionType:  qType,
			Options:       models.StringList(q.Options),
			CorrectAnswer: q.Answer,
			Points:        points,
			OrderIndex:    i + 1,
		})
	}
	if err := tx.Create(&questions).Error; err != nil {
		return 0, err
	}
	return len(questions), nil
}
