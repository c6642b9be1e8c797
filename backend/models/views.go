package models

import "time"

// View types returned to callers. None of them carries an answer key.

type SkillRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type TestSummary struct {
	ID              string     `json:"id"`
	SkillID         string     `json:"skillId"`
	Skill           *SkillRef  `json:"skill,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `json:"difficulty"`
	DurationMinutes int        `json:"durationMinutes"`
	PassingScore    int        `json:"passingScore"`
	QuestionCount   int        `json:"questionsCount"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type PublicQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
	OrderIndex   int      `json:"orderIndex"`
}

type TestDetail struct {
	TestSummary
	IsActive  bool             `json:"isActive"`
	Questions []PublicQuestion `json:"questions"`
}

func NewSkillRef(s *Skill) *SkillRef {
	if s == nil {
		return nil
	}
	return &SkillRef{ID: s.ID, Name: s.Name, Category: s.Category}
}

func NewTestSummary(t *Test, questionCount int) TestSummary {
	return TestSummary{
		ID:              t.ID,
		SkillID:         t.SkillID,
		Skill:           NewSkillRef(t.Skill),
		Title:           t.Title,
		Description:     t.Description,
		Difficulty:      t.Difficulty,
		DurationMinutes: t.DurationMinutes,
		PassingScore:    t.PassingScore,
		QuestionCount:   questionCount,
		CreatedAt:       t.CreatedAt,
	}
}

func NewPublicQuestion(q Question) PublicQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      options,
		Points:       q.Points,
		OrderIndex:   q.OrderIndex,
	}
}

// NewTestDetail expects t.Questions to be ordered by OrderIndex.
func NewTestDetail(t *Test) *TestDetail {
	questions := make([]PublicQuestion, 0, len(t.Questions))
	for _, q := range t.Questions {
		questions = append(questions, NewPublicQuestion(q))
	}
	return &TestDetail{
		TestSummary: NewTestSummary(t, len(t.Questions)),
		IsActive:    t.IsActive,
		Questions:   questions,
	}
}

type AttemptRef struct {
	ID          string     `json:"id"`
	Score       *int       `json:"score"`
	CompletedAt *time.Time `json:"completedAt"`
}

type BadgeView struct {
	ID            string      `json:"id"`
	SkillID       string      `json:"skillId"`
	Skill         *SkillRef   `json:"skill,omitempty"`
	Tier          BadgeTier   `json:"badgeType"`
	TestAttemptID string      `json:"testAttemptId"`
	TestAttempt   *AttemptRef `json:"testAttempt,omitempty"`
	IssuedAt      time.Time   `json:"issuedAt"`
}

func NewBadgeView(b *Badge) BadgeView {
	v := BadgeView{
		ID:            b.ID,
		SkillID:       b.SkillID,
		Skill:         NewSkillRef(b.Skill),
		Tier:          b.Tier,
		TestAttemptID: b.TestAttemptID,
		IssuedAt:      b.IssuedAt,
	}
	if b.TestAttempt != nil {
		v.TestAttempt = &AttemptRef{
			ID:          b.TestAttempt.ID,
			Score:       b.TestAttempt.Score,
			CompletedAt: b.TestAttempt.CompletedAt,
		}
	}
	return v
}
