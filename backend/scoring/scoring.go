// Package scoring grades a set of answers against a test's questions.
// Grade performs no I/O and keeps no state.
package scoring

import (
	"math"
	"strings"

	"skillcred/backend/models"
)

type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"isCorrect"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Points        int    `json:"points"`
}

type Result struct {
	Score        int              `json:"score"`
	Passed       bool             `json:"passed"`
	EarnedPoints int              `json:"earnedPoints"`
	TotalPoints  int              `json:"totalPoints"`
	CorrectCount int              `json:"correctAnswers"`
	Questions    []QuestionResult `json:"questionResults"`
}

// Grade scores answers, keyed by question id, against questions. Missing
// answers count as empty strings and keys for unknown questions are ignored.
// Answers match when equal after trimming and case folding.
func Grade(questions []models.Question, answers map[string]string, passingScore int) Result {
	res := Result{Questions: make([]QuestionResult, 0, len(questions))}

	for _, q := range questions {
		given := answers[q.ID]
		correct := matches(given, q.CorrectAnswer)
		res.TotalPoints += q.Points
		if correct {
			res.EarnedPoints += q.Points
			res.CorrectCount++
		}
		res.Questions = append(res.Questions, QuestionResult{
			QuestionID:    q.ID,
			Correct:       correct,
			UserAnswer:    given,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}

	res.Score = percent(res.EarnedPoints, res.TotalPoints)
	res.Passed = res.Score >= passingScore
	return res
}

func matches(given, want string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(want))
}

func percent(earned, total int) int {
	if total <= 0 {
		return 0
	}
	score := int(math.Round(100 * float64(earned) / float64(total)))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
