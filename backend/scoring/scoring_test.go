package scoring

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillcred/backend/models"
)

func jsBasics() []models.Question {
	return []models.Question{
		{ID: "q1", CorrectAnswer: "correct", Points: 5, OrderIndex: 1},
		{ID: "q2", CorrectAnswer: "correct", Points: 5, OrderIndex: 2},
	}
}

func TestGradeFailingSubmission(t *testing.T) {
	res := Grade(jsBasics(), map[string]string{"q1": "correct", "q2": "wrong"}, 60)

	assert.Equal(t, 50, res.Score)
	assert.False(t, res.Passed)
	assert.Equal(t, 5, res.EarnedPoints)
	assert.Equal(t, 10, res.TotalPoints)
	assert.Equal(t, 1, res.CorrectCount)
	require.Len(t, res.Questions, 2)
	assert.True(t, res.Questions[0].Correct)
	assert.False(t, res.Questions[1].Correct)
	assert.Equal(t, "wrong", res.Questions[1].UserAnswer)
	assert.Equal(t, "correct", res.Questions[1].CorrectAnswer)
}

func TestGradePerfectSubmission(t *testing.T) {
	res := Grade(jsBasics(), map[string]string{"q1": "correct", "q2": "correct"}, 60)

	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, models.TierExpert, models.TierForScore(res.Score))
}

func TestGradeNormalizesAnswers(t *testing.T) {
	qs := []models.Question{{ID: "q1", CorrectAnswer: " Array.prototype.map ", Points: 1}}

	for _, given := range []string{"array.prototype.map", "  ARRAY.PROTOTYPE.MAP\t", "Array.prototype.map"} {
		res := Grade(qs, map[string]string{"q1": given}, 100)
		assert.True(t, res.Passed, given)
	}

	res := Grade(qs, map[string]string{"q1": "Array.prototype.mapp"}, 100)
	assert.False(t, res.Questions[0].Correct)
}

func TestGradeMissingAndExtraAnswers(t *testing.T) {
	res := Grade(jsBasics(), map[string]string{"q2": "correct", "q9": "correct"}, 50)

	assert.Equal(t, 50, res.Score)
	assert.True(t, res.Passed)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "", res.Questions[0].UserAnswer)
	assert.False(t, res.Questions[0].Correct)

	res = Grade(jsBasics(), nil, 0)
	assert.Equal(t, 0, res.Score)
	assert.True(t, res.Passed)
}

func TestGradeZeroQuestions(t *testing.T) {
	res := Grade(nil, map[string]string{"q1": "x"}, 70)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.Passed)
	assert.Empty(t, res.Questions)

	res = Grade([]models.Question{{ID: "q1", CorrectAnswer: "a", Points: 0}}, map[string]string{"q1": "a"}, 0)
	assert.Equal(t, 0, res.Score)
}

func TestGradeWeightsAndRounding(t *testing.T) {
	qs := []models.Question{
		{ID: "a", CorrectAnswer: "x", Points: 1},
		{ID: "b", CorrectAnswer: "x", Points: 1},
		{ID: "c", CorrectAnswer: "x", Points: 1},
	}
	assert.Equal(t, 67, Grade(qs, map[string]string{"a": "x", "b": "x"}, 0).Score)
	assert.Equal(t, 33, Grade(qs, map[string]string{"a": "x"}, 0).Score)

	weighted := []models.Question{
		{ID: "a", CorrectAnswer: "x", Points: 1},
		{ID: "b", CorrectAnswer: "x", Points: 7},
	}
	res := Grade(weighted, map[string]string{"b": "x"}, 88)
	assert.Equal(t, 88, res.Score)
	assert.True(t, res.Passed)
}

func TestGradeDeterministicAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(12)
		qs := make([]models.Question, n)
		answers := map[string]string{}
		for j := range qs {
			qs[j] = models.Question{ID: fmt.Sprintf("q%d", j), CorrectAnswer: "yes", Points: rng.Intn(5)}
			if rng.Intn(2) == 0 {
				answers[qs[j].ID] = "YES"
			}
		}
		pass := rng.Intn(101)

		first := Grade(qs, answers, pass)
		second := Grade(qs, answers, pass)
		assert.Equal(t, first, second)
		assert.GreaterOrEqual(t, first.Score, 0)
		assert.LessOrEqual(t, first.Score, 100)
		assert.Equal(t, first.Score >= pass, first.Passed)
	}
}
