package catalog

import "regexp"

// stubQuestion matches the generic questions authoring tools insert before
// real content exists, e.g. "Sample EASY question 1 for Python?".
var stubQuestion = regexp.MustCompile(`^Sample (EASY|MEDIUM|HARD) question \d+ for `)

// IsPlaceholder reports whether a test should be hidden from listings: it
// has no questions, or its first question by order index is a stub.
func IsPlaceholder(questionCount int, firstQuestionText string) bool {
	if questionCount == 0 {
		return true
	}
	return stubQuestion.MatchString(firstQuestionText)
}
