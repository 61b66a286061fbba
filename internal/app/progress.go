package app

import (
	"math"

	"sleep-quiz-service/internal/domain"
)

// SectionProgress is the share of a section's questions that have an answer,
// in [0, 100]. An empty section is 0.
func SectionProgress(section domain.Section, answers map[string]string) float64 {
	if len(section.QuestionIDs) == 0 {
		return 0
	}
	answered := 0
	for _, id := range section.QuestionIDs {
		if answers[id] != "" {
			answered++
		}
	}
	return float64(answered) / float64(len(section.QuestionIDs)) * 100
}

// OverallProgress is (position+1)/total while a question is active,
// 0 before the first question and 100 once all are answered.
func OverallProgress(position, total int) float64 {
	switch {
	case total <= 0 || position < 0:
		return 0
	case position >= total:
		return 100
	}
	return float64(position+1) / float64(total) * 100
}

// RoundPercent rounds a percentage for display.
func RoundPercent(p float64) int {
	return int(math.Round(p))
}
