package app

import (
	"time"

	"sleep-quiz-service/internal/domain"
)

// Assemble builds the stored payload from a session snapshot. It performs no I/O.
// quiz_version is always QuizVersion, whichever catalog version the session walked.
func Assemble(s Snapshot, now time.Time) domain.Payload {
	responses := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		responses[k] = v
	}
	return domain.Payload{
		Name:        s.Respondent.Name,
		Email:       s.Respondent.Email,
		Age:         s.Respondent.Age,
		Gender:      s.Respondent.Gender,
		Responses:   responses,
		Flags:       DedupeFlags(s.Flags),
		CompletedAt: now.UTC(),
		QuizVersion: domain.QuizVersion,
	}
}

// DedupeFlags drops empty and repeated flags, keeping first-seen order.
func DedupeFlags(flags []string) []string {
	out := make([]string, 0, len(flags))
	seen := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
