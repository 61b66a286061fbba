package domain

import (
	"encoding/json"
	"time"
)

// QuizVersion is stamped on every stored response.
const QuizVersion = "1.0"

// Option represents a possible answer for a question and the flags it raises.
type Option struct {
	Text  string   `json:"text"`
	Flags []string `json:"flags"`
}

// Question models a single-choice question.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Section groups questions for progress display.
type Section struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	QuestionIDs []string `json:"questionIds"`
}

// Respondent holds the identity captured at intro and contact stages.
type Respondent struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

// Stage names the screen a session is on.
type Stage string

const (
	StageIntro            Stage = "intro"
	StageActive           Stage = "active"
	StageContactCapture   Stage = "contact"
	StageSubmitting       Stage = "submitting"
	StageCompleted        Stage = "completed"
	StageSubmissionFailed Stage = "submission_failed"
)

// SubmissionStatus tracks the storage write for a session.
type SubmissionStatus string

const (
	NotSubmitted SubmissionStatus = "not_submitted"
	Submitting   SubmissionStatus = "submitting"
	Submitted    SubmissionStatus = "submitted"
	Failed       SubmissionStatus = "failed"
)

// Submission is the submit outcome; Reason is set only when Failed.
type Submission struct {
	Status   SubmissionStatus `json:"status"`
	Reason   string           `json:"reason,omitempty"`
	RecordID string           `json:"recordId,omitempty"`
}

// Payload is the assembled record handed to the response store.
type Payload struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Age         string            `json:"age"`
	Gender      string            `json:"gender"`
	Responses   map[string]string `json:"responses"`
	Flags       []string          `json:"flags"`
	CompletedAt time.Time         `json:"completed_at"`
	QuizVersion string            `json:"quiz_version"`
}

// completedAtLayout matches JavaScript's Date.toISOString output.
const completedAtLayout = "2006-01-02T15:04:05.000Z"

// ResponseRecord is the persisted row shape shared by every store.
type ResponseRecord struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Age         string   `json:"age"`
	Gender      string   `json:"gender"`
	Responses   string   `json:"responses"`
	Flags       []string `json:"flags"`
	CompletedAt string   `json:"completed_at"`
	QuizVersion string   `json:"quiz_version"`
}

// Record converts the payload to its stored form; responses become a JSON string.
func (p Payload) Record() (ResponseRecord, error) {
	responses := p.Responses
	if responses == nil {
		responses = map[string]string{}
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return ResponseRecord{}, err
	}
	flags := p.Flags
	if flags == nil {
		flags = []string{}
	}
	return ResponseRecord{
		Name:        p.Name,
		Email:       p.Email,
		Age:         p.Age,
		Gender:      p.Gender,
		Responses:   string(raw),
		Flags:       flags,
		CompletedAt: p.CompletedAt.UTC().Format(completedAtLayout),
		QuizVersion: p.QuizVersion,
	}, nil
}
