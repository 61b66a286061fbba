package app

import (
	"fmt"
	"sync"
	"time"

	"sleep-quiz-service/internal/domain"
)

// Session is one respondent's run through the catalog.
//
// position is -1 at intro, a question index while active, and Len() once all
// questions are answered; stage names the screen explicitly.
type Session struct {
	id        string
	catalog   *domain.Catalog
	createdAt time.Time
	now       func() time.Time

	mu         sync.Mutex
	stage      domain.Stage
	position   int
	answers    map[string]string
	flags      []string
	respondent domain.Respondent
	submission domain.Submission
	notice     string
}

// Snapshot is an immutable copy of session state for views and assembly.
type Snapshot struct {
	ID         string
	Version    string
	CreatedAt  time.Time
	Stage      domain.Stage
	Position   int
	Answers    map[string]string
	Flags      []string
	Respondent domain.Respondent
	Submission domain.Submission
	Notice     string
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, catalog *domain.Catalog) *Session {
	return newSessionWithClock(id, catalog, time.Now)
}

// NewSessionWithClock pins the clock used for created_at and completed_at.
func NewSessionWithClock(id string, catalog *domain.Catalog, now func() time.Time) *Session {
	return newSessionWithClock(id, catalog, now)
}

func newSessionWithClock(id string, catalog *domain.Catalog, now func() time.Time) *Session {
	return &Session{
		id:         id,
		catalog:    catalog,
		createdAt:  now(),
		now:        now,
		stage:      domain.StageIntro,
		position:   -1,
		answers:    make(map[string]string),
		flags:      make([]string, 0),
		submission: domain.Submission{Status: domain.NotSubmitted},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Catalog returns the catalog the session walks.
func (s *Session) Catalog() *domain.Catalog { return s.catalog }

// Stage reports the current stage.
func (s *Session) Stage() domain.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) start(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != domain.StageIntro {
		return domain.ErrInvalidTransition
	}
	if err := domain.ValidateName(name); err != nil {
		s.notice = err.Error()
		return err
	}
	s.respondent.Name = domain.NormalizeRespondent(domain.Respondent{Name: name}).Name
	s.notice = ""
	s.stage = domain.StageActive
	s.position = 0
	return nil
}

func (s *Session) answer(optionIndex int) (domain.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != domain.StageActive {
		return domain.Option{}, domain.ErrInvalidTransition
	}
	question, err := s.catalog.QuestionAt(s.position)
	if err != nil {
		// active positions are always inside the catalog
		panic(fmt.Sprintf("session %s: %v", s.id, err))
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return domain.Option{}, domain.ErrOptionNotFound
	}

	option := question.Options[optionIndex]
	s.answers[question.ID] = option.Text
	s.flags = append(s.flags, option.Flags...)

	s.position++
	if s.position >= s.catalog.Len() {
		s.position = s.catalog.Len()
		s.stage = domain.StageContactCapture
	}
	return option, nil
}

// back never touches recorded answers or the flag log.
func (s *Session) back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case domain.StageActive:
		if s.position > 0 {
			s.position--
		}
		return nil
	case domain.StageContactCapture:
		s.position = s.catalog.Len() - 1
		s.stage = domain.StageActive
		s.notice = ""
		return nil
	default:
		return domain.ErrInvalidTransition
	}
}

func (s *Session) updateContact(r domain.Respondent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != domain.StageContactCapture && s.stage != domain.StageSubmissionFailed {
		return domain.ErrInvalidTransition
	}
	s.respondent = domain.NormalizeRespondent(r)
	return nil
}

// beginSubmit validates the contact fields and moves to Submitting, returning
// the payload to store.
func (s *Session) beginSubmit() (domain.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case domain.StageContactCapture, domain.StageSubmissionFailed:
	case domain.StageSubmitting:
		return domain.Payload{}, domain.ErrSubmissionInFlight
	case domain.StageCompleted:
		return domain.Payload{}, domain.ErrAlreadySubmitted
	default:
		return domain.Payload{}, domain.ErrInvalidTransition
	}

	if err := domain.ValidateContact(s.respondent); err != nil {
		s.notice = err.Error()
		return domain.Payload{}, err
	}

	s.notice = ""
	s.stage = domain.StageSubmitting
	s.submission = domain.Submission{Status: domain.Submitting}
	return Assemble(s.snapshotLocked(), s.now()), nil
}

func (s *Session) finishSubmit(recordID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != domain.StageSubmitting {
		return
	}
	if err != nil {
		s.stage = domain.StageSubmissionFailed
		s.submission = domain.Submission{Status: domain.Failed, Reason: domain.SubmitFailedMessage}
		s.notice = domain.SubmitFailedMessage
		return
	}
	s.stage = domain.StageCompleted
	s.submission = domain.Submission{Status: domain.Submitted, RecordID: recordID}
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot()
}

func (s *Session) snapshotLocked() Snapshot {
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	flags := make([]string, len(s.flags))
	copy(flags, s.flags)

	return Snapshot{
		ID:         s.id,
		Version:    s.catalog.Version(),
		CreatedAt:  s.createdAt,
		Stage:      s.stage,
		Position:   s.position,
		Answers:    answers,
		Flags:      flags,
		Respondent: s.respondent,
		Submission: s.submission,
		Notice:     s.notice,
	}
}
