package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sleep-quiz-service/internal/domain"
)

// DefaultSubmitTimeout bounds a single response store write.
const DefaultSubmitTimeout = 15 * time.Second

// SessionRepository abstracts how live sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CatalogRepository loads question catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, version string) (*domain.Catalog, error)
}

// ResponseStore persists a finished questionnaire and returns the record id.
type ResponseStore interface {
	InsertQuizResponse(ctx context.Context, payload domain.Payload) (string, error)
}

// ServiceOptions tunes QuizService; zero values fall back to defaults.
type ServiceOptions struct {
	Version       string
	SubmitTimeout time.Duration
	Now           func() time.Time
	Logger        zerolog.Logger
	Metrics       *Metrics
}

// QuizService contains the questionnaire use cases.
type QuizService struct {
	sessions  SessionRepository
	catalogs  CatalogRepository
	responses ResponseStore

	version       string
	submitTimeout time.Duration
	now           func() time.Time
	logger        zerolog.Logger
	metrics       *Metrics
}

func NewQuizService(sessions SessionRepository, catalogs CatalogRepository, responses ResponseStore, opts ServiceOptions) *QuizService {
	if opts.Version == "" {
		opts.Version = domain.QuizVersion
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &QuizService{
		sessions:      sessions,
		catalogs:      catalogs,
		responses:     responses,
		version:       opts.Version,
		submitTimeout: opts.SubmitTimeout,
		now:           opts.Now,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
}

// Catalog returns the catalog new sessions are created from.
func (s *QuizService) Catalog(ctx context.Context) (*domain.Catalog, error) {
	return s.catalogs.GetCatalog(ctx, s.version)
}

// Begin opens a new session at the intro stage.
func (s *QuizService) Begin(ctx context.Context) (View, error) {
	catalog, err := s.catalogs.GetCatalog(ctx, s.version)
	if err != nil {
		return View{}, fmt.Errorf("load catalog %s: %w", s.version, err)
	}
	session := newSessionWithClock(uuid.NewString(), catalog, s.now)
	s.sessions.Save(session)
	return s.view(session), nil
}

// Start records the respondent's name and moves to the first question.
func (s *QuizService) Start(_ context.Context, sessionID, name string) (View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := session.start(name); err != nil {
		return s.view(session), err
	}
	s.metrics.sessionStarted()
	s.logger.Debug().Str("session", sessionID).Msg("quiz started")
	return s.view(session), nil
}

// Answer selects an option for the active question and advances.
func (s *QuizService) Answer(_ context.Context, sessionID string, optionIndex int) (View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	option, err := session.answer(optionIndex)
	if err != nil {
		return s.view(session), err
	}
	s.metrics.answerRecorded()
	s.logger.Debug().Str("session", sessionID).Str("answer", option.Text).Strs("flags", option.Flags).Msg("answer selected")
	return s.view(session), nil
}

// Back returns to the previous question without discarding answers or flags.
func (s *QuizService) Back(_ context.Context, sessionID string) (View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := session.back(); err != nil {
		return s.view(session), err
	}
	return s.view(session), nil
}

// UpdateContact replaces the contact form fields.
func (s *QuizService) UpdateContact(_ context.Context, sessionID string, respondent domain.Respondent) (View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := session.updateContact(respondent); err != nil {
		return s.view(session), err
	}
	return s.view(session), nil
}

// Submit validates the contact fields, assembles the payload and stores it.
// Store failures leave the session in SubmissionFailed; calling Submit again retries.
func (s *QuizService) Submit(ctx context.Context, sessionID string) (View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}

	payload, err := session.beginSubmit()
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.metrics.submission(outcomeRejected, 0)
		}
		return s.view(session), err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	started := time.Now()
	recordID, storeErr := s.responses.InsertQuizResponse(storeCtx, payload)
	elapsed := time.Since(started).Seconds()
	session.finishSubmit(recordID, storeErr)

	if storeErr != nil {
		s.metrics.submission(outcomeFailed, elapsed)
		s.logger.Error().Err(storeErr).Str("session", sessionID).Msg("failed to submit quiz data")
		return s.view(session), fmt.Errorf("%w: %w", domain.ErrStorage, storeErr)
	}

	s.metrics.submission(outcomeStored, elapsed)
	s.logger.Info().
		Str("session", sessionID).
		Str("record", recordID).
		Int("responses", len(payload.Responses)).
		Int("flags", len(payload.Flags)).
		Msg("quiz response stored")
	return s.view(session), nil
}

// View returns the current view of a session.
func (s *QuizService) View(_ context.Context, sessionID string) (View, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(session), nil
}

// Close drops a session; unsubmitted answers are lost.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if stage := session.Stage(); stage != domain.StageCompleted {
		s.logger.Debug().Str("session", sessionID).Str("stage", string(stage)).Msg("session abandoned")
	}
	s.sessions.Delete(sessionID)
}

func (s *QuizService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) view(session *Session) View {
	return BuildView(session.Catalog(), session.snapshot())
}
