package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-quiz-service/internal/app"
	"sleep-quiz-service/internal/domain"
	"sleep-quiz-service/internal/infra/memory"
)

var fixedNow = time.Date(2024, 11, 22, 9, 30, 15, 123_000_000, time.UTC)

type scriptedStore struct {
	mu       sync.Mutex
	err      error
	payloads []domain.Payload
}

func (s *scriptedStore) InsertQuizResponse(_ context.Context, payload domain.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return "", s.err
	}
	return "rec-1", nil
}

func (s *scriptedStore) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *scriptedStore) last() domain.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloads[len(s.payloads)-1]
}

// blockingStore holds every write until release is closed or ctx ends.
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) InsertQuizResponse(ctx context.Context, _ domain.Payload) (string, error) {
	s.entered <- struct{}{}
	select {
	case <-s.release:
		return "rec-blocked", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestService(t *testing.T, store app.ResponseStore, opts app.ServiceOptions) *app.QuizService {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	opts.Logger = zerolog.Nop()
	return app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewCatalogRepository(memory.NewStaticCatalogLoader(domain.SleepCatalogDocument()), time.Minute),
		store,
		opts,
	)
}

func begin(t *testing.T, service *app.QuizService, name string) string {
	t.Helper()
	ctx := context.Background()
	view, err := service.Begin(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StageIntro, view.Stage)
	require.Equal(t, -1, view.Position)

	view, err = service.Start(ctx, view.SessionID, name)
	require.NoError(t, err)
	require.Equal(t, domain.StageActive, view.Stage)
	return view.SessionID
}

func answerAll(t *testing.T, service *app.QuizService, id string, option int) app.View {
	t.Helper()
	var view app.View
	var err error
	for i := 0; i < 13; i++ {
		view, err = service.Answer(context.Background(), id, option)
		require.NoError(t, err)
	}
	return view
}

func TestAnswersAppendFlagsInOrder(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &scriptedStore{}, app.ServiceOptions{})
	id := begin(t, service, "Ada")

	_, err := service.Answer(ctx, id, 2)
	require.NoError(t, err)
	view, err := service.Answer(ctx, id, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, view.Position)
	assert.Equal(t, []string{domain.FlagCircadianIrregularity, domain.FlagSocialJetlag}, view.CurrentFlags)
	require.NotNil(t, view.Question)
	assert.Equal(t, "thermoregulation", view.Question.ID)
}

func TestContactRequiresNameAndEmail(t *testing.T) {
	ctx := context.Background()
	store := &scriptedStore{}
	service := newTestService(t, store, app.ServiceOptions{})
	id := begin(t, service, "Ada")

	view := answerAll(t, service, id, 0)
	require.Equal(t, domain.StageContactCapture, view.Stage)
	assert.Equal(t, 100, view.OverallProgress)
	require.NotNil(t, view.Contact)
	assert.Equal(t, "Ada", view.Contact.Name)

	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada"})
	require.NoError(t, err)
	view, err = service.Submit(ctx, id)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, domain.MissingContactMessage, view.Contact.Error)
	assert.Equal(t, domain.StageContactCapture, view.Stage)
	assert.Empty(t, store.payloads)
}

func TestSubmitStoresAssembledPayload(t *testing.T) {
	ctx := context.Background()
	store := &scriptedStore{}
	service := newTestService(t, store, app.ServiceOptions{})
	id := begin(t, service, "Ada")
	answerAll(t, service, id, 0)

	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: " Ada ", Email: " Ada@Example.COM ", Age: "34", Gender: "female"})
	require.NoError(t, err)
	view, err := service.Submit(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, domain.StageCompleted, view.Stage)
	assert.Equal(t, domain.Submission{Status: domain.Submitted, RecordID: "rec-1"}, view.Submission)

	payload := store.last()
	assert.Equal(t, "1.0", payload.QuizVersion)
	assert.Equal(t, "Ada", payload.Name)
	assert.Equal(t, "Ada@Example.COM", payload.Email)
	assert.Len(t, payload.Responses, 13)
	assert.Equal(t, "I sleep and wake at the same time every day", payload.Responses["bedtime_variability"])
	// first options raise only the sleep goal and duration flags
	assert.Equal(t, []string{domain.FlagRestlessMind, domain.FlagSleepsLessThan5Hours}, payload.Flags)
	assert.Equal(t, fixedNow, payload.CompletedAt)

	record, err := payload.Record()
	require.NoError(t, err)
	assert.Equal(t, "2024-11-22T09:30:15.123Z", record.CompletedAt)

	require.NotNil(t, view.Summary)
	assert.Equal(t, 13, view.Summary.QuestionsAnswered)
	assert.Equal(t, 2, view.Summary.PatternsIdentified)
	assert.False(t, view.Summary.MoreAreas)

	_, err = service.Submit(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
}

func TestStoredVersionIgnoresCatalogVersion(t *testing.T) {
	ctx := context.Background()
	doc := domain.SleepCatalogDocument()
	doc.Version = "2024-11"
	store := &scriptedStore{}
	service := app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewCatalogRepository(memory.NewStaticCatalogLoader(doc), time.Minute),
		store,
		app.ServiceOptions{Version: "2024-11", Logger: zerolog.Nop()},
	)
	id := begin(t, service, "Ada")
	answerAll(t, service, id, 0)
	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = service.Submit(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "1.0", store.last().QuizVersion)
}

func TestSubmitFailureCanBeRetried(t *testing.T) {
	ctx := context.Background()
	store := &scriptedStore{err: errors.New("connection refused")}
	service := newTestService(t, store, app.ServiceOptions{})
	id := begin(t, service, "Ada")
	answerAll(t, service, id, 1)

	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	view, err := service.Submit(ctx, id)
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, domain.StageSubmissionFailed, view.Stage)
	assert.Equal(t, domain.Failed, view.Submission.Status)
	assert.Equal(t, domain.SubmitFailedMessage, view.Submission.Reason)
	assert.Equal(t, domain.SubmitFailedMessage, view.Contact.Error)
	assert.NotContains(t, view.Notice, "connection refused")

	first := store.last()
	store.setErr(nil)
	view, err = service.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCompleted, view.Stage)

	retried := store.last()
	assert.Equal(t, first.Responses, retried.Responses)
	assert.Equal(t, first.Flags, retried.Flags)
}

func TestBackKeepsFlagLog(t *testing.T) {
	ctx := context.Background()
	store := &scriptedStore{}
	service := newTestService(t, store, app.ServiceOptions{})
	id := begin(t, service, "Ada")

	_, err := service.Answer(ctx, id, 2)
	require.NoError(t, err)
	_, err = service.Answer(ctx, id, 2)
	require.NoError(t, err)

	view, err := service.Back(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, view.Position)
	assert.Equal(t, "1–2 hours different", view.Question.Selected)

	view, err = service.Back(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 0, view.Position)

	// back on the first question stays put
	view, err = service.Back(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 0, view.Position)

	view, err = service.Answer(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Position)
	assert.Equal(t, []string{domain.FlagSocialJetlag}, view.CurrentFlags)

	for view.Stage == domain.StageActive {
		view, err = service.Answer(ctx, id, 0)
		require.NoError(t, err)
	}
	_, err = service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = service.Submit(ctx, id)
	require.NoError(t, err)

	payload := store.last()
	assert.Equal(t, "I sleep and wake at the same time every day", payload.Responses["bedtime_variability"])
	assert.Equal(t, domain.FlagCircadianIrregularity, payload.Flags[0])
	assert.Equal(t, domain.FlagSocialJetlag, payload.Flags[1])
}

func TestBackFromContactReturnsToLastQuestion(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &scriptedStore{}, app.ServiceOptions{})
	id := begin(t, service, "Ada")
	answerAll(t, service, id, 0)

	view, err := service.Back(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageActive, view.Stage)
	assert.Equal(t, 12, view.Position)
	assert.Equal(t, "alcohol_use", view.Question.ID)
	assert.Equal(t, "0", view.Question.Selected)
}

func TestInvalidActions(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &scriptedStore{}, app.ServiceOptions{})

	view, err := service.Begin(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = service.Answer(ctx, id, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = service.Back(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = service.Submit(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	view, err = service.Start(ctx, id, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.StageIntro, view.Stage)
	assert.Equal(t, "Please enter your name", view.Notice)

	_, err = service.Start(ctx, id, "Ada")
	require.NoError(t, err)
	_, err = service.Start(ctx, id, "Ada")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	view, err = service.Answer(ctx, id, 7)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	assert.Equal(t, 0, view.Position)

	_, err = service.View(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSubmitRejectsConcurrentAttempt(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	service := newTestService(t, store, app.ServiceOptions{})
	id := begin(t, service, "Ada")
	answerAll(t, service, id, 0)
	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := service.Submit(ctx, id)
		done <- err
	}()
	<-store.entered

	view, err := service.Submit(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	assert.Equal(t, domain.StageSubmitting, view.Stage)
	assert.True(t, view.Contact.Submitting)

	_, err = service.UpdateContact(ctx, id, domain.Respondent{Name: "Eve", Email: "eve@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	close(store.release)
	require.NoError(t, <-done)

	view, err = service.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCompleted, view.Stage)
	assert.Equal(t, "rec-blocked", view.Submission.RecordID)
}

func TestSubmitTimeoutFailsSubmission(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{entered: make(chan struct{}, 1), release: make(chan struct{})}
	service := newTestService(t, store, app.ServiceOptions{SubmitTimeout: 20 * time.Millisecond})
	id := begin(t, service, "Ada")
	answerAll(t, service, id, 0)
	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	view, err := service.Submit(ctx, id)
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.StageSubmissionFailed, view.Stage)
}

func TestProgressNeverDecreasesWhileAnswering(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &scriptedStore{}, app.ServiceOptions{})
	view, err := service.Begin(ctx)
	require.NoError(t, err)
	id := view.SessionID
	assert.Equal(t, 0, view.OverallProgress)

	view, err = service.Start(ctx, id, "Ada")
	require.NoError(t, err)
	last := view.OverallProgress
	for i := 0; i < 13; i++ {
		view, err = service.Answer(ctx, id, i%3)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, view.OverallProgress, last)
		assert.LessOrEqual(t, view.OverallProgress, 100)
		last = view.OverallProgress
		for _, s := range view.Sections {
			assert.GreaterOrEqual(t, s.Progress, 0)
			assert.LessOrEqual(t, s.Progress, 100)
		}
	}
	for _, s := range view.Sections {
		assert.Equal(t, 100, s.Progress, s.ID)
	}
}

func TestSummaryListsTopThreeAreas(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &scriptedStore{}, app.ServiceOptions{})
	id := begin(t, service, "Ada")
	// the third option raises a flag on most questions
	answerAll(t, service, id, 2)
	_, err := service.UpdateContact(ctx, id, domain.Respondent{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	view, err := service.Submit(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, view.Summary)
	assert.Equal(t, []string{
		domain.FlagCircadianIrregularity,
		domain.FlagSocialJetlag,
		domain.FlagThermoregulationDisruption,
	}, view.Summary.KeyAreas)
	assert.True(t, view.Summary.MoreAreas)
	assert.Greater(t, view.Summary.PatternsIdentified, 3)
}

func TestCloseDropsSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, &scriptedStore{}, app.ServiceOptions{})
	id := begin(t, service, "Ada")

	service.Close(ctx, id)
	_, err := service.View(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
