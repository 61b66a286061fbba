package app

import "sleep-quiz-service/internal/domain"

// keyAreaLimit is how many flags the completion summary lists.
const keyAreaLimit = 3

// View is everything a presentation layer needs to render the current stage.
type View struct {
	SessionID       string            `json:"sessionId"`
	Stage           domain.Stage      `json:"stage"`
	Position        int               `json:"position"`
	TotalQuestions  int               `json:"totalQuestions"`
	OverallProgress int               `json:"overallProgress"`
	Sections        []SectionView     `json:"sections"`
	Question        *QuestionView     `json:"question,omitempty"`
	Contact         *ContactView      `json:"contact,omitempty"`
	Summary         *SummaryView      `json:"summary,omitempty"`
	Submission      domain.Submission `json:"submission"`
	Respondent      domain.Respondent `json:"respondent"`
	CurrentFlags    []string          `json:"currentFlags"`
	Notice          string            `json:"notice,omitempty"`
}

// SectionView is one entry of the section navigation bar.
type SectionView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Active   bool   `json:"active"`
}

// QuestionView is the active question; Selected holds a previous answer after back-navigation.
type QuestionView struct {
	Index    int      `json:"index"`
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Selected string   `json:"selected,omitempty"`
}

// ContactView backs the contact form.
type ContactView struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Age        string `json:"age"`
	Gender     string `json:"gender"`
	Submitting bool   `json:"submitting"`
	Error      string `json:"error,omitempty"`
}

// SummaryView is the completion screen.
type SummaryView struct {
	Name               string   `json:"name"`
	QuestionsAnswered  int      `json:"questionsAnswered"`
	PatternsIdentified int      `json:"patternsIdentified"`
	KeyAreas           []string `json:"keyAreas"`
	MoreAreas          bool     `json:"moreAreas"`
}

// BuildView projects a snapshot onto the catalog.
func BuildView(catalog *domain.Catalog, s Snapshot) View {
	v := View{
		SessionID:      s.ID,
		Stage:          s.Stage,
		Position:       s.Position,
		TotalQuestions: catalog.Len(),
		Submission:     s.Submission,
		Respondent:     s.Respondent,
		CurrentFlags:   catalog.FlagsFor(s.Answers),
		Notice:         s.Notice,
	}
	v.OverallProgress = RoundPercent(OverallProgress(s.Position, catalog.Len()))

	current, hasCurrent := domain.Section{}, false
	if s.Stage == domain.StageActive {
		current, hasCurrent = catalog.SectionContaining(s.Position)
	}
	for _, section := range catalog.Sections() {
		v.Sections = append(v.Sections, SectionView{
			ID:       section.ID,
			Name:     section.Name,
			Progress: RoundPercent(SectionProgress(section, s.Answers)),
			Active:   hasCurrent && section.ID == current.ID,
		})
	}

	switch s.Stage {
	case domain.StageActive:
		if q, err := catalog.QuestionAt(s.Position); err == nil {
			options := make([]string, 0, len(q.Options))
			for _, o := range q.Options {
				options = append(options, o.Text)
			}
			v.Question = &QuestionView{
				Index:    s.Position,
				ID:       q.ID,
				Prompt:   q.Prompt,
				Options:  options,
				Selected: s.Answers[q.ID],
			}
		}
	case domain.StageContactCapture, domain.StageSubmitting, domain.StageSubmissionFailed:
		v.Contact = &ContactView{
			Name:       s.Respondent.Name,
			Email:      s.Respondent.Email,
			Age:        s.Respondent.Age,
			Gender:     s.Respondent.Gender,
			Submitting: s.Stage == domain.StageSubmitting,
			Error:      s.Notice,
		}
	case domain.StageCompleted:
		v.Summary = summarize(s)
	}
	return v
}

func summarize(s Snapshot) *SummaryView {
	flags := DedupeFlags(s.Flags)
	keyAreas := flags
	if len(keyAreas) > keyAreaLimit {
		keyAreas = keyAreas[:keyAreaLimit]
	}
	return &SummaryView{
		Name:               s.Respondent.Name,
		QuestionsAnswered:  len(s.Answers),
		PatternsIdentified: len(flags),
		KeyAreas:           keyAreas,
		MoreAreas:          len(flags) > keyAreaLimit,
	}
}
