package http

import (
	"net/http"

	"sleep-quiz-service/internal/app"
	"sleep-quiz-service/internal/domain"
)

// CatalogHandler serves the questionnaire so clients can pre-render sections.
type CatalogHandler struct {
	service *app.QuizService
}

func NewCatalogHandler(service *app.QuizService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type catalogResponse struct {
	Version   string           `json:"version"`
	Questions []questionEntry  `json:"questions"`
	Sections  []domain.Section `json:"sections"`
}

// questionEntry omits option flags; they are an internal signal.
type questionEntry struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	doc := catalog.Document()
	resp := catalogResponse{
		Version:   doc.Version,
		Questions: make([]questionEntry, 0, len(doc.Questions)),
		Sections:  doc.Sections,
	}
	for _, q := range doc.Questions {
		entry := questionEntry{ID: q.ID, Prompt: q.Prompt, Options: make([]string, 0, len(q.Options))}
		for _, o := range q.Options {
			entry.Options = append(entry.Options, o.Text)
		}
		resp.Questions = append(resp.Questions, entry)
	}
	respondJSON(w, http.StatusOK, resp)
}
