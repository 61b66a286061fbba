package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sleep-quiz-service/internal/domain"
)

func samplePayload() domain.Payload {
	return domain.Payload{
		Name:        "Ada",
		Email:       "ada@example.com",
		Age:         "34",
		Gender:      "female",
		Responses:   map[string]string{"snoring": "Yes, frequently"},
		Flags:       []string{"possible_sleep_apnea"},
		CompletedAt: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		QuizVersion: domain.QuizVersion,
	}
}

func TestInsertQuizResponsePostsRecord(t *testing.T) {
	type request struct {
		method, path, apiKey, auth, prefer string
		rows                               []domain.ResponseRecord
		decodeErr                          error
	}
	got := make(chan request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := request{
			method: r.Method,
			path:   r.URL.Path,
			apiKey: r.Header.Get("apikey"),
			auth:   r.Header.Get("Authorization"),
			prefer: r.Header.Get("Prefer"),
		}
		req.decodeErr = json.NewDecoder(r.Body).Decode(&req.rows)
		got <- req

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 42}]`))
	}))
	defer server.Close()

	store := NewResponseStore(server.URL+"/", "secret", "", server.Client())
	id, err := store.InsertQuizResponse(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != "42" {
		t.Fatalf("expected id 42, got %q", id)
	}

	req := <-got
	if req.method != http.MethodPost || req.path != "/rest/v1/quiz_responses" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if req.apiKey != "secret" || req.auth != "Bearer secret" || req.prefer != "return=representation" {
		t.Fatalf("unexpected headers apikey=%q auth=%q prefer=%q", req.apiKey, req.auth, req.prefer)
	}
	if req.decodeErr != nil {
		t.Fatalf("decode body: %v", req.decodeErr)
	}
	if len(req.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(req.rows))
	}
	row := req.rows[0]
	if row.Name != "Ada" || row.Responses != `{"snoring":"Yes, frequently"}` {
		t.Fatalf("unexpected row %+v", row)
	}
	if len(row.Flags) != 1 || row.Flags[0] != "possible_sleep_apnea" {
		t.Fatalf("unexpected flags %v", row.Flags)
	}
	if row.CompletedAt != "2024-05-01T08:30:00.000Z" || row.QuizVersion != "1.0" {
		t.Fatalf("unexpected completed_at=%q quiz_version=%q", row.CompletedAt, row.QuizVersion)
	}
}

func TestInsertQuizResponseSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	store := NewResponseStore(server.URL, "", "", server.Client())
	_, err := store.InsertQuizResponse(context.Background(), samplePayload())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}

func TestInsertQuizResponseRespectsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	store := NewResponseStore(server.URL, "", "", server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := store.InsertQuizResponse(ctx, samplePayload()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestInsertQuizResponseAcceptsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store := NewResponseStore(server.URL, "", "", server.Client())
	id, err := store.InsertQuizResponse(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}
