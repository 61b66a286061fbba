package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sleep-quiz-service/internal/domain"
)

const defaultTable = "quiz_responses"

// ResponseStore inserts rows into a hosted PostgREST-compatible datastore
// (e.g. Supabase): POST {baseURL}/rest/v1/{table}.
type ResponseStore struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
}

func NewResponseStore(baseURL, apiKey, table string, httpClient *http.Client) *ResponseStore {
	if table == "" {
		table = defaultTable
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ResponseStore{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		table:      table,
		httpClient: httpClient,
	}
}

type insertedRow struct {
	ID json.RawMessage `json:"id"`
}

func (s *ResponseStore) InsertQuizResponse(ctx context.Context, payload domain.Payload) (string, error) {
	record, err := payload.Record()
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}
	body, err := json.Marshal([]domain.ResponseRecord{record})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("datastore insert non-2xx: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var rows []insertedRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		// some deployments answer 201 with an empty body
		if err == io.EOF {
			return "", nil
		}
		return "", fmt.Errorf("decode insert response: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return strings.Trim(string(rows[0].ID), `"`), nil
}
