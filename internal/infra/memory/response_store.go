package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"sleep-quiz-service/internal/domain"
)

// StoredResponse is a record kept by ResponseStore.
type StoredResponse struct {
	ID     string
	Record domain.ResponseRecord
}

// ResponseStore keeps quiz responses in process memory. It is the fallback when
// no remote datastore is configured; records do not survive a restart.
type ResponseStore struct {
	mu      sync.RWMutex
	records []StoredResponse
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{}
}

func (s *ResponseStore) InsertQuizResponse(ctx context.Context, payload domain.Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	record, err := payload.Record()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, StoredResponse{ID: id, Record: record})
	return id, nil
}

// Records returns a copy of everything stored so far, oldest first.
func (s *ResponseStore) Records() []StoredResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredResponse, len(s.records))
	copy(out, s.records)
	return out
}
