package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service persists itinerary feedback submissions.
type Service interface {
	Record(ctx context.Context, req types.FeedbackRequest) error
}

// ServiceImpl appends feedback records to a JSONL file. One line per record,
// guarded by a mutex so concurrent submissions do not interleave.
type ServiceImpl struct {
	logger *slog.Logger
	path   string
	mu     sync.Mutex
}

func NewServiceImpl(path string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		path:   path,
	}
}

func (s *ServiceImpl) Record(ctx context.Context, req types.FeedbackRequest) error {
	record := types.FeedbackRecord{
		ID:              uuid.New().String(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		FeedbackRequest: req,
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create feedback directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open feedback file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write feedback record: %w", err)
	}

	s.logger.InfoContext(ctx, "Feedback recorded",
		slog.String("id", record.ID),
		slog.Int("rating", record.Rating),
	)
	return nil
}
