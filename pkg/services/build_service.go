package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/buildattempt"
	"github.com/patchwright/patchwright/pkg/models"
)

// logExcerptLimit bounds the stored build-log tail. Full logs stay on the
// worker; the row keeps just enough to diagnose a failed attempt.
const logExcerptLimit = 4000

// BuildService records compile attempts from the build-repair loop.
type BuildService struct {
	client *ent.Client
}

// NewBuildService creates a new BuildService.
func NewBuildService(client *ent.Client) *BuildService {
	return &BuildService{client: client}
}

// RecordAttempt writes one build-attempt row.
func (s *BuildService) RecordAttempt(ctx context.Context, conversationID string, attempt int, result *models.BuildResult) (*ent.BuildAttempt, error) {
	excerpt := result.RawLog
	if len(excerpt) > logExcerptLimit {
		excerpt = excerpt[len(excerpt)-logExcerptLimit:]
	}

	row, err := s.client.BuildAttempt.Create().
		SetID(uuid.New().String()).
		SetConversationID(conversationID).
		SetAttempt(attempt).
		SetSuccess(result.Success).
		SetDurationMs(result.DurationMS).
		SetErrorCount(len(result.Errors)).
		SetLogExcerpt(excerpt).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record build attempt: %w", err)
	}
	return row, nil
}

// ListAttempts returns the attempts for a conversation in order.
func (s *BuildService) ListAttempts(ctx context.Context, conversationID string) ([]*ent.BuildAttempt, error) {
	return s.client.BuildAttempt.Query().
		Where(buildattempt.ConversationID(conversationID)).
		Order(ent.Asc(buildattempt.FieldAttempt)).
		All(ctx)
}
