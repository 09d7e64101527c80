// Package cleanup provides data retention and cleanup services.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/services"
)

// Service periodically enforces retention policies:
//   - Soft-deletes old conversations (settled + stale pending)
//   - Removes stream event rows past their TTL
//
// All operations are idempotent and safe to run from multiple pods.
type Service struct {
	config        *config.RetentionConfig
	conversations *services.ConversationService
	events        *services.EventService

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(
	cfg *config.RetentionConfig,
	conversations *services.ConversationService,
	events *services.EventService,
) *Service {
	return &Service{
		config:        cfg,
		conversations: conversations,
		events:        events,
	}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"conversation_retention_days", s.config.ConversationRetentionDays,
		"event_ttl", s.config.EventTTL,
		"interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.softDeleteOldConversations(ctx)
	s.cleanupExpiredEvents(ctx)
}

func (s *Service) softDeleteOldConversations(_ context.Context) {
	count, err := s.conversations.SoftDeleteOldConversations(context.Background(), s.config.ConversationRetentionDays)
	if err != nil {
		slog.Error("Retention: soft-delete conversations failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: soft-deleted old conversations", "count", count)
	}
}

func (s *Service) cleanupExpiredEvents(_ context.Context) {
	count, err := s.events.CleanupExpiredEvents(context.Background(), s.config.EventTTL)
	if err != nil {
		slog.Error("Retention: event cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: cleaned up expired events", "count", count)
	}
}
