// Package api exposes the HTTP surface: conversation lifecycle endpoints,
// the SSE stream, and health.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/database"
	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/masking"
	"github.com/patchwright/patchwright/pkg/queue"
	"github.com/patchwright/patchwright/pkg/services"
)

// Server holds the handler dependencies. Routes are registered in Handler.
type Server struct {
	cfg           *config.Config
	dbClient      *database.Client
	conversations *services.ConversationService
	messages      *services.MessageService
	events        *services.EventService
	mux           *events.StreamMultiplexer
	pool          *queue.WorkerPool
	masker        *masking.MaskingService
	logger        *slog.Logger
}

// NewServer creates the API server. pool may be nil (API-only replica).
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	conversations *services.ConversationService,
	messages *services.MessageService,
	eventService *services.EventService,
	mux *events.StreamMultiplexer,
	pool *queue.WorkerPool,
	masker *masking.MaskingService,
	logger *slog.Logger,
) *Server {
	return &Server{
		cfg:           cfg,
		dbClient:      dbClient,
		conversations: conversations,
		messages:      messages,
		events:        eventService,
		mux:           mux,
		pool:          pool,
		masker:        masker,
		logger:        logger.With("service", "api"),
	}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), securityHeaders())

	r.GET("/health", s.healthHandler)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/conversations", s.createConversationHandler)
		v1.GET("/conversations", s.listConversationsHandler)
		v1.GET("/conversations/:id", s.getConversationHandler)
		v1.POST("/conversations/:id/messages", s.postMessageHandler)
		v1.POST("/conversations/:id/cancel", s.cancelConversationHandler)
		v1.GET("/conversations/:id/stream", s.streamHandler)
	}

	return r
}
