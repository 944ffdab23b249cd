// Package meetingupdate provides the conversational meeting-update bounded
// context module. This file wires the module's repository, collaborators
// and routes together.
package meetingupdate

import (
	"context"

	"meeting_assistant_backend/internal/contacts"
	"meeting_assistant_backend/internal/extraction"
	"meeting_assistant_backend/internal/googlecal"
	apphttp "meeting_assistant_backend/internal/http"
	"meeting_assistant_backend/internal/meetingupdate/adapters"
	"meeting_assistant_backend/internal/meetingupdate/handler"
	"meeting_assistant_backend/internal/meetingupdate/repository"
	"meeting_assistant_backend/internal/meetingupdate/service"
	"meeting_assistant_backend/internal/reply"
	"meeting_assistant_backend/internal/zoom"
	"meeting_assistant_backend/platform/ai/embeddings"
	"meeting_assistant_backend/platform/ai/gemini"
	"meeting_assistant_backend/platform/config"
	"meeting_assistant_backend/platform/events"
	"meeting_assistant_backend/platform/logger"
	"meeting_assistant_backend/platform/qdrant"
	"meeting_assistant_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the meeting-update bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the meeting-update module with all its
// dependencies.
func NewModule(ctx context.Context, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey: cfg.GetGeminiAPIKey(),
		Model:  cfg.GetGeminiModel(),
	})
	if err != nil {
		return nil, err
	}

	index := adapters.NewTitleIndex(qdrant.NewClient(qdrant.Config{
		BaseURL:    cfg.GetQdrantURL(),
		APIKey:     cfg.GetQdrantAPIKey(),
		Collection: cfg.GetQdrantCollection(),
	}))
	embedder := adapters.NewTitleEmbedder(embeddings.NewClient(embeddings.Config{
		BaseURL: cfg.GetEmbeddingAPIURL(),
		APIKey:  cfg.GetEmbeddingAPIKey(),
	}))

	svc := service.New(
		repo,
		extraction.New(model),
		contacts.New(pool),
		googlecal.NewClient(cfg),
		zoom.NewClient(cfg, pool),
		embedder,
		index,
		reply.New(model),
		eventBus,
		log,
	)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "meetingupdate"
}

// Service returns the update service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the module routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/meetings/update")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
