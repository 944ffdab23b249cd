// Package adapters bridges the meeting-update ports onto the platform
// clients (vector index, embedding API).
package adapters

import (
	"context"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/platform/ai/embeddings"
	"meeting_assistant_backend/platform/qdrant"

	"github.com/google/uuid"
)

// TitleIndex implements meeting lookup over the qdrant title collection.
type TitleIndex struct {
	client *qdrant.Client
}

func NewTitleIndex(client *qdrant.Client) *TitleIndex {
	return &TitleIndex{client: client}
}

// FindByTitleVector returns the best-ranked hit within the window, or ""
// when nothing matches. Disambiguation between close hits is deliberately
// absent; the top hit wins.
func (t *TitleIndex) FindByTitleVector(ctx context.Context, userID uuid.UUID, vector []float32, boundary domain.SearchBoundary) (string, error) {
	results, err := t.client.SearchWindow(ctx, vector, userID.String(), boundary.Start, boundary.End, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	// Point ids come back as JSON values; ours are always uuid strings.
	id, _ := results[0].ID.(string)
	return id, nil
}

// UpsertTitleEmbedding writes the meeting's title vector keyed by meeting
// id, with the payload fields the window filter searches on.
func (t *TitleIndex) UpsertTitleEmbedding(ctx context.Context, meetingID string, vector []float32, userID uuid.UUID, startDate time.Time) error {
	return t.client.UpsertPoint(ctx, meetingID, vector, map[string]interface{}{
		"user_id":    userID.String(),
		"start_date": startDate.Unix(),
	})
}

var _ ports.SearchIndex = (*TitleIndex)(nil)

// TitleEmbedder adapts the embedding client to the Embedder port.
type TitleEmbedder struct {
	client *embeddings.Client
}

func NewTitleEmbedder(client *embeddings.Client) *TitleEmbedder {
	return &TitleEmbedder{client: client}
}

func (t *TitleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return t.client.Embed(ctx, text)
}

var _ ports.Embedder = (*TitleEmbedder)(nil)
