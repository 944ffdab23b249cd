package service

import (
	"context"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
)

// Default resolution window when the turn carries no usable boundary.
const (
	defaultWindowBack    = 14 * 24 * time.Hour
	defaultWindowForward = 28 * 24 * time.Hour
)

// resolveMeeting finds the meeting the user is referring to by similarity
// search over titles within the boundary window. The best-ranked hit is
// taken unconditionally; "" means nothing matched. The user-supplied old
// title is preferred as the search hint since the new title may describe
// the meeting post-change.
func (s *Service) resolveMeeting(ctx context.Context, draft domain.UpdateDraft, boundary domain.SearchBoundary, referenceTime time.Time) (string, error) {
	hint := draft.OldTitle
	if hint == "" {
		hint = draft.Title
	}

	vector, err := s.embedder.Embed(ctx, hint)
	if err != nil {
		s.log.CollaboratorError("embedder", "embed title", err)
		return "", err
	}

	window := boundary.OrElse(domain.SearchBoundary{
		Start: referenceTime.Add(-defaultWindowBack),
		End:   referenceTime.Add(defaultWindowForward),
	})

	meetingID, err := s.index.FindByTitleVector(ctx, draft.UserID, vector, window)
	if err != nil {
		s.log.CollaboratorError("search index", "find by title vector", err)
		return "", err
	}
	return meetingID, nil
}
