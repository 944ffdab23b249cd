// Package handler exposes the meeting-update turn endpoint.
package handler

import (
	"net/http"

	"meeting_assistant_backend/internal/http/response"
	"meeting_assistant_backend/internal/meetingupdate/service"
	"meeting_assistant_backend/internal/meetingupdate/transport"
	"meeting_assistant_backend/platform/httpkit"
	"meeting_assistant_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/turns", h.HandleTurn)
}

// HandleTurn runs one conversational turn of an update request.
func (h *Handler) HandleTurn(c *gin.Context) {
	userID, ok := httpkit.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	var req transport.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.HandleTurn(c.Request.Context(), service.TurnInput{
		UserID:       userID,
		Timezone:     req.Timezone,
		Utterance:    req.Message,
		History:      req.HistoryMessages(),
		Continuation: req.ContinuationContext(),
	})
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.OK(c, transport.FromOutcome(result.Outcome, result.Reply))
}
