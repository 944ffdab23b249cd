package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"meeting_assistant_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

func record(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	DomainError(c, err)
	return w
}

func TestDomainErrorMapsTypedErrors(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{apperr.Unavailable("calendar gateway unreachable", nil), http.StatusBadGateway},
		{apperr.Conflict("resolved meeting vanished before commit"), http.StatusConflict},
		{apperr.BadRequest("zoom account not linked"), http.StatusBadRequest},
		{apperr.NotFound("no such thing"), http.StatusNotFound},
	}
	for _, tc := range cases {
		w := record(tc.err)
		if w.Code != tc.wantStatus {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.wantStatus)
		}
	}
}

func TestDomainErrorUnwrapsThroughChain(t *testing.T) {
	err := fmt.Errorf("handling turn: %w", apperr.Conflict("state vanished"))
	w := record(err)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestDomainErrorOpaqueOnUnknown(t *testing.T) {
	w := record(errors.New("pq: deadlock detected"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error = %q, internals must not leak", body.Error)
	}
}
