package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/response"
	"github.com/quizforge/mockexam-backend/internal/store"
)

// HistoryHandler serves finalized attempt history from the ancillary store.
type HistoryHandler struct {
	history *store.HistoryStore
	log     zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *store.HistoryStore, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		log:     log.With().Str("component", "history_handler").Logger(),
	}
}

// ListAttempts godoc
// GET /api/v1/history
// Returns finalized attempts, newest first.
func (h *HistoryHandler) ListAttempts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	attempts, err := h.history.ListAttempts(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("List attempts failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []store.AttemptRecord{}
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// GetAttempt godoc
// GET /api/v1/history/:id
// Returns one attempt including its full results breakdown.
func (h *HistoryHandler) GetAttempt(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.history.GetAttempt(id)
	if err != nil {
		h.log.Error().Err(err).Str("attempt_id", id).Msg("Get attempt failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if rec == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, rec)
}
