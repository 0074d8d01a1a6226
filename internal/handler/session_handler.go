package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/engine"
	"github.com/quizforge/mockexam-backend/internal/model"
	"github.com/quizforge/mockexam-backend/internal/questionset"
	"github.com/quizforge/mockexam-backend/internal/response"
	"github.com/quizforge/mockexam-backend/internal/validator"
)

// SessionHandler exposes the session engine to the presentation layer.
type SessionHandler struct {
	engine *engine.Engine
	sets   *questionset.Loader
	log    zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(eng *engine.Engine, sets *questionset.Loader, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		sets:   sets,
		log:    log.With().Str("component", "session_handler").Logger(),
	}
}

// failFromEngine maps engine sentinels to HTTP statuses and error codes.
func failFromEngine(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidArgument)
	case errors.Is(err, engine.ErrNoActiveSession):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
	case errors.Is(err, engine.ErrSessionActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	case errors.Is(err, engine.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, engine.ErrNoResults):
		response.Fail(c, http.StatusConflict, response.ErrResultsNotReady)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// StartSession godoc
// POST /api/v1/session/start
// Begins a fresh attempt over the requested question set.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	set, err := h.sets.Get(req.SetID)
	if err != nil {
		if errors.Is(err, questionset.ErrSetNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSetNotFound)
			return
		}
		h.log.Error().Err(err).Str("set_id", req.SetID).Msg("Resolve question set failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if req.Shuffle {
		set = questionset.Shuffle(set)
	}

	if err := h.engine.StartSession(set, req.DurationSeconds); err != nil {
		failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusCreated, h.engine.Snapshot())
}

// GetState godoc
// GET /api/v1/session/state
// Returns the full snapshot the presentation layer renders from, including
// remaining time. Covers page reloads.
func (h *SessionHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// SelectAnswer godoc
// POST /api/v1/session/answer
// Records an answer for the current question.
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.engine.SelectAnswer(req.Option); err != nil {
		failFromEngine(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// ClearAnswer godoc
// DELETE /api/v1/session/answer
// Resets the current question to unanswered.
func (h *SessionHandler) ClearAnswer(c *gin.Context) {
	if err := h.engine.ClearAnswer(); err != nil {
		failFromEngine(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// ToggleBookmark godoc
// POST /api/v1/session/bookmark
// Flips the bookmark on the current question.
func (h *SessionHandler) ToggleBookmark(c *gin.Context) {
	if err := h.engine.ToggleBookmark(); err != nil {
		failFromEngine(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// Navigate godoc
// POST /api/v1/session/navigate
// Moves between questions. Navigating past the last question finishes the
// session.
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.engine.Navigate(req.Delta); err != nil {
		failFromEngine(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// Submit godoc
// POST /api/v1/session/submit
// Finalizes the session. One-shot: a second call reports ALREADY_SUBMITTED.
func (h *SessionHandler) Submit(c *gin.Context) {
	if err := h.engine.Submit(); err != nil {
		failFromEngine(c, err)
		return
	}

	results, err := h.engine.Results()
	if err != nil {
		failFromEngine(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// GetResults godoc
// GET /api/v1/session/results
// Returns the finalized results of the current attempt.
func (h *SessionHandler) GetResults(c *gin.Context) {
	results, err := h.engine.Results()
	if err != nil {
		failFromEngine(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}
