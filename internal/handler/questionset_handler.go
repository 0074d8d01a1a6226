package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/model"
	"github.com/quizforge/mockexam-backend/internal/questionset"
	"github.com/quizforge/mockexam-backend/internal/response"
	"github.com/quizforge/mockexam-backend/internal/validator"
)

// QuestionSetHandler serves question set listing and custom imports.
type QuestionSetHandler struct {
	sets *questionset.Loader
	log  zerolog.Logger
}

// NewQuestionSetHandler creates a new QuestionSetHandler.
func NewQuestionSetHandler(sets *questionset.Loader, log zerolog.Logger) *QuestionSetHandler {
	return &QuestionSetHandler{
		sets: sets,
		log:  log.With().Str("component", "questionset_handler").Logger(),
	}
}

// ListSets godoc
// GET /api/v1/question-sets
// Returns summaries of the bundled set and every imported set.
func (h *QuestionSetHandler) ListSets(c *gin.Context) {
	sets, err := h.sets.List()
	if err != nil {
		h.log.Error().Err(err).Msg("List question sets failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question_sets": sets})
}

// ImportSet godoc
// POST /api/v1/question-sets
// Validates and stores a user-supplied question set.
func (h *QuestionSetHandler) ImportSet(c *gin.Context) {
	var req model.ImportQuestionSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	set, err := h.sets.Import(req.Title, req.Questions)
	if err != nil {
		if errors.Is(err, questionset.ErrInvalidSet) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"detail": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("Import question set failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, set.Summary())
}
