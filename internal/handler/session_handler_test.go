package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/mockexam-backend/internal/config"
	"github.com/quizforge/mockexam-backend/internal/engine"
	"github.com/quizforge/mockexam-backend/internal/handler"
	"github.com/quizforge/mockexam-backend/internal/questionset"
	"github.com/quizforge/mockexam-backend/internal/router"
	"github.com/quizforge/mockexam-backend/internal/store"
	"github.com/quizforge/mockexam-backend/internal/validator"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	fs, err := store.NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	sets, err := questionset.NewLoader(nil)
	require.NoError(t, err)

	eng := engine.New(fs, engine.Config{}, zerolog.Nop(), engine.Hooks{})

	return router.SetupRouter(&router.Handlers{
		Session:     handler.NewSessionHandler(eng, sets, zerolog.Nop()),
		QuestionSet: handler.NewQuestionSetHandler(sets, zerolog.Nop()),
	}, &config.Config{GinMode: gin.TestMode})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSessionFlow(t *testing.T) {
	r := newTestServer(t)

	// No session yet: state endpoint still answers.
	w := doJSON(t, r, http.MethodGet, "/api/v1/session/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Mutators without a session report the conflict.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/submit", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_ACTIVE_SESSION", decode(t, w).Error.Code)

	// Start over the bundled set.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/start",
		gin.H{"set_id": "default", "duration_seconds": 600})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decode(t, w)
	require.Nil(t, env.Error)
	assert.NotEmpty(t, env.Metadata.RequestID)

	var snap struct {
		Active         bool `json:"active"`
		TotalQuestions int  `json:"total_questions"`
		CurrentIndex   int  `json:"current_index"`
		Question       *struct {
			ID string `json:"id"`
		} `json:"question"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.True(t, snap.Active)
	assert.Equal(t, 0, snap.CurrentIndex)
	require.NotNil(t, snap.Question)

	// Answer, bookmark, navigate.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/answer", gin.H{"option": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/session/bookmark", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/session/navigate", gin.H{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)

	// Zero is an accepted delta: the engine treats it as a no-op, and the
	// adapter must not reject it.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/navigate", gin.H{"delta": 0})
	require.Equal(t, http.StatusOK, w.Code)

	// Results before submit are a conflict.
	w = doJSON(t, r, http.MethodGet, "/api/v1/session/results", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "RESULTS_NOT_READY", decode(t, w).Error.Code)

	// Submit, then confirm one-shot behavior.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results struct {
		Total int `json:"total"`
	}
	env = decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Equal(t, snap.TotalQuestions, results.Total)

	w = doJSON(t, r, http.MethodPost, "/api/v1/session/submit", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_SUBMITTED", decode(t, w).Error.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/session/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStartSessionUnknownSet(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/start",
		gin.H{"set_id": "missing", "duration_seconds": 600})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "QUESTION_SET_NOT_FOUND", decode(t, w).Error.Code)
}

func TestStartSessionValidation(t *testing.T) {
	r := newTestServer(t)

	// Duration below the allowed minimum.
	w := doJSON(t, r, http.MethodPost, "/api/v1/session/start",
		gin.H{"set_id": "default", "duration_seconds": 5})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "duration_seconds")
}

func TestSelectAnswerOutOfRange(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/start",
		gin.H{"set_id": "default", "duration_seconds": 600})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/session/answer", gin.H{"option": 99})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decode(t, w).Error.Code)
}

func TestListAndImportQuestionSets(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/question-sets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		QuestionSets []struct {
			ID            string `json:"id"`
			QuestionCount int    `json:"question_count"`
		} `json:"question_sets"`
	}
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.NotEmpty(t, listing.QuestionSets)
	assert.Equal(t, "default", listing.QuestionSets[0].ID)

	// A structurally invalid set is a validation failure, not a server error.
	w = doJSON(t, r, http.MethodPost, "/api/v1/question-sets", gin.H{
		"title": "Broken",
		"questions": []gin.H{
			{"id": "c1", "prompt": "X?", "options": []string{"a", "b"}, "correct_option": 5, "topic": "misc", "difficulty": "easy"},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env = decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields["detail"], "correct_option")

	// Import without an ancillary store is rejected, not a crash.
	w = doJSON(t, r, http.MethodPost, "/api/v1/question-sets", gin.H{
		"title": "Custom",
		"questions": []gin.H{
			{"id": "c1", "prompt": "X?", "options": []string{"a", "b"}, "correct_option": 0, "topic": "misc", "difficulty": "easy"},
		},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNavigatePastEndSubmits(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/start",
		gin.H{"set_id": "default", "duration_seconds": 600})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decode(t, w)

	var snap struct {
		TotalQuestions int `json:"total_questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))

	w = doJSON(t, r, http.MethodPost, "/api/v1/session/navigate",
		gin.H{"delta": snap.TotalQuestions})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/session/results", nil)
	require.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("body: %s", w.Body.String()))
}
