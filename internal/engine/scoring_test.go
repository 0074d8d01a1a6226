package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/mockexam-backend/internal/model"
)

func TestScoreBucketAsymmetry(t *testing.T) {
	set := &model.QuestionSet{
		ID:    "set-1",
		Title: "Mixed",
		Questions: []model.Question{
			{ID: "q1", Prompt: "A?", Options: []string{"a", "b"}, CorrectOption: 0, Topic: "databases", Difficulty: "easy"},
			{ID: "q2", Prompt: "B?", Options: []string{"a", "b"}, CorrectOption: 1, Topic: "databases", Difficulty: "medium"},
			{ID: "q3", Prompt: "C?", Options: []string{"a", "b"}, CorrectOption: 0, Topic: "security", Difficulty: "medium"},
		},
	}
	state := model.NewSessionState("set-1", []string{"q1", "q2", "q3"}, 600, time.Now())
	state.Answers = []int{0, 0, model.Unanswered}
	state.TimeSpentSeconds = []float64{12.5, 7.5, 40}

	res := Score(set, state)

	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 3, res.Total)

	db := res.ByTopic["databases"]
	require.NotNil(t, db)
	assert.Equal(t, 2, db.Attempted)
	assert.Equal(t, 1, db.Correct)
	assert.InDelta(t, 20, db.TimeTotalSeconds, 0.001)

	// The skipped question contributes time but no attempt.
	sec := res.ByTopic["security"]
	require.NotNil(t, sec)
	assert.Equal(t, 0, sec.Attempted)
	assert.Equal(t, 0, sec.Correct)
	assert.InDelta(t, 40, sec.TimeTotalSeconds, 0.001)

	medium := res.ByDifficulty["medium"]
	require.NotNil(t, medium)
	assert.Equal(t, 1, medium.Attempted)
	assert.Equal(t, 0, medium.Correct)
	assert.InDelta(t, 47.5, medium.TimeTotalSeconds, 0.001)
}

func TestScoreAllUnanswered(t *testing.T) {
	set := threeQuestionSet()
	state := model.NewSessionState(set.ID, []string{"q1", "q2", "q3"}, 600, time.Now())

	res := Score(set, state)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 3, res.Total)
	for _, qr := range res.QuestionResults {
		assert.Equal(t, model.StatusUnanswered, qr.Status)
		assert.Equal(t, model.Unanswered, qr.SelectedOption)
	}
}
