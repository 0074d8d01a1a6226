package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/mockexam-backend/internal/model"
)

func openTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func sampleAttempt(id string, endedAt time.Time) *AttemptRecord {
	return &AttemptRecord{
		ID:              id,
		SetID:           "set-1",
		SetTitle:        "Fundamentals",
		StartedAt:       endedAt.Add(-10 * time.Minute),
		EndedAt:         endedAt,
		DurationSeconds: 600,
		Score:           7,
		Total:           10,
		Results: &model.Results{
			Score: 7,
			Total: 10,
			ByTopic: map[string]*model.BucketStats{
				"networking": {Attempted: 5, Correct: 4, TimeTotalSeconds: 120},
			},
		},
	}
}

func TestHistoryAppendAndGet(t *testing.T) {
	h := openTestHistory(t)

	in := sampleAttempt("attempt-1", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, h.AppendAttempt(in))

	out, err := h.GetAttempt("attempt-1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.SetTitle, out.SetTitle)
	assert.Equal(t, in.Score, out.Score)
	assert.True(t, in.EndedAt.Equal(out.EndedAt))
	require.NotNil(t, out.Results)
	assert.Equal(t, 4, out.Results.ByTopic["networking"].Correct)
}

func TestHistoryGetMissing(t *testing.T) {
	h := openTestHistory(t)

	out, err := h.GetAttempt("nope")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestHistoryListNewestFirst(t *testing.T) {
	h := openTestHistory(t)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.AppendAttempt(sampleAttempt("old", base)))
	require.NoError(t, h.AppendAttempt(sampleAttempt("new", base.Add(time.Hour))))

	list, err := h.ListAttempts(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)

	// Listings omit the full results payload.
	assert.Nil(t, list[0].Results)

	limited, err := h.ListAttempts(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestHistoryMalformedTimestamps(t *testing.T) {
	h := openTestHistory(t)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.AppendAttempt(sampleAttempt("good", base)))

	_, err := h.db.Exec(
		`INSERT INTO attempts (id, set_id, set_title, started_at, ended_at, duration_seconds, score, total, results_json)
		 VALUES ('bad', 'set-1', 'Broken', 'not-a-time', 'not-a-time', 600, 0, 10, '{}')`)
	require.NoError(t, err)

	// The listing skips the unreadable row instead of yielding zero times.
	list, err := h.ListAttempts(10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].ID)

	// A direct read surfaces the corruption.
	_, err = h.GetAttempt("bad")
	assert.Error(t, err)
}

func TestHistoryQuestionSets(t *testing.T) {
	h := openTestHistory(t)

	set := &model.QuestionSet{
		ID:    "imported-1",
		Title: "Imported",
		Questions: []model.Question{
			{ID: "q1", Prompt: "A?", Options: []string{"a", "b"}, CorrectOption: 1, Topic: "databases", Difficulty: "easy"},
		},
	}
	require.NoError(t, h.SaveQuestionSet(set))

	out, err := h.GetQuestionSet("imported-1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, set.Title, out.Title)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, 1, out.Questions[0].CorrectOption)

	missing, err := h.GetQuestionSet("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	summaries, err := h.ListQuestionSets()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.QuestionSetSummary{ID: "imported-1", Title: "Imported", QuestionCount: 1}, summaries[0])
}
