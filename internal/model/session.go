package model

import "time"

// QuestionStatus enumerates the graded outcome of a single question.
type QuestionStatus string

const (
	StatusUnanswered QuestionStatus = "unanswered"
	StatusCorrect    QuestionStatus = "correct"
	StatusIncorrect  QuestionStatus = "incorrect"
)

// SessionState is the mutable record of one timed attempt. It is owned and
// mutated exclusively by the engine; everything else sees snapshots.
//
// Invariants:
//   - CurrentIndex is always within [0, len(Answers)-1].
//   - TimeSpentSeconds[i] only advances while question i is current and the
//     session clock is running.
//   - EndedAt is set exactly once, at submission; Results is populated
//     exactly once, after EndedAt. Neither is ever recomputed.
//
// The sum of TimeSpentSeconds is not reconciled against EndedAt-StartedAt:
// the per-question clock and the session clock accumulate independently
// (accepted slack, kept as-is on purpose).
type SessionState struct {
	SetID                     string       `json:"set_id"`
	Answers                   []int        `json:"answers"`
	Bookmarked                map[int]bool `json:"bookmarked"`
	TimeSpentSeconds          []float64    `json:"time_spent_seconds"`
	CurrentIndex              int          `json:"current_index"`
	StartedAt                 time.Time    `json:"started_at"`
	EndedAt                   *time.Time   `json:"ended_at,omitempty"`
	ConfiguredDurationSeconds int          `json:"configured_duration_seconds"`
	// QuestionOrder records the (possibly shuffled) question IDs for this
	// session so a reload can rebuild the same ordering.
	QuestionOrder []string `json:"question_order"`
	Results       *Results `json:"results,omitempty"`
}

// NewSessionState creates a fresh state for a set of n questions.
func NewSessionState(setID string, order []string, durationSeconds int, startedAt time.Time) *SessionState {
	n := len(order)
	answers := make([]int, n)
	for i := range answers {
		answers[i] = Unanswered
	}
	return &SessionState{
		SetID:                     setID,
		Answers:                   answers,
		Bookmarked:                make(map[int]bool),
		TimeSpentSeconds:          make([]float64, n),
		CurrentIndex:              0,
		StartedAt:                 startedAt,
		ConfiguredDurationSeconds: durationSeconds,
		QuestionOrder:             order,
	}
}

// Finished reports whether the session has been submitted.
func (s *SessionState) Finished() bool {
	return s.EndedAt != nil
}

// Clone returns a deep copy, used for persistence snapshots so the store
// never observes a state mutated mid-save.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.Answers = append([]int(nil), s.Answers...)
	c.TimeSpentSeconds = append([]float64(nil), s.TimeSpentSeconds...)
	c.QuestionOrder = append([]string(nil), s.QuestionOrder...)
	c.Bookmarked = make(map[int]bool, len(s.Bookmarked))
	for k, v := range s.Bookmarked {
		c.Bookmarked[k] = v
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return &c
}

// QuestionResult is the graded outcome of a single question.
type QuestionResult struct {
	Index            int            `json:"index"`
	QuestionID       string         `json:"question_id"`
	Status           QuestionStatus `json:"status"`
	SelectedOption   int            `json:"selected_option"`
	CorrectOption    int            `json:"correct_option"`
	TimeSpentSeconds float64        `json:"time_spent_seconds"`
}

// BucketStats aggregates results for one topic or difficulty bucket.
// Attempted counts only answered questions; TimeTotalSeconds accumulates for
// every question in the bucket regardless of answer status, since time spent
// looking counts even when the candidate abstains.
type BucketStats struct {
	Attempted        int     `json:"attempted"`
	Correct          int     `json:"correct"`
	TimeTotalSeconds float64 `json:"time_total_seconds"`
}

// Results is the finalized score breakdown, computed exactly once at
// submission.
type Results struct {
	Score           int                     `json:"score"`
	Total           int                     `json:"total"`
	QuestionResults []QuestionResult        `json:"question_results"`
	ByTopic         map[string]*BucketStats `json:"by_topic"`
	ByDifficulty    map[string]*BucketStats `json:"by_difficulty"`
}

// StartSessionRequest is the payload to begin a new attempt.
type StartSessionRequest struct {
	SetID           string `json:"set_id" binding:"required"`
	DurationSeconds int    `json:"duration_seconds" binding:"required,min=30,max=28800"`
	Shuffle         bool   `json:"shuffle"`
}

// SelectAnswerRequest is the payload for answering the current question.
type SelectAnswerRequest struct {
	Option int `json:"option" binding:"min=0"`
}

// NavigateRequest is the payload for moving between questions. Any integer
// delta is accepted; zero is a no-op.
type NavigateRequest struct {
	Delta int `json:"delta"`
}
