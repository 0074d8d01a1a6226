package model

// Unanswered is the sentinel stored in SessionState.Answers for a question
// the candidate has not answered (or has cleared).
const Unanswered = -1

// Question represents a single multiple-choice question. Immutable once
// loaded; the engine never mutates questions.
type Question struct {
	ID               string   `json:"id" validate:"required"`
	Prompt           string   `json:"prompt" validate:"required"`
	Options          []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOption    int      `json:"correct_option" validate:"min=0"`
	Topic            string   `json:"topic" validate:"required"`
	Difficulty       string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Solution         string   `json:"solution,omitempty"`
	TimeLimitSeconds int      `json:"time_limit_seconds,omitempty" validate:"min=0"`
}

// QuestionSet is an ordered sequence of questions. The order is frozen for
// the lifetime of a session.
type QuestionSet struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// Len returns the number of questions in the set.
func (s *QuestionSet) Len() int {
	return len(s.Questions)
}

// QuestionForCandidate is a question stripped of the correct answer and
// solution text, safe to send to the candidate while a session is running.
type QuestionForCandidate struct {
	ID               string   `json:"id"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	Topic            string   `json:"topic"`
	Difficulty       string   `json:"difficulty"`
	TimeLimitSeconds int      `json:"time_limit_seconds,omitempty"`
}

// ForCandidate returns the candidate-safe view of a question.
func (q *Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:               q.ID,
		Prompt:           q.Prompt,
		Options:          q.Options,
		Topic:            q.Topic,
		Difficulty:       q.Difficulty,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
}

// QuestionSetSummary is the listing view of a question set (no questions).
type QuestionSetSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

// Summary returns the listing view of the set.
func (s *QuestionSet) Summary() QuestionSetSummary {
	return QuestionSetSummary{ID: s.ID, Title: s.Title, QuestionCount: len(s.Questions)}
}

// ImportQuestionSetRequest is the payload for importing a custom question set.
type ImportQuestionSetRequest struct {
	Title     string     `json:"title" binding:"required,min=1,max=255"`
	Questions []Question `json:"questions" binding:"required,min=1"`
}
