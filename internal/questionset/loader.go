// Package questionset loads and validates question sets: the bundled default
// set plus user-imported sets stored in the ancillary database.
package questionset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quizforge/mockexam-backend/internal/model"
	"github.com/quizforge/mockexam-backend/internal/store"
)

//go:embed default_set.json
var defaultSetJSON []byte

// ErrSetNotFound is returned when no question set matches the requested ID.
var ErrSetNotFound = errors.New("question set not found")

// ErrInvalidSet is returned when a question set fails validation. The error
// text carries the offending question.
var ErrInvalidSet = errors.New("invalid question set")

var validate = govalidator.New()

// Loader resolves question sets by ID: the embedded default set first, then
// the imported sets in the history store.
type Loader struct {
	history    *store.HistoryStore
	defaultSet *model.QuestionSet
}

// NewLoader parses and validates the embedded default set and wires the
// ancillary store for imported sets.
func NewLoader(history *store.HistoryStore) (*Loader, error) {
	def, err := Parse(defaultSetJSON)
	if err != nil {
		return nil, fmt.Errorf("bundled default set: %w", err)
	}
	return &Loader{history: history, defaultSet: def}, nil
}

// Parse decodes and validates a question set document. Validation covers
// both tag-level constraints and the structural invariant that every
// correct-option index is within its question's option list.
func Parse(data []byte) (*model.QuestionSet, error) {
	var set model.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse question set: %w", err)
	}
	if err := Validate(&set); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks a question set against its invariants. All failures wrap
// ErrInvalidSet.
func Validate(set *model.QuestionSet) error {
	if err := validate.Struct(set); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSet, err)
	}
	seen := make(map[string]bool, len(set.Questions))
	for i, q := range set.Questions {
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return fmt.Errorf("%w: question %d (%s): correct_option %d out of range for %d options",
				ErrInvalidSet, i, q.ID, q.CorrectOption, len(q.Options))
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: question %d: duplicate id %s", ErrInvalidSet, i, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Default returns the bundled default set.
func (l *Loader) Default() *model.QuestionSet {
	return l.defaultSet
}

// Get resolves a set by ID. Returns ErrSetNotFound if unknown.
func (l *Loader) Get(id string) (*model.QuestionSet, error) {
	if id == l.defaultSet.ID {
		return l.defaultSet, nil
	}
	if l.history != nil {
		set, err := l.history.GetQuestionSet(id)
		if err != nil {
			return nil, err
		}
		if set != nil {
			return set, nil
		}
	}
	return nil, ErrSetNotFound
}

// List returns summaries of the default set and every imported set.
func (l *Loader) List() ([]model.QuestionSetSummary, error) {
	out := []model.QuestionSetSummary{l.defaultSet.Summary()}
	if l.history != nil {
		imported, err := l.history.ListQuestionSets()
		if err != nil {
			return nil, err
		}
		out = append(out, imported...)
	}
	return out, nil
}

// Import validates a user-supplied set, assigns it an ID, and persists it.
func (l *Loader) Import(title string, questions []model.Question) (*model.QuestionSet, error) {
	set := &model.QuestionSet{
		ID:        uuid.New().String(),
		Title:     title,
		Questions: questions,
	}
	if err := Validate(set); err != nil {
		return nil, err
	}
	if l.history == nil {
		return nil, errors.New("no ancillary store configured")
	}
	if err := l.history.SaveQuestionSet(set); err != nil {
		return nil, err
	}
	return set, nil
}

// Shuffle returns a copy of the set with questions in random order. The
// returned order is frozen for the session that requested it.
func Shuffle(set *model.QuestionSet) *model.QuestionSet {
	shuffled := make([]model.Question, len(set.Questions))
	copy(shuffled, set.Questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return &model.QuestionSet{ID: set.ID, Title: set.Title, Questions: shuffled}
}

// Reorder arranges the set's questions to match a previously persisted
// question-ID order, used when resuming a session after a restart.
func Reorder(set *model.QuestionSet, order []string) (*model.QuestionSet, error) {
	if len(order) != len(set.Questions) {
		return nil, fmt.Errorf("order length %d does not match set size %d", len(order), len(set.Questions))
	}
	byID := make(map[string]model.Question, len(set.Questions))
	for _, q := range set.Questions {
		byID[q.ID] = q
	}
	questions := make([]model.Question, 0, len(order))
	for _, id := range order {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("persisted order references unknown question %s", id)
		}
		questions = append(questions, q)
	}
	return &model.QuestionSet{ID: set.ID, Title: set.Title, Questions: questions}, nil
}
