// Package engine implements the timed question-session engine: the sole
// authority over session state, navigation, answer capture, timing, and
// one-shot submission.
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/countdown"
	"github.com/quizforge/mockexam-backend/internal/model"
	"github.com/quizforge/mockexam-backend/internal/store"
)

// WarningScope distinguishes which clock a time warning came from.
type WarningScope string

const (
	ScopeSession  WarningScope = "session"
	ScopeQuestion WarningScope = "question"
)

// Finalized is the summary handed to OnSessionCompleted once a session is
// submitted (manually, by expiry, or by navigating past the last question).
type Finalized struct {
	AttemptID       string
	SetID           string
	SetTitle        string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	Results         *model.Results
}

// Hooks are the engine's outbound events. All fields are optional and are
// invoked outside the engine lock, so handlers may call back into the engine.
type Hooks struct {
	OnQuestionChanged   func(index int)
	OnTimeWarning       func(scope WarningScope, thresholdSeconds int)
	OnTick              func(remainingSeconds int)
	OnSessionCompleted  func(f Finalized)
	OnPersistenceFailed func()
}

// Config tunes engine behavior. Zero values fall back to defaults.
type Config struct {
	// AutosaveInterval is the period of the write-through checkpoint that
	// captures in-flight time accumulation. Default 5s.
	AutosaveInterval time.Duration
	// SessionWarnings are the session-clock thresholds (seconds remaining)
	// at which to fire a warning. Default [300, 60].
	SessionWarnings []int
	// QuestionWarnings are the per-question-clock thresholds. Default [10].
	QuestionWarnings []int
	// Clock is injectable for tests. Default system clock.
	Clock countdown.Clock
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.AutosaveInterval <= 0 {
		out.AutosaveInterval = 5 * time.Second
	}
	if out.SessionWarnings == nil {
		out.SessionWarnings = []int{300, 60}
	}
	if out.QuestionWarnings == nil {
		out.QuestionWarnings = []int{10}
	}
	if out.Clock == nil {
		out.Clock = countdown.SystemClock()
	}
	return out
}

// Engine orchestrates QuestionSet + SessionState + Countdown + SessionStore.
// One engine drives at most one attempt at a time; a new session discards the
// previous state entirely.
//
// All state is guarded by one mutex. Countdown callbacks run on timer
// goroutines and re-enter through the public methods, so the auto-submit vs
// manual-submit race resolves to exactly one winner.
type Engine struct {
	mu sync.Mutex

	log   zerolog.Logger
	store store.SessionStore
	cfg   Config
	hooks Hooks

	set       *model.QuestionSet
	state     *model.SessionState
	attemptID string

	sessionClock  *countdown.Countdown
	questionClock *countdown.Countdown

	// activeSince marks when the current question became active; flushed
	// into TimeSpentSeconds on navigation, checkpoint, and finalization.
	activeSince time.Time

	unsaved      bool
	autosaveStop chan struct{}
}

// New creates an engine. The store and hooks are injected by the composition
// root; the engine holds no global state.
func New(st store.SessionStore, cfg Config, log zerolog.Logger, hooks Hooks) *Engine {
	return &Engine{
		log:   log.With().Str("component", "session_engine").Logger(),
		store: st,
		cfg:   cfg.withDefaults(),
		hooks: hooks,
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────

// StartSession begins a fresh attempt over the given set. Fails with
// ErrSessionActive if an unfinished session exists, ErrInvalidArgument on a
// non-positive duration or empty set.
func (e *Engine) StartSession(set *model.QuestionSet, durationSeconds int) error {
	e.mu.Lock()
	if e.state != nil && !e.state.Finished() {
		e.mu.Unlock()
		return ErrSessionActive
	}
	if set == nil || set.Len() == 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: empty question set", ErrInvalidArgument)
	}
	if durationSeconds <= 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: duration %d", ErrInvalidArgument, durationSeconds)
	}

	order := make([]string, set.Len())
	for i, q := range set.Questions {
		order[i] = q.ID
	}

	now := e.cfg.Clock.Now()
	e.set = set
	e.state = model.NewSessionState(set.ID, order, durationSeconds, now)
	e.attemptID = uuid.New().String()
	e.activeSince = now

	e.startSessionClockLocked(time.Duration(durationSeconds)*time.Second, e.cfg.SessionWarnings)
	e.startQuestionClockLocked(0)
	e.startAutosaveLocked()
	e.persistLocked()

	e.log.Info().
		Str("attempt_id", e.attemptID).
		Str("set_id", set.ID).
		Int("questions", set.Len()).
		Int("duration_seconds", durationSeconds).
		Msg("Session started")
	hook := e.hooks.OnQuestionChanged
	e.mu.Unlock()

	if hook != nil {
		hook(0)
	}
	return nil
}

// Resume restores a persisted, unfinished session after a process restart.
// Remaining time is recomputed from the wall clock (start + duration vs now);
// an already-expired attempt is finalized immediately.
func (e *Engine) Resume(set *model.QuestionSet, state *model.SessionState) error {
	e.mu.Lock()
	if e.state != nil && !e.state.Finished() {
		e.mu.Unlock()
		return ErrSessionActive
	}
	if set == nil || state == nil || set.Len() != len(state.Answers) {
		e.mu.Unlock()
		return fmt.Errorf("%w: state does not match set", ErrInvalidArgument)
	}

	e.set = set
	e.state = state
	e.attemptID = uuid.New().String()

	if state.Finished() {
		// Nothing to run; results stay viewable.
		e.mu.Unlock()
		return nil
	}

	now := e.cfg.Clock.Now()
	e.activeSince = now
	elapsed := now.Sub(state.StartedAt)
	remaining := time.Duration(state.ConfiguredDurationSeconds)*time.Second - elapsed

	if remaining <= 0 {
		e.log.Info().Str("set_id", set.ID).Msg("Resumed session already expired, finalizing")
		f := e.finalizeLocked()
		hook := e.hooks.OnSessionCompleted
		e.mu.Unlock()
		if hook != nil {
			hook(f)
		}
		return nil
	}

	// Thresholds that already passed before the restart stay silent.
	warnings := make([]int, 0, len(e.cfg.SessionWarnings))
	for _, th := range e.cfg.SessionWarnings {
		if float64(th) < remaining.Seconds() {
			warnings = append(warnings, th)
		}
	}
	e.startSessionClockLocked(remaining, warnings)
	e.startQuestionClockLocked(state.CurrentIndex)
	e.startAutosaveLocked()
	e.persistLocked()

	e.log.Info().
		Str("set_id", set.ID).
		Int("current_index", state.CurrentIndex).
		Float64("remaining_seconds", remaining.Seconds()).
		Msg("Session resumed")
	e.mu.Unlock()
	return nil
}

// Submit finalizes the session: one-shot. The countdown's completion callback
// and a manual submit may race; the mutex-guarded terminal check lets exactly
// one of them perform the transition.
func (e *Engine) Submit() error {
	e.mu.Lock()
	if e.state == nil {
		e.mu.Unlock()
		return ErrNoActiveSession
	}
	if e.state.Finished() {
		e.mu.Unlock()
		return ErrAlreadySubmitted
	}
	f := e.finalizeLocked()
	hook := e.hooks.OnSessionCompleted
	e.mu.Unlock()

	if hook != nil {
		hook(f)
	}
	return nil
}

// autoSubmit is the session countdown's completion callback. Losing the race
// against a manual submit is expected, not an error.
func (e *Engine) autoSubmit() {
	if err := e.Submit(); err != nil {
		e.log.Debug().Err(err).Msg("Auto-submit skipped")
	}
}

// ─── Mutators ───────────────────────────────────────────────────────

// SelectAnswer records an answer for the current question. Reselecting the
// same option is a no-op; a different option overwrites. An out-of-range
// option fails with ErrInvalidArgument and mutates nothing.
func (e *Engine) SelectAnswer(option int) error {
	e.mu.Lock()
	if err := e.requireActiveLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	q := e.set.Questions[e.state.CurrentIndex]
	if option < 0 || option >= len(q.Options) {
		e.mu.Unlock()
		return fmt.Errorf("%w: option %d out of range for %d options", ErrInvalidArgument, option, len(q.Options))
	}
	if e.state.Answers[e.state.CurrentIndex] == option {
		e.mu.Unlock()
		return nil
	}
	e.state.Answers[e.state.CurrentIndex] = option
	e.persistLocked()
	e.mu.Unlock()
	return nil
}

// ClearAnswer resets the current question to unanswered.
func (e *Engine) ClearAnswer() error {
	e.mu.Lock()
	if err := e.requireActiveLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.state.Answers[e.state.CurrentIndex] = model.Unanswered
	e.persistLocked()
	e.mu.Unlock()
	return nil
}

// ToggleBookmark flips the bookmark on the current question.
func (e *Engine) ToggleBookmark() error {
	e.mu.Lock()
	if err := e.requireActiveLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	idx := e.state.CurrentIndex
	if e.state.Bookmarked[idx] {
		delete(e.state.Bookmarked, idx)
	} else {
		e.state.Bookmarked[idx] = true
	}
	e.persistLocked()
	e.mu.Unlock()
	return nil
}

// Navigate moves the current index by delta. Below zero clamps to zero.
// Moving at or past the end is the implicit finish: "Next" on the last
// question submits the session. The outgoing question's active time is
// flushed before the move.
func (e *Engine) Navigate(delta int) error {
	e.mu.Lock()
	if err := e.requireActiveLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	target := e.state.CurrentIndex + delta
	if target < 0 {
		target = 0
	}
	if target == e.state.CurrentIndex {
		e.mu.Unlock()
		return nil
	}

	if target >= e.set.Len() {
		f := e.finalizeLocked()
		hook := e.hooks.OnSessionCompleted
		e.mu.Unlock()
		if hook != nil {
			hook(f)
		}
		return nil
	}

	e.flushTimeLocked()
	e.state.CurrentIndex = target
	e.startQuestionClockLocked(target)
	e.persistLocked()
	hook := e.hooks.OnQuestionChanged
	e.mu.Unlock()

	if hook != nil {
		hook(target)
	}
	return nil
}

// ─── Accessors ──────────────────────────────────────────────────────

// Snapshot is a read-only view of engine state for the presentation layer.
type Snapshot struct {
	Active            bool                         `json:"active"`
	Finished          bool                         `json:"finished"`
	AttemptID         string                       `json:"attempt_id,omitempty"`
	SetID             string                       `json:"set_id,omitempty"`
	SetTitle          string                       `json:"set_title,omitempty"`
	TotalQuestions    int                          `json:"total_questions"`
	CurrentIndex      int                          `json:"current_index"`
	Question          *model.QuestionForCandidate  `json:"question,omitempty"`
	Answers           []int                        `json:"answers,omitempty"`
	BookmarkedIndices []int                        `json:"bookmarked_indices"`
	TimeSpentSeconds  []float64                    `json:"time_spent_seconds,omitempty"`
	RemainingSeconds  int                          `json:"remaining_seconds"`
	// RemainingQuestionSeconds is -1 when the current question has no limit.
	RemainingQuestionSeconds int        `json:"remaining_question_seconds"`
	StartedAt                *time.Time `json:"started_at,omitempty"`
	EndedAt                  *time.Time `json:"ended_at,omitempty"`
	Unsaved                  bool       `json:"unsaved"`
}

// Snapshot returns the current state view. Safe to call at any time.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return Snapshot{RemainingQuestionSeconds: -1}
	}

	snap := Snapshot{
		Active:                   !e.state.Finished(),
		Finished:                 e.state.Finished(),
		AttemptID:                e.attemptID,
		SetID:                    e.set.ID,
		SetTitle:                 e.set.Title,
		TotalQuestions:           e.set.Len(),
		CurrentIndex:             e.state.CurrentIndex,
		Answers:                  append([]int(nil), e.state.Answers...),
		BookmarkedIndices:        bookmarkIndices(e.state.Bookmarked),
		TimeSpentSeconds:         append([]float64(nil), e.state.TimeSpentSeconds...),
		RemainingQuestionSeconds: -1,
		Unsaved:                  e.unsaved,
	}
	started := e.state.StartedAt
	snap.StartedAt = &started
	snap.EndedAt = e.state.EndedAt

	if !e.state.Finished() {
		q := e.set.Questions[e.state.CurrentIndex].ForCandidate()
		snap.Question = &q
		if e.sessionClock != nil {
			snap.RemainingSeconds = int(e.sessionClock.Remaining() / time.Second)
		}
		if e.questionClock != nil {
			snap.RemainingQuestionSeconds = int(e.questionClock.Remaining() / time.Second)
		}
	}
	return snap
}

func bookmarkIndices(bookmarked map[int]bool) []int {
	out := make([]int, 0, len(bookmarked))
	for idx, on := range bookmarked {
		if on {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Results returns the finalized results. ErrNoActiveSession if no session
// was ever started, ErrNoResults before submission.
func (e *Engine) Results() (*model.Results, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, ErrNoActiveSession
	}
	if e.state.Results == nil {
		return nil, ErrNoResults
	}
	return e.state.Results, nil
}

// Unsaved reports whether the last persistence attempt failed, i.e. progress
// may not survive a reload.
func (e *Engine) Unsaved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unsaved
}

// ─── Internal (lock held) ───────────────────────────────────────────

func (e *Engine) requireActiveLocked() error {
	if e.state == nil {
		return ErrNoActiveSession
	}
	if e.state.Finished() {
		return ErrAlreadySubmitted
	}
	return nil
}

// flushTimeLocked folds the active question's in-flight time into
// TimeSpentSeconds and resets the reference point.
func (e *Engine) flushTimeLocked() {
	now := e.cfg.Clock.Now()
	idx := e.state.CurrentIndex
	e.state.TimeSpentSeconds[idx] += now.Sub(e.activeSince).Seconds()
	e.activeSince = now
}

func (e *Engine) finalizeLocked() Finalized {
	e.flushTimeLocked()

	now := e.cfg.Clock.Now()
	e.state.EndedAt = &now

	if e.sessionClock != nil {
		e.sessionClock.Stop()
	}
	if e.questionClock != nil {
		e.questionClock.Stop()
		e.questionClock = nil
	}
	if e.autosaveStop != nil {
		close(e.autosaveStop)
		e.autosaveStop = nil
	}

	e.state.Results = Score(e.set, e.state)
	e.persistLocked()

	e.log.Info().
		Str("attempt_id", e.attemptID).
		Int("score", e.state.Results.Score).
		Int("total", e.state.Results.Total).
		Msg("Session finalized")

	return Finalized{
		AttemptID:       e.attemptID,
		SetID:           e.set.ID,
		SetTitle:        e.set.Title,
		StartedAt:       e.state.StartedAt,
		EndedAt:         now,
		DurationSeconds: e.state.ConfiguredDurationSeconds,
		Results:         e.state.Results,
	}
}

func (e *Engine) startSessionClockLocked(duration time.Duration, warnings []int) {
	if e.sessionClock != nil {
		e.sessionClock.Stop()
	}
	e.sessionClock = countdown.New(e.cfg.Clock, duration, warnings, countdown.Callbacks{
		OnTick: func(remaining int) {
			if e.hooks.OnTick != nil {
				e.hooks.OnTick(remaining)
			}
		},
		OnWarning: func(threshold int) {
			e.log.Info().Int("threshold_seconds", threshold).Msg("Session time warning")
			if e.hooks.OnTimeWarning != nil {
				e.hooks.OnTimeWarning(ScopeSession, threshold)
			}
		},
		OnComplete: e.autoSubmit,
	})
	e.sessionClock.Start()
}

// startQuestionClockLocked (re)starts the per-question clock for index i, or
// clears it when the question carries no time limit. Expiry of a question
// clock only notifies; it never forces navigation.
func (e *Engine) startQuestionClockLocked(i int) {
	if e.questionClock != nil {
		e.questionClock.Stop()
		e.questionClock = nil
	}
	limit := e.set.Questions[i].TimeLimitSeconds
	if limit <= 0 {
		return
	}
	e.questionClock = countdown.New(e.cfg.Clock, time.Duration(limit)*time.Second, e.cfg.QuestionWarnings, countdown.Callbacks{
		OnWarning: func(threshold int) {
			if e.hooks.OnTimeWarning != nil {
				e.hooks.OnTimeWarning(ScopeQuestion, threshold)
			}
		},
		OnComplete: func() {
			if e.hooks.OnTimeWarning != nil {
				e.hooks.OnTimeWarning(ScopeQuestion, 0)
			}
		},
	})
	e.questionClock.Start()
}

func (e *Engine) startAutosaveLocked() {
	if e.autosaveStop != nil {
		close(e.autosaveStop)
	}
	stop := make(chan struct{})
	e.autosaveStop = stop
	interval := e.cfg.AutosaveInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.checkpoint()
			}
		}
	}()
}

// checkpoint is the periodic autosave: flush in-flight time, persist.
func (e *Engine) checkpoint() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil || e.state.Finished() {
		return
	}
	e.flushTimeLocked()
	e.persistLocked()
}

// persistLocked is write-through persistence. A failed save degrades to the
// unsaved flag and a warning; it never blocks the session.
func (e *Engine) persistLocked() {
	ok := e.store.Save(e.state.Clone())
	if !ok {
		if !e.unsaved && e.hooks.OnPersistenceFailed != nil {
			// Fire once per failure streak, from a fresh goroutine to stay
			// out of the lock.
			go e.hooks.OnPersistenceFailed()
		}
		e.unsaved = true
		e.log.Warn().Msg("Session state not persisted, progress may not survive a reload")
		return
	}
	e.unsaved = false
}

// Shutdown flushes and persists in-flight state, used on graceful stop.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil || e.state.Finished() {
		return
	}
	e.flushTimeLocked()
	e.persistLocked()
}
