package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quizforge/mockexam-backend/internal/model"
)

const historySchemaVersion = 1

const historySchema = `
CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    set_id TEXT NOT NULL,
    set_title TEXT NOT NULL,
    started_at TEXT NOT NULL,
    ended_at TEXT NOT NULL,
    duration_seconds INTEGER NOT NULL,
    score INTEGER NOT NULL,
    total INTEGER NOT NULL,
    results_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS question_sets (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    questions_json TEXT NOT NULL,
    imported_at TEXT NOT NULL
);
`

// AttemptRecord is one finalized attempt as stored in history.
type AttemptRecord struct {
	ID              string         `json:"id"`
	SetID           string         `json:"set_id"`
	SetTitle        string         `json:"set_title"`
	StartedAt       time.Time      `json:"started_at"`
	EndedAt         time.Time      `json:"ended_at"`
	DurationSeconds int            `json:"duration_seconds"`
	Score           int            `json:"score"`
	Total           int            `json:"total"`
	Results         *model.Results `json:"results,omitempty"`
}

// HistoryStore is the ancillary SQLite database: finalized attempt history
// and user-imported question sets. The engine never touches it; the HTTP
// layer writes a row after each finalization.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at dbPath and applies
// the schema.
func OpenHistory(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", historySchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set schema version: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the underlying database.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// AppendAttempt records a finalized attempt.
func (h *HistoryStore) AppendAttempt(rec *AttemptRecord) error {
	resultsJSON, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("serialize results: %w", err)
	}
	_, err = h.db.Exec(
		`INSERT INTO attempts (id, set_id, set_title, started_at, ended_at, duration_seconds, score, total, results_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SetID, rec.SetTitle,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
		rec.DurationSeconds, rec.Score, rec.Total, string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListAttempts returns finalized attempts, newest first. Results payloads are
// omitted from the listing.
func (h *HistoryStore) ListAttempts(limit int) ([]AttemptRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.Query(
		`SELECT id, set_id, set_title, started_at, ended_at, duration_seconds, score, total
		 FROM attempts ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &rec.SetID, &rec.SetTitle, &startedAt, &endedAt,
			&rec.DurationSeconds, &rec.Score, &rec.Total); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			continue // Skip rows with unreadable timestamps rather than failing the listing
		}
		ended, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			continue
		}
		rec.StartedAt, rec.EndedAt = started, ended
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetAttempt returns one attempt including its full results payload.
func (h *HistoryStore) GetAttempt(id string) (*AttemptRecord, error) {
	var rec AttemptRecord
	var startedAt, endedAt, resultsJSON string
	err := h.db.QueryRow(
		`SELECT id, set_id, set_title, started_at, ended_at, duration_seconds, score, total, results_json
		 FROM attempts WHERE id = ?`, id).
		Scan(&rec.ID, &rec.SetID, &rec.SetTitle, &startedAt, &endedAt,
			&rec.DurationSeconds, &rec.Score, &rec.Total, &resultsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parse attempt started_at: %w", err)
	}
	if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return nil, fmt.Errorf("parse attempt ended_at: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &rec.Results); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &rec, nil
}

// SaveQuestionSet stores a user-imported question set.
func (h *HistoryStore) SaveQuestionSet(set *model.QuestionSet) error {
	questionsJSON, err := json.Marshal(set.Questions)
	if err != nil {
		return fmt.Errorf("serialize questions: %w", err)
	}
	_, err = h.db.Exec(
		`INSERT INTO question_sets (id, title, questions_json, imported_at) VALUES (?, ?, ?, ?)`,
		set.ID, set.Title, string(questionsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert question set: %w", err)
	}
	return nil
}

// GetQuestionSet returns a stored question set, or nil if absent.
func (h *HistoryStore) GetQuestionSet(id string) (*model.QuestionSet, error) {
	var set model.QuestionSet
	var questionsJSON string
	err := h.db.QueryRow(
		`SELECT id, title, questions_json FROM question_sets WHERE id = ?`, id).
		Scan(&set.ID, &set.Title, &questionsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	if err := json.Unmarshal([]byte(questionsJSON), &set.Questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	return &set, nil
}

// ListQuestionSets returns summaries of all stored sets.
func (h *HistoryStore) ListQuestionSets() ([]model.QuestionSetSummary, error) {
	rows, err := h.db.Query(`SELECT id, title, questions_json FROM question_sets ORDER BY imported_at`)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer rows.Close()

	var out []model.QuestionSetSummary
	for rows.Next() {
		var id, title, questionsJSON string
		if err := rows.Scan(&id, &title, &questionsJSON); err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		var questions []model.Question
		if err := json.Unmarshal([]byte(questionsJSON), &questions); err != nil {
			continue // Skip unreadable rows rather than failing the listing
		}
		out = append(out, model.QuestionSetSummary{ID: id, Title: title, QuestionCount: len(questions)})
	}
	return out, rows.Err()
}
