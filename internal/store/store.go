// Package store provides durable local persistence for the session engine:
// a whole-blob session store (file or Redis backed) and an embedded SQLite
// database for ancillary data (attempt history, imported question sets).
package store

import "github.com/quizforge/mockexam-backend/internal/model"

// SessionStore persists the entire SessionState as one serialized blob.
// Every Save fully replaces the stored blob (last-writer-wins; the engine is
// the only writer in-process). Two processes sharing the same backing key
// can clobber each other's saves; accepted limitation, not guarded against.
//
// Save never panics: on serialization or I/O failure it returns false and the
// caller treats the session as unsaved since the last checkpoint. Load
// returns nil when the blob is absent or corrupt; corrupt data must never
// crash the loader.
type SessionStore interface {
	Save(state *model.SessionState) bool
	Load() *model.SessionState
	Clear()
}
