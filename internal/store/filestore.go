package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/model"
)

// sessionFileName is the fixed blob name under the data directory. There is
// exactly one session blob; a new session overwrites it wholesale.
const sessionFileName = "session.json"

// FileStore persists the session blob as one JSON file, written atomically
// (temp file + rename) so a crash mid-write never leaves a torn blob.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore creates a FileStore rooted at dataDir, creating the directory
// if needed.
func NewFileStore(dataDir string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{
		path: filepath.Join(dataDir, sessionFileName),
		log:  log.With().Str("component", "file_store").Logger(),
	}, nil
}

// Save writes the state blob. Returns false on any failure.
func (s *FileStore) Save(state *model.SessionState) bool {
	data, err := json.Marshal(state)
	if err != nil {
		s.log.Warn().Err(err).Msg("Serialize session state failed")
		return false
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Warn().Err(err).Msg("Write session blob failed")
		return false
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Warn().Err(err).Msg("Rename session blob failed")
		return false
	}
	return true
}

// Load reads the state blob. Returns nil if absent or corrupt.
func (s *FileStore) Load() *model.SessionState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Msg("Read session blob failed")
		}
		return nil
	}

	var state model.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt blob is treated as absent.
		s.log.Warn().Err(err).Msg("Corrupt session blob, ignoring")
		return nil
	}
	return &state
}

// Clear removes the stored blob if present.
func (s *FileStore) Clear() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Msg("Remove session blob failed")
	}
}
