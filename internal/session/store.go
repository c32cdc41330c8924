package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/warroom-dev/warroom/internal/errors"
)

// RecordFileName is the name of the session data file within a session
// directory.
const RecordFileName = "session.json"

// Store is a file-backed session archive. Each session owns a directory
// under the archive root holding session.json plus optional per-phase
// artifact files. All writes are atomic (write-temp-then-rename), so the
// archive is never left in a partially-written state.
type Store struct {
	root string
	mu   sync.RWMutex
}

// NewStore creates a store rooted at the given archive directory, creating
// it if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the archive root directory.
func (s *Store) Root() string {
	return s.root
}

// SessionDir returns the directory for a session id.
func (s *Store) SessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

// Save persists a session record atomically.
func (s *Store) Save(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.SessionID == "" {
		return errors.NewSessionError("record has no session id", nil)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.NewSessionError("failed to marshal record", err).WithSessionID(record.SessionID)
	}

	dir := s.SessionDir(record.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewSessionError("failed to create session directory", err).WithSessionID(record.SessionID)
	}

	return atomicWriteFile(filepath.Join(dir, RecordFileName), data, 0644)
}

// Load retrieves a session record by id.
func (s *Store) Load(sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.SessionDir(sessionID), RecordFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSessionError("load failed", errors.ErrSessionNotFound).WithSessionID(sessionID)
		}
		return nil, errors.NewSessionError("failed to read record", err).WithSessionID(sessionID)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.NewSessionError("load failed", errors.Join(errors.ErrSessionCorrupted, err)).WithSessionID(sessionID)
	}
	return &record, nil
}

// SaveArtifact writes a human-readable phase artifact under the session's
// phase directory and returns its path relative to the session directory.
func (s *Store) SaveArtifact(sessionID, phase, name string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.SessionDir(sessionID), phase)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.NewSessionError("failed to create phase directory", err).WithSessionID(sessionID)
	}

	path := filepath.Join(dir, name)
	if err := atomicWriteFile(path, content, 0644); err != nil {
		return "", errors.NewSessionError("failed to write artifact", err).WithSessionID(sessionID)
	}
	return filepath.Join(phase, name), nil
}

// Info contains summary information about an archived session, used for
// listing without loading whole records.
type Info struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	Status       Status    `json:"status"`
	CurrentPhase string    `json:"current_phase"`
	Problem      string    `json:"problem_statement"`
	Dir          string    `json:"dir"`
}

// List returns summaries for every readable session in the archive, newest
// first. Unreadable directories are skipped.
func (s *Store) List() ([]*Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive root: %w", err)
	}

	var infos []*Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := s.loadLocked(entry.Name())
		if err != nil {
			continue
		}
		infos = append(infos, &Info{
			SessionID:    record.SessionID,
			CreatedAt:    record.CreatedAt,
			Status:       record.Status,
			CurrentPhase: record.CurrentPhase,
			Problem:      record.Problem,
			Dir:          s.SessionDir(record.SessionID),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// loadLocked reads a record without taking the store lock. Caller holds it.
func (s *Store) loadLocked(sessionID string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.SessionDir(sessionID), RecordFileName))
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// atomicWriteFile writes data to a file atomically by writing to a
// temporary file first, then renaming. This ensures the target file is
// never in a partially-written state.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Temp file must live in the same directory for the rename to be atomic.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
