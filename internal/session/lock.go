package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/warroom-dev/warroom/internal/errors"
	"github.com/warroom-dev/warroom/internal/logging"
)

// LockFileName is the name of the lock file within a session directory.
const LockFileName = "session.lock"

// Lock represents an acquired exclusive session lock. A lock prevents two
// processes from driving the same deliberation concurrently.
type Lock struct {
	SessionID string    `json:"session_id"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`

	// Internal fields (not serialized)
	lockFile string
	logger   *logging.Logger
}

// AcquireLock attempts to acquire an exclusive lock on the session
// directory. Returns an error wrapping errors.ErrSessionLocked if the
// session is already in use by a live process; stale locks left by dead
// processes are cleaned up. The logger may be nil.
func AcquireLock(sessionDir, sessionID string, logger *logging.Logger) (*Lock, error) {
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	lockPath := filepath.Join(sessionDir, LockFileName)

	if existing, err := ReadLock(lockPath); err == nil {
		if isProcessAlive(existing.PID) {
			if logger != nil {
				logger.Error("failed to acquire lock",
					"session_id", sessionID,
					"holder_pid", existing.PID,
					"holder_host", existing.Hostname,
				)
			}
			return nil, fmt.Errorf("%w: PID %d on %s", errors.ErrSessionLocked, existing.PID, existing.Hostname)
		}
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock: %w", err)
		}
		if logger != nil {
			logger.Warn("stale lock cleaned", "session_id", sessionID, "old_pid", existing.PID)
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	lock := &Lock{
		SessionID: sessionID,
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
		lockFile:  lockPath,
		logger:    logger,
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	// O_EXCL fails if the file already exists, protecting against a
	// concurrent acquirer winning the race.
	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			if existing, readErr := ReadLock(lockPath); readErr == nil {
				return nil, fmt.Errorf("%w: PID %d on %s", errors.ErrSessionLocked, existing.PID, existing.Hostname)
			}
			return nil, errors.ErrSessionLocked
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	if logger != nil {
		logger.Debug("lock acquired", "session_id", sessionID, "pid", lock.PID)
	}
	return lock, nil
}

// Release removes the lock file. Safe to call more than once.
func (l *Lock) Release() error {
	if l.lockFile == "" {
		return nil
	}
	if err := os.Remove(l.lockFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if l.logger != nil {
		l.logger.Debug("lock released", "session_id", l.SessionID)
	}
	l.lockFile = ""
	return nil
}

// Alive reports whether the process holding this lock still exists.
func (l *Lock) Alive() bool {
	return isProcessAlive(l.PID)
}

// ReadLock parses a lock file.
func ReadLock(lockPath string) (*Lock, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return nil, err
	}
	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("invalid lock file: %w", err)
	}
	return &lock, nil
}

// isProcessAlive reports whether a process with the given PID exists.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 performs error checking without sending a signal.
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
