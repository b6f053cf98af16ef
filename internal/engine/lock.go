package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	sterrors "stacked.dev/st/internal/errors"
)

// Lock is the advisory lock guarding mutating commands. It is a file created
// with O_EXCL, so acquisition either succeeds immediately or fails with
// RepositoryBusyError; it never blocks.
type Lock struct {
	path  string
	Owner string
}

type lockInfo struct {
	PID        int       `json:"pid"`
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// AcquireLock takes dir/lock. A lock left behind by a dead process is reclaimed.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, LockFile)
	owner := ulid.Make().String()

	for attempt := 0; attempt < 2; attempt++ {
		err := createLockFile(path, owner)
		if err == nil {
			return &Lock{path: path, Owner: owner}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create lock %s: %w", path, err)
		}

		holder, readErr := readLock(path)
		if readErr != nil || holder.PID <= 0 || processAlive(holder.PID) {
			pid, holderOwner := 0, ""
			if readErr == nil {
				pid, holderOwner = holder.PID, holder.Owner
			}
			return nil, sterrors.NewRepositoryBusyError(path, pid, holderOwner)
		}
		// Stale lock from a process that no longer exists
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lock %s: %w", path, err)
		}
	}
	return nil, sterrors.NewRepositoryBusyError(path, 0, "")
}

// Release removes the lock file if this lock still owns it
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	holder, err := readLock(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && holder.Owner != l.Owner {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to release lock %s: %w", l.path, err)
	}
	return nil
}

func createLockFile(path, owner string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info := lockInfo{PID: os.Getpid(), Owner: owner, AcquiredAt: time.Now().UTC()}
	if err := json.NewEncoder(f).Encode(info); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write lock: %w", err)
	}
	return f.Close()
}

func readLock(path string) (*lockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse lock %s: %w", path, err)
	}
	return &info, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return !errors.Is(err, os.ErrProcessDone) && !errors.Is(err, syscall.ESRCH)
}
