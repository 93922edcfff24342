// Package pid guards against two monitors running against the same broker
// from one host.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/econrcx/internal/errors"
)

const (
	pidFile = "econrcx.pid"
)

// Path returns the location of the PID file
func Path() string {
	return filepath.Join(os.TempDir(), pidFile)
}

// Write writes the current process ID to the PID file. A stale file left by
// a dead process is replaced.
func Write() error {
	errFactory := errors.New()
	path := Path()

	if data, err := os.ReadFile(path); err == nil {
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err == nil && running(pid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, pid)
		}
	} else if !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrPIDFile, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrPIDFile, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	if err := os.Remove(Path()); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrPIDFile, err)
	}

	return nil
}

func running(pid int) bool {
	if pid <= 0 || pid == os.Getpid() {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
