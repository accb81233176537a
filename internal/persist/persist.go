// Package persist keeps a disposable working copy of a question bank on disk.
package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/verte-zerg/quizdrill/internal/bank"
)

// WorkingCopyPrefix marks working copies next to their source file.
const WorkingCopyPrefix = "copy_"

// IOError reports a failed file operation on a source or working copy.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Manager creates, overwrites, and removes working copies.
// The source file is only ever read.
type Manager struct{}

// New returns a Manager.
func New() *Manager {
	return &Manager{}
}

// WorkingCopyPath derives the working copy location for a source file.
func WorkingCopyPath(sourcePath string) string {
	return filepath.Join(filepath.Dir(sourcePath), WorkingCopyPrefix+filepath.Base(sourcePath))
}

// CreateWorkingCopy copies the source verbatim to its working copy path,
// replacing any earlier copy.
func (m *Manager) CreateWorkingCopy(sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", &IOError{Op: "open source", Path: sourcePath, Err: err}
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()

	workingPath := WorkingCopyPath(sourcePath)
	err = writeAtomic(workingPath, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return "", &IOError{Op: "create working copy", Path: workingPath, Err: err}
	}
	return workingPath, nil
}

// Snapshot serializes the bank and replaces the working copy with it.
func (m *Manager) Snapshot(b *bank.Bank, workingPath string) error {
	data, err := b.Marshal(bank.FormatForPath(workingPath))
	if err != nil {
		return &IOError{Op: "encode snapshot", Path: workingPath, Err: err}
	}
	err = writeAtomic(workingPath, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return &IOError{Op: "write snapshot", Path: workingPath, Err: err}
	}
	return nil
}

// DeleteWorkingCopy removes the working copy. A missing file is not an error.
func (m *Manager) DeleteWorkingCopy(workingPath string) error {
	if workingPath == "" {
		return nil
	}
	if err := os.Remove(workingPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "delete working copy", Path: workingPath, Err: err}
	}
	return nil
}

func writeAtomic(path string, fill func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".quizdrill-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := fill(tmpFile); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
