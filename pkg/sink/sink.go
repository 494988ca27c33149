package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"jirascraper/pkg/logger"
)

// Writer appends records to a working JSONL file and promotes it to the
// final path once the scan completes. The working file is opened in append
// mode so a resumed run keeps accumulating into the same file.
type Writer struct {
	finalPath string
	workPath  string
	file      *os.File
	count     int
	finalized bool
	mu        sync.Mutex
	logger    logger.Logger
}

// NewWriter opens the working file for the given final output path
func NewWriter(finalPath string) (*Writer, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	workPath := finalPath + ".tmp"
	file, err := os.OpenFile(workPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open working file: %w", err)
	}

	return &Writer{
		finalPath: finalPath,
		workPath:  workPath,
		file:      file,
		logger:    logger.GetLogger(),
	}, nil
}

// Append serializes one record as a JSON line and writes it immediately.
// Writes are unbuffered: each record is visible on disk before the next
// one begins.
func (w *Writer) Append(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("sink is closed")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	w.count++
	return nil
}

// Finalize closes the working file and atomically renames it into place.
// A pre-existing file at the final path is moved aside as a .bak backup,
// never deleted. Finalize must only be called after a completed scan.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finalized {
		return nil
	}

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close working file: %w", err)
		}
		w.file = nil
	}

	if _, err := os.Stat(w.finalPath); err == nil {
		backupPath := w.finalPath + ".bak"
		if err := os.Rename(w.finalPath, backupPath); err != nil {
			return fmt.Errorf("failed to back up previous output: %w", err)
		}
		w.logger.InfoWithFields("previous output preserved", map[string]interface{}{
			"backup": backupPath,
		})
	}

	if err := os.Rename(w.workPath, w.finalPath); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	w.finalized = true
	w.logger.InfoWithFields("output finalized", map[string]interface{}{
		"path":    w.finalPath,
		"records": w.count,
	})

	return nil
}

// Close closes the working file without finalizing. The partial working
// file stays on disk as the resume artifact.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Count returns the number of records appended during this run
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// WorkPath returns the path of the working file
func (w *Writer) WorkPath() string {
	return w.workPath
}
