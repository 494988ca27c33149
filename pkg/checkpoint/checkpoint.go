package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"jirascraper/pkg/logger"
)

// Checkpoint represents the resumable progress of one scrape job.
// Offset never moves backwards and ProcessedKeys never shrinks within a run.
type Checkpoint struct {
	JobID         string    `json:"job_id"`
	Offset        int       `json:"offset"`
	ProcessedKeys []string  `json:"processedKeys"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	processed map[string]struct{}
}

// NewCheckpoint returns an empty checkpoint for the given job
func NewCheckpoint(jobID string) *Checkpoint {
	return &Checkpoint{
		JobID:     jobID,
		Offset:    0,
		CreatedAt: time.Now(),
		processed: make(map[string]struct{}),
	}
}

// IsProcessed reports whether a record key has already been emitted
func (c *Checkpoint) IsProcessed(key string) bool {
	_, ok := c.processed[key]
	return ok
}

// MarkProcessed records that a key has been emitted to the sink
func (c *Checkpoint) MarkProcessed(key string) {
	if c.processed == nil {
		c.processed = make(map[string]struct{})
	}
	if _, ok := c.processed[key]; ok {
		return
	}
	c.processed[key] = struct{}{}
	c.ProcessedKeys = append(c.ProcessedKeys, key)
}

// Advance moves the offset forward by the number of items the last page
// returned. Negative or zero deltas are ignored.
func (c *Checkpoint) Advance(items int) {
	if items > 0 {
		c.Offset += items
	}
}

// ProcessedCount returns the number of keys emitted so far
func (c *Checkpoint) ProcessedCount() int {
	return len(c.processed)
}

// rebuildIndex restores the key lookup after loading from disk
func (c *Checkpoint) rebuildIndex() {
	c.processed = make(map[string]struct{}, len(c.ProcessedKeys))
	for _, key := range c.ProcessedKeys {
		c.processed[key] = struct{}{}
	}
}

// Manager handles checkpoint persistence for one job
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a new checkpoint manager. An empty dataDir selects the
// platform data directory.
func NewManager(dataDir, jobID string) (*Manager, error) {
	if dataDir == "" {
		var err error
		dataDir, err = defaultDataDirectory()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
	}

	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(checkpointsDir, fmt.Sprintf("checkpoint-%s.json", jobID)),
		logger:         logger.GetLogger(),
	}, nil
}

// Load loads the checkpoint for the manager's job. A missing checkpoint file
// is not an error: a fresh checkpoint at offset zero is returned instead.
func (m *Manager) Load(jobID string) (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCheckpoint(jobID), nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var cp Checkpoint
	if err := json.NewDecoder(file).Decode(&cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	cp.rebuildIndex()

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"job_id":     cp.JobID,
		"offset":     cp.Offset,
		"processed":  len(cp.ProcessedKeys),
		"updated_at": cp.UpdatedAt,
	})

	return &cp, nil
}

// Save saves the checkpoint to disk atomically: the data is written to a
// temporary file, synced, and renamed over the canonical path so a crash
// mid-write never leaves a partial checkpoint behind.
func (m *Manager) Save(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cp); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"job_id":    cp.JobID,
		"offset":    cp.Offset,
		"processed": len(cp.ProcessedKeys),
	})

	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// Path returns the full path of the checkpoint file
func (m *Manager) Path() string {
	return m.checkpointPath
}

// defaultDataDirectory returns the appropriate data directory for the current OS
func defaultDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "jirascraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "jirascraper")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "jirascraper")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "jirascraper")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
