package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"news-forum-bot/models"
)

// StatusManager manages the pipeline status file.
type StatusManager struct {
	statusFile string
	mutex      sync.Mutex
	status     *models.RunStatus
}

// NewStatusManager creates a new status manager, picking up the previous
// status from statusFile when it can be read.
func NewStatusManager(statusFile string) *StatusManager {
	sm := &StatusManager{
		statusFile: statusFile,
		status:     &models.RunStatus{},
	}

	data, err := os.ReadFile(statusFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to read status file %s: %v", statusFile, err)
		}
		return sm
	}
	if err := json.Unmarshal(data, sm.status); err != nil {
		log.Printf("Failed to parse status file %s, starting fresh: %v", statusFile, err)
		sm.status = &models.RunStatus{}
	}
	return sm
}

// RecordRun stores the report of a finished run.
func (sm *StatusManager) RecordRun(report models.RunReport) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.status.LastRun = &report
	sm.status.TotalRuns++
}

// Status returns a copy of the current status.
func (sm *StatusManager) Status() models.RunStatus {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	status := *sm.status
	if sm.status.LastRun != nil {
		last := *sm.status.LastRun
		status.LastRun = &last
	}
	return status
}

// Save commits the current status to the JSON file.
func (sm *StatusManager) Save() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.status.LastUpdated = time.Now()

	// Ensure the directory exists.
	dir := filepath.Dir(sm.statusFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(sm.status, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// Write the file, overwriting it if it exists.
	if err := os.WriteFile(sm.statusFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}

	return nil
}
