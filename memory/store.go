package memory

import (
	"errors"
	"log"
	"sync"

	"news-forum-bot/models"
	"news-forum-bot/utils"
)

// Store persists the memory ledger as a JSON list of records.
type Store struct {
	path  string
	mutex sync.Mutex
}

// NewStore creates a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns whatever was last persisted. A missing, empty or unreadable
// file yields an empty ledger; the file may be mid-rewrite when read by
// status reporting, so a parse failure is never fatal.
func (s *Store) Load() []models.MemoryRecord {
	var records []models.MemoryRecord
	if err := utils.LoadJSON(s.path, &records); err != nil {
		if !errors.Is(err, utils.ErrFileNotFound) {
			log.Printf("[memory] %v, treating memory as empty", err)
		}
		return []models.MemoryRecord{}
	}
	if records == nil {
		records = []models.MemoryRecord{}
	}
	return records
}

// Save rewrites the ledger file. Only the pipeline run calls it.
func (s *Store) Save(records []models.MemoryRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if records == nil {
		records = []models.MemoryRecord{}
	}
	return utils.SaveJSON(s.path, records)
}
