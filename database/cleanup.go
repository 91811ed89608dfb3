package database

import (
	"fmt"
	"log"
	"time"

	"news-forum-bot/utils"
)

// LedgerRetentionDays is how long publication records are kept.
const LedgerRetentionDays = 31

// CleanupOldPublications deletes ledger rows older than LedgerRetentionDays
// and returns how many were removed.
func (l *Ledger) CleanupOldPublications(now time.Time) (int64, error) {
	log.Println("Starting cleanup of old publications...")

	cutoff := now.AddDate(0, 0, -LedgerRetentionDays).Unix()
	stmt, err := l.db.Prepare("DELETE FROM publications WHERE timestamp < ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete statement: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Printf("Successfully cleaned up %d old publications", rowsAffected)
	if rowsAffected > 0 {
		utils.Info("CleanupOldPublications", "Cleanup", fmt.Sprintf("Successfully cleaned up %d old publications", rowsAffected))
	}
	return rowsAffected, nil
}
