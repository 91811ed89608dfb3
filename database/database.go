package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"news-forum-bot/models"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// InitDB initializes the database connection. It takes the database path as input.
func InitDB(dbPath string) (*sql.DB, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createPublicationsTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create publications table: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return db, nil
}

// createPublicationsTable creates the 'publications' table if it doesn't exist.
func createPublicationsTable(db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS publications (
        db_id INTEGER PRIMARY KEY AUTOINCREMENT,
        thread_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        guild_id TEXT,
        title TEXT,
        link TEXT,
        action TEXT NOT NULL,
        timestamp INTEGER NOT NULL
    );`
	if _, err := db.Exec(query); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_publications_guild_time ON publications (guild_id, timestamp)`)
	return err
}

// Ledger records forum mutations made by the publication engine.
type Ledger struct {
	db *sql.DB
}

// NewLedger wraps an initialized database.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// RecordPublication saves a single thread creation or update.
func (l *Ledger) RecordPublication(p models.Publication) error {
	query := `INSERT INTO publications (thread_id, channel_id, guild_id, title, link, action, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := l.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for saving publication: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(p.ThreadID, p.ChannelID, p.GuildID, p.Title, p.Link, p.Action, p.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to execute statement for saving publication of thread %s: %w", p.ThreadID, err)
	}
	return nil
}

// RecentPublications returns up to limit of a guild's newest publications.
// An empty guildID returns publications of every guild.
func (l *Ledger) RecentPublications(guildID string, limit int) ([]models.Publication, error) {
	query := `SELECT db_id, thread_id, channel_id, guild_id, title, link, action, timestamp
        FROM publications WHERE (? = '' OR guild_id = ?) ORDER BY timestamp DESC, db_id DESC LIMIT ?`
	rows, err := l.db.Query(query, guildID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query publications: %w", err)
	}
	defer rows.Close()

	var publications []models.Publication
	for rows.Next() {
		var p models.Publication
		var guild, title, link sql.NullString
		if err := rows.Scan(&p.DBID, &p.ThreadID, &p.ChannelID, &guild, &title, &link, &p.Action, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}
		p.GuildID = guild.String
		p.Title = title.String
		p.Link = link.String
		publications = append(publications, p)
	}
	return publications, rows.Err()
}

// CountSince returns how many of a guild's publications of each action
// happened at or after the given unix timestamp. An empty guildID counts
// every guild.
func (l *Ledger) CountSince(guildID string, since int64) (map[string]int, error) {
	query := `SELECT action, COUNT(*) FROM publications
        WHERE (? = '' OR guild_id = ?) AND timestamp >= ? GROUP BY action`
	rows, err := l.db.Query(query, guildID, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count publications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("failed to scan publication count: %w", err)
		}
		counts[action] = n
	}
	return counts, rows.Err()
}
