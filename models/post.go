package models

// Publication represents one forum mutation recorded in the ledger.
type Publication struct {
	DBID      int64  `db:"db_id"`
	ThreadID  string `db:"thread_id"`
	ChannelID string `db:"channel_id"`
	GuildID   string `db:"guild_id"`
	Title     string `db:"title"`
	Link      string `db:"link"`
	Action    string `db:"action"`    // create / update
	Timestamp int64  `db:"timestamp"` // Unix timestamp
}

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)
