package domain

import "time"

// Summary is the current AI-generated summary. Immutable once produced;
// at most one is current on the client at any time.
type Summary struct {
	Text      string
	UserID    string
	CreatedAt time.Time
}

// Translation is derived from the summary that was current at translate
// time. A new summary makes it conceptually stale.
type Translation struct {
	Text     string
	LangCode string
}

// Answer is tied to the summary used as context at ask time.
type Answer struct {
	Text     string
	Question string
}

// HistoryEntry is a previously produced summary. Entries are read-only and
// keep the server-defined order.
type HistoryEntry struct {
	ID        string
	Summary   string
	CreatedAt time.Time
}
