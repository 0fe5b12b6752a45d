package models

import "time"

// LedgerEntry is one append-only resource grant. Balances are the sum of a
// club's entries; nothing here ever updates or deletes a row.
type LedgerEntry struct {
	ID        int       `json:"id" db:"id"`
	ClubID    int       `json:"club_id" db:"club_id"`
	Resource  string    `json:"resource" db:"resource"`
	Amount    int       `json:"amount" db:"amount"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Team is an interclub roster reference. Rosters are owned by clubs; the
// engine only reads them to build and validate lineups.
type Team struct {
	ID        int       `json:"id" db:"id"`
	ClubID    int       `json:"club_id" db:"club_id"`
	Name      string    `json:"name" db:"name"`
	PlayerIDs []int     `json:"player_ids" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
