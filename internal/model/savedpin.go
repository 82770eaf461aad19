package model

import "time"

// SavedPin links one user to one pin they bookmarked.
//
// The (UserID, PinID) pair is unique: saving the same pin twice is rejected
// rather than duplicated, and the database's uniqueness constraint arbitrates
// concurrent attempts. Rows are removed when the user unsaves the pin and
// cascade away when either the user or the pin is deleted.
type SavedPin struct {
	ID      string    `json:"id"      db:"id"`
	UserID  string    `json:"userId"  db:"user_id"`
	PinID   string    `json:"pinId"   db:"pin_id"`
	SavedAt time.Time `json:"savedAt" db:"saved_at"`

	// Pin is attached on the save response so the client can render the
	// bookmarked card (with its author) immediately.
	Pin *Pin `json:"pin,omitempty"`
}
