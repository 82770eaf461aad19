package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"devboards/internal/apperror"
	"devboards/internal/model"
	"devboards/internal/repository"
)

// compile-time check that *DB implements repository.SavedPinRepository
var _ repository.SavedPinRepository = (*DB)(nil)

// SavePin bookmarks pinID for userID.
//
// The UNIQUE(user_id, pin_id) constraint does the duplicate detection: when
// two saves race for the same pair, the database lets exactly one insert
// through and the other comes back here as ErrConflict. No application-level
// locking is involved.
func (db *DB) SavePin(ctx context.Context, userID, pinID string) (*model.SavedPin, error) {
	sp := &model.SavedPin{
		ID:      xid.New().String(),
		UserID:  userID,
		PinID:   pinID,
		SavedAt: time.Now(),
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO saved_pins (id, user_id, pin_id, saved_at)
		 VALUES (?, ?, ?, ?)`,
		sp.ID, sp.UserID, sp.PinID, sp.SavedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("pin already saved")
		}
		return nil, fmt.Errorf("sqlite: saving pin %s for user %s: %w", pinID, userID, err)
	}

	// Embed the saved pin with its author so the response can render the
	// bookmarked card without another request.
	pin, err := db.GetPinByID(ctx, pinID)
	if err != nil {
		return nil, err
	}
	sp.Pin = pin

	return sp, nil
}

// UnsavePin removes the bookmark for the (userID, pinID) pair. Removing a
// bookmark that does not exist is reported as ErrNotFound rather than
// silently succeeding.
func (db *DB) UnsavePin(ctx context.Context, userID, pinID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM saved_pins WHERE user_id = ? AND pin_id = ?`,
		userID, pinID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unsaving pin %s for user %s: %w", pinID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("saved pin", pinID)
	}

	return nil
}

// ListSavedPins returns the pins userID has bookmarked, most recently saved
// first, each decorated with its author summary and savedBy set.
func (db *DB) ListSavedPins(ctx context.Context, userID string, limit int) ([]model.Pin, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+pinColumns+`
		 FROM saved_pins sp
		 JOIN pins p ON p.id = sp.pin_id
		 JOIN users u ON u.id = p.author_id
		 WHERE sp.user_id = ?
		 ORDER BY sp.saved_at DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing saved pins: %w", err)
	}
	defer rows.Close()

	pins := make([]model.Pin, 0, limit)
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved pin row: %w", err)
		}
		pins = append(pins, *pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saved pins: %w", err)
	}

	if err := db.attachSavedBy(ctx, pins); err != nil {
		return nil, err
	}
	return pins, nil
}
