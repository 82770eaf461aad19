package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"devboards/internal/apperror"
	"devboards/internal/model"
	"devboards/internal/repository"
)

// compile-time check that *DB implements repository.PinRepository
var _ repository.PinRepository = (*DB)(nil)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// pinColumns joins each pin with its author so one query yields the pin and
// the attribution summary. scanPin must match the column order.
const pinColumns = `p.id, p.title, p.description, p.image_url, p.code_snippet,
	p.language, p.tags, p.author_id, p.created_at, p.updated_at,
	u.id, u.name, u.image`

func scanPin(row interface{ Scan(...any) error }) (*model.Pin, error) {
	var p model.Pin
	var author model.AuthorSummary
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.CodeSnippet,
		&p.Language, &p.Tags, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Name, &author.Image,
	)
	if err != nil {
		return nil, err
	}
	p.Author = &author
	return &p, nil
}

// CreatePin inserts a new pin. The caller (service layer) has already validated
// the required fields and set AuthorID.
func (db *DB) CreatePin(ctx context.Context, pin *model.Pin) error {
	pin.ID = xid.New().String()
	now := time.Now()
	pin.CreatedAt = now
	pin.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO pins (id, title, description, image_url, code_snippet, language, tags, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pin.ID,
		pin.Title,
		pin.Description,
		pin.ImageURL,
		pin.CodeSnippet,
		pin.Language,
		pin.Tags,
		pin.AuthorID,
		pin.CreatedAt,
		pin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating pin: %w", err)
	}

	// Attach the author summary so the create response matches reads.
	author, err := db.GetUserByID(ctx, pin.AuthorID)
	if err != nil {
		return fmt.Errorf("sqlite: loading pin author: %w", err)
	}
	pin.Author = author.Summary()
	pin.SavedBy = []model.SavedPin{}

	return nil
}

// GetPinByID retrieves a single pin with its author summary and the full set
// of saves, so callers can answer "is this saved by me" locally.
func (db *DB) GetPinByID(ctx context.Context, id string) (*model.Pin, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+pinColumns+`
		 FROM pins p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = ?`,
		id,
	)

	pin, err := scanPin(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("pin", id)
		}
		return nil, fmt.Errorf("sqlite: getting pin %s: %w", id, err)
	}

	pins := []model.Pin{*pin}
	if err := db.attachSavedBy(ctx, pins); err != nil {
		return nil, err
	}
	return &pins[0], nil
}

// ListPins retrieves pins newest-first, optionally filtered to one author.
func (db *DB) ListPins(ctx context.Context, opts repository.ListOptions) ([]model.Pin, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + pinColumns + `
		 FROM pins p
		 JOIN users u ON u.id = p.author_id`
	args := []any{}
	if opts.AuthorID != "" {
		query += ` WHERE p.author_id = ?`
		args = append(args, opts.AuthorID)
	}
	query += ` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pins: %w", err)
	}
	defer rows.Close()

	pins := make([]model.Pin, 0, limit)
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning pin row: %w", err)
		}
		pins = append(pins, *pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating pins: %w", err)
	}

	if err := db.attachSavedBy(ctx, pins); err != nil {
		return nil, err
	}
	return pins, nil
}

// CountPins returns the total number of pins. The feed's sampled mode uses it to
// pick a random window start.
func (db *DB) CountPins(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM pins`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting pins: %w", err)
	}
	return count, nil
}

// UpdatePin persists the mutable pin fields. ID, author, and created_at never
// change.
func (db *DB) UpdatePin(ctx context.Context, pin *model.Pin) error {
	pin.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE pins
		 SET title = ?, description = ?, code_snippet = ?, language = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		pin.Title,
		pin.Description,
		pin.CodeSnippet,
		pin.Language,
		pin.Tags,
		pin.UpdatedAt,
		pin.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating pin %s: %w", pin.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("pin", pin.ID)
	}

	return nil
}

// DeletePin removes a pin. Its saved_pins rows cascade away with it, so no
// orphaned saves remain.
func (db *DB) DeletePin(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM pins WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting pin %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("pin", id)
	}

	return nil
}

// attachSavedBy loads the saved_pins rows for all given pins in one query
// and groups them by pin. Every pin ends up with a non-nil SavedBy slice.
func (db *DB) attachSavedBy(ctx context.Context, pins []model.Pin) error {
	if len(pins) == 0 {
		return nil
	}

	ids := make([]any, len(pins))
	placeholders := make([]string, len(pins))
	for i := range pins {
		ids[i] = pins[i].ID
		placeholders[i] = "?"
		pins[i].SavedBy = []model.SavedPin{}
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, pin_id, saved_at
		 FROM saved_pins
		 WHERE pin_id IN (`+strings.Join(placeholders, ", ")+`)`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading saves: %w", err)
	}
	defer rows.Close()

	byPin := make(map[string][]model.SavedPin, len(pins))
	for rows.Next() {
		var sp model.SavedPin
		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.PinID, &sp.SavedAt); err != nil {
			return fmt.Errorf("sqlite: scanning save row: %w", err)
		}
		byPin[sp.PinID] = append(byPin[sp.PinID], sp)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating saves: %w", err)
	}

	for i := range pins {
		if saves, ok := byPin[pins[i].ID]; ok {
			pins[i].SavedBy = saves
		}
	}
	return nil
}
