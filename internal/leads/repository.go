package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lead does not exist.
var ErrNotFound = errors.New("lead not found")

// Repository persists leads in Postgres. A nil receiver is a no-op recorder,
// which keeps local development working without a database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Record upserts a lead keyed by session so that re-finalizing a session
// refreshes the existing row instead of duplicating it.
func (r *Repository) Record(ctx context.Context, lead Lead) error {
	if r == nil || r.db == nil {
		return nil
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO leads (
			id, session_id, channel, name, phone, email, address, zip,
			building, pets, outdoor_water, service, arrival_window,
			preferred_date, notes, total_price, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (session_id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			address = EXCLUDED.address,
			zip = EXCLUDED.zip,
			building = EXCLUDED.building,
			pets = EXCLUDED.pets,
			outdoor_water = EXCLUDED.outdoor_water,
			service = EXCLUDED.service,
			arrival_window = EXCLUDED.arrival_window,
			preferred_date = EXCLUDED.preferred_date,
			notes = EXCLUDED.notes,
			total_price = EXCLUDED.total_price,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.SessionID, lead.Channel, lead.Name, lead.Phone,
		lead.Email, lead.Address, lead.Zip, lead.Building, lead.Pets,
		lead.OutdoorWater, lead.Service, lead.ArrivalWindow,
		lead.PreferredDate, lead.Notes, lead.TotalPrice, now, now,
	)
	if err != nil {
		return fmt.Errorf("leads: record: %w", err)
	}
	return nil
}

// List returns the most recently updated leads, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Lead, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, session_id, channel, name, phone, email, address, zip,
			building, pets, outdoor_water, service, arrival_window,
			preferred_date, notes, total_price, created_at, updated_at
		FROM leads
		ORDER BY updated_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("leads: list: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list rows: %w", err)
	}
	return out, nil
}

// Get returns a single lead by id.
func (r *Repository) Get(ctx context.Context, id string) (Lead, error) {
	if r == nil || r.db == nil {
		return Lead{}, ErrNotFound
	}

	query := `
		SELECT id, session_id, channel, name, phone, email, address, zip,
			building, pets, outdoor_water, service, arrival_window,
			preferred_date, notes, total_price, created_at, updated_at
		FROM leads
		WHERE id = $1
	`
	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("leads: get: %w", err)
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.SessionID, &lead.Channel, &lead.Name, &lead.Phone,
		&lead.Email, &lead.Address, &lead.Zip, &lead.Building, &lead.Pets,
		&lead.OutdoorWater, &lead.Service, &lead.ArrivalWindow,
		&lead.PreferredDate, &lead.Notes, &lead.TotalPrice,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}
