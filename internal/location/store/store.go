package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexustechhub/mdts/internal/location"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListLocations(ctx context.Context) ([]*location.Location, error) {
	query := `SELECT id, name, created_at FROM locations ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []*location.Location

	for rows.Next() {
		var l location.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}

		locations = append(locations, &l)
	}

	return locations, rows.Err()
}

func (s *Store) CreateLocation(ctx context.Context, name string) (*location.Location, error) {
	query := `
		INSERT INTO locations (name, created_at)
		VALUES ($1, NOW())
		RETURNING id, name, created_at
	`

	var l location.Location

	err := s.db.QueryRowContext(ctx, query, name).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, location.ErrDuplicate
		}

		return nil, fmt.Errorf("creating location: %w", err)
	}

	return &l, nil
}

func (s *Store) GetLocation(ctx context.Context, id int64) (*location.Location, error) {
	query := `SELECT id, name, created_at FROM locations WHERE id = $1`

	var l location.Location

	err := s.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, location.ErrNotFound
		}

		return nil, fmt.Errorf("getting location: %w", err)
	}

	return &l, nil
}
