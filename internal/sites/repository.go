// Package sites stores named observing locations.
package sites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ngmaloney/astroscope/internal/database"
	"github.com/ngmaloney/astroscope/internal/models"
)

// ErrNotFound is returned when no saved site has the requested name.
var ErrNotFound = errors.New("site not found")

// Repository handles persistence for user-saved sites
type Repository struct {
	db *sql.DB
}

// NewRepository creates a site repository and ensures its schema exists.
func NewRepository(db *sql.DB) (*Repository, error) {
	if err := database.EnsureUserSchema(db); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Save inserts a site or updates the site with the same name.
func (r *Repository) Save(ctx context.Context, site *models.Site) error {
	site.Name = strings.TrimSpace(site.Name)
	if site.Name == "" {
		return fmt.Errorf("site name cannot be empty")
	}
	if site.CreatedAt.IsZero() {
		site.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO user_sites (name, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			created_at = excluded.created_at
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query,
		site.Name, site.Latitude, site.Longitude, site.CreatedAt,
	).Scan(&site.ID); err != nil {
		return fmt.Errorf("saving site: %w", err)
	}
	site.Source = "saved"
	return nil
}

// List retrieves all saved sites ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Site, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, latitude, longitude, created_at FROM user_sites ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		var s models.Site
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		s.Source = "saved"
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// Get returns the site with the given name.
func (r *Repository) Get(ctx context.Context, name string) (*models.Site, error) {
	var s models.Site
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, latitude, longitude, created_at FROM user_sites WHERE name = ?",
		strings.TrimSpace(name),
	).Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying site: %w", err)
	}
	s.Source = "saved"
	return &s, nil
}

// Delete removes a site by name.
func (r *Repository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_sites WHERE name = ?", strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
