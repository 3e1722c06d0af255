package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ngmaloney/astroscope/internal/models"
)

// ErrNotFound is returned when no catalog object matches a name.
var ErrNotFound = errors.New("object not found in catalog")

// Source is a versioned provider of catalog objects.
type Source interface {
	Version(ctx context.Context) (string, error)
	Objects(ctx context.Context) ([]models.Object, error)
}

// Store reads the imported catalog from SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Version returns the version of the imported catalog.
func (s *Store) Version(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM catalog_meta WHERE key = 'version'").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
			return "", ErrNotProvisioned
		}
		return "", fmt.Errorf("reading catalog version: %w", err)
	}
	return version, nil
}

const selectObjects = `
	SELECT name, type, ra_deg, dec_deg, const, vmag, messier, common_names
	FROM dso
`

// Objects returns every catalog object, brightest first and unknown magnitudes last.
func (s *Store) Objects(ctx context.Context) ([]models.Object, error) {
	rows, err := s.db.QueryContext(ctx, selectObjects+" ORDER BY vmag IS NULL, vmag, name")
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrNotProvisioned
		}
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	var objects []models.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// Object looks up a single object by designation ("NGC 224", "NGC0224", "M31")
// or, failing that, by common name ("Andromeda Galaxy").
func (s *Store) Object(ctx context.Context, name string) (models.Object, error) {
	designation, messier := normalizeName(name)
	if designation == "" {
		return models.Object{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		selectObjects+` WHERE name = ? OR (? != '' AND messier = ?)
		ORDER BY name = ? DESC, vmag IS NULL, vmag LIMIT 1`,
		designation, messier, messier, designation,
	)
	o, err := scanObject(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		if isMissingTable(err) {
			return models.Object{}, ErrNotProvisioned
		}
		return models.Object{}, fmt.Errorf("querying object: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		selectObjects+` WHERE lower(common_names) LIKE '%' || lower(?) || '%'
		ORDER BY vmag IS NULL, vmag LIMIT 1`,
		strings.TrimSpace(name),
	)
	o, err = scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Object{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return models.Object{}, fmt.Errorf("querying object: %w", err)
	}
	return o, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(row scanner) (models.Object, error) {
	var (
		o                      models.Object
		ra, dec, vmag          sql.NullFloat64
		constellation, messier sql.NullString
		common                 sql.NullString
	)
	if err := row.Scan(&o.Name, &o.Type, &ra, &dec, &constellation, &vmag, &messier, &common); err != nil {
		return models.Object{}, err
	}

	o.HasPosition = ra.Valid && dec.Valid
	o.RA, o.Dec = ra.Float64, dec.Float64
	o.VMag, o.HasVMag = vmag.Float64, vmag.Valid
	o.Constellation = constellation.String
	o.Messier = messier.String
	o.CommonNames = splitNames(common.String)
	return o, nil
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

var designationRegex = regexp.MustCompile(`^(NGC|IC)(\d+)(.*)$`)
var messierRegex = regexp.MustCompile(`^M(\d+)$`)

// normalizeName maps user input onto OpenNGC designations.
// It returns the designation to match and, for Messier input, the padded Messier number.
func normalizeName(name string) (designation, messier string) {
	n := strings.ToUpper(strings.Join(strings.Fields(name), ""))
	if n == "" {
		return "", ""
	}
	if m := messierRegex.FindStringSubmatch(n); m != nil {
		num, _ := strconv.Atoi(m[1])
		return n, fmt.Sprintf("%03d", num)
	}
	if m := designationRegex.FindStringSubmatch(n); m != nil {
		num, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s%04d%s", m[1], num, m[3]), ""
	}
	return n, ""
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
