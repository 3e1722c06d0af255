// Package catalog provides the deep-sky object catalog, backed by the
// OpenNGC database imported into SQLite.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"go.uber.org/zap"
)

const (
	// DefaultCSVURL is the OpenNGC main database file.
	DefaultCSVURL = "https://raw.githubusercontent.com/mattiaverga/OpenNGC/master/database_files/NGC.csv"
)

var (
	// ErrNotProvisioned is returned when the catalog tables have not been imported yet.
	ErrNotProvisioned = errors.New("catalog not provisioned")

	provisionMu sync.Mutex
)

// Provisioner downloads the OpenNGC CSV and imports it into SQLite.
type Provisioner struct {
	URL        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProvisioner creates a provisioner for the given CSV URL (DefaultCSVURL if empty).
func NewProvisioner(url string, logger *zap.Logger) *Provisioner {
	if url == "" {
		url = DefaultCSVURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{
		URL: url,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		logger: logger,
	}
}

// NeedsProvisioning checks if the dso table exists and has rows.
func NeedsProvisioning(db *sql.DB) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='catalog_meta'").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for catalog tables: %w", err)
	}
	if count == 0 {
		return true, nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM catalog_meta WHERE key = 'version'").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading catalog version: %w", err)
	}
	return version == "", nil
}

// Provision downloads and imports the catalog unless it is already present.
// With force set the catalog is re-imported regardless.
func (p *Provisioner) Provision(ctx context.Context, db *sql.DB, force bool, progressChan chan<- string) error {
	provisionMu.Lock()
	defer provisionMu.Unlock()

	if !force {
		needs, err := NeedsProvisioning(db)
		if err != nil {
			return err
		}
		if !needs {
			return nil
		}
	}

	sendProgress := func(msg string) {
		if progressChan != nil {
			progressChan <- msg
		} else {
			p.logger.Info(msg)
		}
	}

	sendProgress("Downloading OpenNGC catalog...")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading catalog: HTTP error: %d", resp.StatusCode)
	}

	sendProgress("Building catalog database...")
	count, err := Import(ctx, db, resp.Body)
	if err != nil {
		return fmt.Errorf("importing catalog: %w", err)
	}

	sendProgress(fmt.Sprintf("Imported %d catalog objects", count))
	p.logger.Info("catalog provisioned", zap.String("url", p.URL), zap.Int("objects", count))
	return nil
}

// Import replaces the catalog tables with the contents of an OpenNGC CSV stream.
// The catalog version is the SHA-256 of the imported bytes.
func Import(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	hash := sha256.New()
	reader := csv.NewReader(io.TeeReader(r, hash))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}
	cols := columnIndex(header)
	for _, required := range []string{"Name", "Type", "RA", "Dec"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS dso;
		CREATE TABLE dso (
			name TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			ra_deg REAL,
			dec_deg REAL,
			const TEXT,
			vmag REAL,
			messier TEXT,
			common_names TEXT
		);
		CREATE INDEX idx_dso_vmag ON dso(vmag);
		CREATE INDEX idx_dso_messier ON dso(messier);
		CREATE TABLE IF NOT EXISTS catalog_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		return 0, fmt.Errorf("creating tables: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO dso (name, type, ra_deg, dec_deg, const, vmag, messier, common_names)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip invalid records
		}

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get("Name")
		if name == "" {
			continue
		}

		var ra, dec, vmag sql.NullFloat64
		if v, err := astro.ParseRA(get("RA")); err == nil {
			ra = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, err := astro.ParseDec(get("Dec")); err == nil {
			dec = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, err := strconv.ParseFloat(get("V-Mag"), 64); err == nil {
			vmag = sql.NullFloat64{Float64: v, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			name, get("Type"), ra, dec, get("Const"), vmag, get("M"), get("Common names"),
		); err != nil {
			return count, fmt.Errorf("inserting %s: %w", name, err)
		}

		count++
		if err := ctx.Err(); err != nil {
			return count, err
		}
	}

	// The stream has been fully consumed, so the hash covers the whole file.
	version := hex.EncodeToString(hash.Sum(nil))
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO catalog_meta (key, value) VALUES ('version', ?), ('imported_at', ?)`,
		version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return count, fmt.Errorf("writing catalog version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return count, err
	}
	return count, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return cols
}
