package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/auric-sh/auric/internal/model"

	_ "modernc.org/sqlite"
)

const createPackagesTable = `
CREATE TABLE IF NOT EXISTS packages (
    name          TEXT PRIMARY KEY,
    package_base  TEXT NOT NULL,
    version       TEXT NOT NULL,
    description   TEXT,
    maintainer    TEXT,
    url           TEXT,
    num_votes     INTEGER NOT NULL DEFAULT 0,
    popularity    REAL NOT NULL DEFAULT 0,
    out_of_date   INTEGER,
    last_modified INTEGER NOT NULL DEFAULT 0,
    fetched_at    DATETIME NOT NULL
)`

// ErrNotFound is returned when a package is not in the cache.
var ErrNotFound = errors.New("package not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createPackagesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create packages table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertPackages records RPC results in the cache, replacing any previous
// row for the same package name.
func (s *SQLiteStore) UpsertPackages(ctx context.Context, pkgs []model.Package) error {
	if len(pkgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO packages (
			name, package_base, version, description, maintainer, url,
			num_votes, popularity, out_of_date, last_modified, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			package_base = excluded.package_base,
			version = excluded.version,
			description = excluded.description,
			maintainer = excluded.maintainer,
			url = excluded.url,
			num_votes = excluded.num_votes,
			popularity = excluded.popularity,
			out_of_date = excluded.out_of_date,
			last_modified = excluded.last_modified,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, p := range pkgs {
		if _, err := stmt.ExecContext(ctx,
			p.Name, p.PackageBase, p.Version, p.Description, p.Maintainer, p.URL,
			p.NumVotes, p.Popularity, p.OutOfDate, p.LastModified, now,
		); err != nil {
			return fmt.Errorf("upsert package %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// GetPackage retrieves one cached package by exact name.
func (s *SQLiteStore) GetPackage(ctx context.Context, name string) (*model.Package, error) {
	p := &model.Package{}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, package_base, version, description, maintainer, url,
			num_votes, popularity, out_of_date, last_modified
		FROM packages WHERE name = ?`, name,
	).Scan(
		&p.Name, &p.PackageBase, &p.Version, &p.Description, &p.Maintainer, &p.URL,
		&p.NumVotes, &p.Popularity, &p.OutOfDate, &p.LastModified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	return p, nil
}

// SearchByName returns cached packages whose name contains term, ordered by
// name.
func (s *SQLiteStore) SearchByName(ctx context.Context, term string) ([]model.Package, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, package_base, version, description, maintainer, url,
			num_votes, popularity, out_of_date, last_modified
		FROM packages WHERE instr(name, ?) > 0 ORDER BY name`, term,
	)
	if err != nil {
		return nil, fmt.Errorf("search packages: %w", err)
	}
	defer rows.Close()

	var pkgs []model.Package
	for rows.Next() {
		var p model.Package
		if err := rows.Scan(
			&p.Name, &p.PackageBase, &p.Version, &p.Description, &p.Maintainer, &p.URL,
			&p.NumVotes, &p.Popularity, &p.OutOfDate, &p.LastModified,
		); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		pkgs = append(pkgs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}

	return pkgs, nil
}
