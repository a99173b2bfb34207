// Package sqlite implements ports.CompoundRepository on a single SQLite
// file using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/Oskait/CoCa/internal/domain"
)

// Store persists the compound registry to one SQLite table. Save rewrites
// the table in a single transaction; the list is small and the registry
// snapshots on every mutation.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path and ensures the schema.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema creates the compounds table and applies the idempotent
// column migrations older database files may need.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS compounds (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		longname TEXT NOT NULL DEFAULT '',
		stock_concentration REAL NOT NULL,
		unit TEXT NOT NULL,
		molecular_weight REAL NOT NULL DEFAULT 0,
		standard_volume REAL NOT NULL DEFAULT 0
	)`); err != nil {
		return fmt.Errorf("create compounds table: %w", err)
	}

	// Earlier database files predate longname and standard_volume.
	columns, err := s.tableColumns("compounds")
	if err != nil {
		return err
	}
	migrations := map[string]string{
		"longname":        `ALTER TABLE compounds ADD COLUMN longname TEXT NOT NULL DEFAULT ''`,
		"standard_volume": `ALTER TABLE compounds ADD COLUMN standard_volume REAL NOT NULL DEFAULT 0`,
	}
	for col, stmt := range migrations {
		if !columns[col] {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("add column %s: %w", col, err)
			}
		}
	}
	return nil
}

func (s *Store) tableColumns(table string) (map[string]bool, error) {
	rows, err := s.db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := map[string]bool{}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// Load retrieves the persisted compound list in insertion order.
func (s *Store) Load(ctx context.Context) ([]domain.Compound, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, longname, stock_concentration, unit, molecular_weight, standard_volume
		FROM compounds ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select compounds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var compounds []domain.Compound
	for rows.Next() {
		var c domain.Compound
		if err := rows.Scan(&c.Name, &c.LongName, &c.StockConcentration, &c.Unit, &c.MolecularWeight, &c.StandardVolume); err != nil {
			return nil, fmt.Errorf("scan compound: %w", err)
		}
		compounds = append(compounds, c)
	}
	return compounds, rows.Err()
}

// Save replaces the stored snapshot with the given list in one transaction.
func (s *Store) Save(ctx context.Context, compounds []domain.Compound) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM compounds`); err != nil {
		retErr = fmt.Errorf("clear compounds: %w", err)
		return retErr
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO compounds (position, name, longname, stock_concentration, unit, molecular_weight, standard_volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		retErr = fmt.Errorf("prepare insert: %w", err)
		return retErr
	}
	defer func() { _ = stmt.Close() }()

	for i, c := range compounds {
		if _, err := stmt.ExecContext(ctx, i, c.Name, c.LongName, c.StockConcentration, c.Unit, c.MolecularWeight, c.StandardVolume); err != nil {
			retErr = fmt.Errorf("insert %s: %w", c.Name, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
