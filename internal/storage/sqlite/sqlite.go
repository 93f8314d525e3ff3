package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FranksOps/vantage/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS intelligence_reports (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	intelligence TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_domain ON intelligence_reports (domain);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, report *storage.Report) error {
	query := `
	INSERT INTO intelligence_reports (id, domain, generated_at, intelligence)
	VALUES (?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		report.ID,
		report.Domain,
		report.GeneratedAt,
		string(report.Intelligence),
	)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Report, error) {
	query := `SELECT id, domain, generated_at, intelligence FROM intelligence_reports WHERE 1=1`
	args := []any{}

	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	if filter.Since != nil {
		query += ` AND generated_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY generated_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer rows.Close()

	var reports []*storage.Report
	for rows.Next() {
		var r storage.Report
		var intelligence string

		if err := rows.Scan(&r.ID, &r.Domain, &r.GeneratedAt, &intelligence); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		r.Intelligence = []byte(intelligence)

		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return reports, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
