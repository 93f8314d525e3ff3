package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/vantage/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS intelligence_reports (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	intelligence JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_domain ON intelligence_reports (domain);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, report *storage.Report) error {
	query := `
	INSERT INTO intelligence_reports (id, domain, generated_at, intelligence)
	VALUES ($1, $2, $3, $4)
	`

	_, err := b.pool.Exec(ctx, query,
		report.ID,
		report.Domain,
		report.GeneratedAt,
		[]byte(report.Intelligence),
	)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Report, error) {
	query := `SELECT id, domain, generated_at, intelligence FROM intelligence_reports WHERE 1=1`
	args := []any{}
	argN := 0

	if filter.Domain != "" {
		argN++
		query += fmt.Sprintf(` AND domain = $%d`, argN)
		args = append(args, filter.Domain)
	}
	if filter.Since != nil {
		argN++
		query += fmt.Sprintf(` AND generated_at >= $%d`, argN)
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY generated_at DESC`

	if filter.Limit > 0 {
		argN++
		query += fmt.Sprintf(` LIMIT $%d`, argN)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		argN++
		query += fmt.Sprintf(` OFFSET $%d`, argN)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	defer rows.Close()

	var reports []*storage.Report
	for rows.Next() {
		var r storage.Report
		var intelligence []byte

		if err := rows.Scan(&r.ID, &r.Domain, &r.GeneratedAt, &intelligence); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		r.Intelligence = intelligence

		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return reports, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
