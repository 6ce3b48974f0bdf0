package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const (
	pgUniqueViolation = "23505"

	pgCodeConstraint = "url_mappings_code_key"
	pgURLConstraint  = "url_mappings_long_url_hash_key"
)

const pgSchema = `
	CREATE TABLE IF NOT EXISTS url_mappings (
		id            BIGSERIAL PRIMARY KEY,
		code          TEXT        NOT NULL,
		long_url      TEXT        NOT NULL,
		long_url_hash TEXT        NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT url_mappings_code_key UNIQUE (code),
		CONSTRAINT url_mappings_long_url_hash_key UNIQUE (long_url_hash)
	)
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
// Uniqueness is enforced by table constraints, so concurrent inserts from
// any number of pooled connections are safe.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the mapping table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, pgSchema); err != nil {
		return shortener.StorageError("postgres migrate", err)
	}

	return nil
}

func (p *PostgresStore) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	query := `
		SELECT id, code, long_url, created_at
		FROM url_mappings
		WHERE long_url_hash = $1 AND long_url = $2
	`

	return p.findOne(ctx, "postgres find by long url", query, string(shortener.HashURL(longURL)), longURL)
}

func (p *PostgresStore) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM url_mappings WHERE code = $1)`,
		string(code),
	).Scan(&exists)
	if err != nil {
		return false, shortener.StorageError("postgres exists", err)
	}

	return exists, nil
}

func (p *PostgresStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	query := `
		INSERT INTO url_mappings (code, long_url, long_url_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := p.pool.QueryRow(ctx, query,
		string(m.Code),
		m.LongURL,
		string(shortener.HashURL(m.LongURL)),
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case pgCodeConstraint:
				return shortener.ErrDuplicateCode
			case pgURLConstraint:
				return shortener.ErrDuplicateURL
			}
		}

		return shortener.StorageError("postgres insert", err)
	}

	return nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	query := `
		SELECT id, code, long_url, created_at
		FROM url_mappings
		WHERE code = $1
	`

	return p.findOne(ctx, "postgres find by code", query, string(code))
}

func (p *PostgresStore) findOne(ctx context.Context, op, query string, args ...any) (*shortener.Mapping, error) {
	var m shortener.Mapping

	var code string

	err := p.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &code, &m.LongURL, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, shortener.StorageError(op, err)
	}

	m.Code = shortener.Code(code)

	return &m, nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

var _ shortener.Repository = (*PostgresStore)(nil)
