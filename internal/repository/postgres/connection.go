package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtroode/farmgate-identity/database"
	"github.com/dtroode/farmgate-identity/internal/model"
)

const uniqueViolation = "23505"

type Connection struct {
	*pgxpool.Pool
}

// NewConnection opens a pool for dsn and applies pending migrations.
func NewConnection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	if err := database.Migrate(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Connection{
		Pool: pool,
	}, nil
}

func (s *Connection) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

func (s *Connection) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return s.Pool.Ping(ctx)
}

// lockContacts serializes writers touching the same contact values until tx ends.
// Values are locked in sorted order so two writers never wait on each other.
func lockContacts(ctx context.Context, tx pgx.Tx, contacts []model.Contact) error {
	values := make([]string, 0, len(contacts))
	for _, c := range contacts {
		values = append(values, c.Value)
	}
	sort.Strings(values)

	for _, v := range values {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, v); err != nil {
			return fmt.Errorf("failed to lock contact: %w", err)
		}
	}
	return nil
}

func contactColumn(kind model.ContactKind) (string, error) {
	switch kind {
	case model.ContactEmail:
		return "email", nil
	case model.ContactPhone:
		return "phone", nil
	default:
		return "", fmt.Errorf("unknown contact kind %q", kind)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
