package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

const identityColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), password_hash, role,
			  COALESCE(address, ''), created_at, updated_at`

type IdentityRepository struct {
	db *Connection
}

func NewIdentityRepository(db *Connection) *IdentityRepository {
	return &IdentityRepository{
		db: db,
	}
}

func (r *IdentityRepository) GetByContact(ctx context.Context, contact model.Contact) (model.Identity, error) {
	column, err := contactColumn(contact.Kind)
	if err != nil {
		return model.Identity{}, err
	}

	query := `SELECT ` + identityColumns + ` FROM identities WHERE ` + column + ` = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, contact.Value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by contact: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by id: %w", err)
	}

	return identity, nil
}

// Create inserts an identity directly, bypassing staging. It is used for
// seeded accounts; it refuses contacts held by a live staged candidate.
func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	var saved model.Identity
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		contacts := identity.Contacts()
		if err := lockContacts(ctx, tx, contacts); err != nil {
			return err
		}
		for _, c := range contacts {
			pending, err := liveCandidateExists(ctx, tx, c)
			if err != nil {
				return err
			}
			if pending {
				return model.ErrPendingExists
			}
		}

		var err error
		saved, err = insertIdentity(ctx, tx, identity)
		return err
	})
	if err != nil {
		return model.Identity{}, err
	}

	return saved, nil
}

func insertIdentity(ctx context.Context, tx pgx.Tx, identity model.Identity) (model.Identity, error) {
	query := `INSERT INTO identities (id, name, email, phone, password_hash, role, address, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + identityColumns

	saved, err := scanIdentity(tx.QueryRow(ctx, query,
		identity.ID, identity.Name, nullable(identity.Email), nullable(identity.Phone),
		identity.PasswordHash, string(identity.Role), nullable(identity.Address),
		identity.CreatedAt, identity.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Identity{}, model.ErrIdentityExists
		}
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return saved, nil
}

func identityExists(ctx context.Context, tx pgx.Tx, contact model.Contact) (bool, error) {
	column, err := contactColumn(contact.Kind)
	if err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM identities WHERE ` + column + ` = $1)`
	if err := tx.QueryRow(ctx, query, contact.Value).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check identity: %w", err)
	}
	return exists, nil
}

func scanIdentity(row pgx.Row) (model.Identity, error) {
	var (
		identity model.Identity
		role     string
	)
	err := row.Scan(
		&identity.ID, &identity.Name, &identity.Email, &identity.Phone, &identity.PasswordHash,
		&role, &identity.Address, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if err != nil {
		return model.Identity{}, err
	}
	identity.Role = model.Role(role)
	return identity, nil
}
