package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.StagingStore = (*StagingRepository)(nil)

const candidateColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), password_hash, role,
			  COALESCE(address, ''), created_at, updated_at, expires_at`

type StagingRepository struct {
	db *Connection
}

func NewStagingRepository(db *Connection) *StagingRepository {
	return &StagingRepository{
		db: db,
	}
}

func (r *StagingRepository) Create(ctx context.Context, candidate model.Candidate) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		contacts := candidate.Contacts()
		if err := lockContacts(ctx, tx, contacts); err != nil {
			return err
		}

		for _, c := range contacts {
			exists, err := identityExists(ctx, tx, c)
			if err != nil {
				return err
			}
			if exists {
				return model.ErrIdentityExists
			}

			// An expired row still occupies the unique index until it is swept.
			column, err := contactColumn(c.Kind)
			if err != nil {
				return err
			}
			query := `DELETE FROM staged_identities WHERE ` + column + ` = $1 AND expires_at <= NOW()`
			if _, err := tx.Exec(ctx, query, c.Value); err != nil {
				return fmt.Errorf("failed to purge expired candidate: %w", err)
			}

			pending, err := liveCandidateExists(ctx, tx, c)
			if err != nil {
				return err
			}
			if pending {
				return model.ErrPendingExists
			}
		}

		query := `INSERT INTO staged_identities (id, name, email, phone, password_hash, role, address, created_at, updated_at, expires_at)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := tx.Exec(ctx, query,
			candidate.ID, candidate.Name, nullable(candidate.Email), nullable(candidate.Phone),
			candidate.PasswordHash, string(candidate.Role), nullable(candidate.Address),
			candidate.CreatedAt, candidate.UpdatedAt, candidate.ExpiresAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return model.ErrPendingExists
			}
			return fmt.Errorf("failed to create candidate: %w", err)
		}

		return nil
	})
}

func (r *StagingRepository) GetByContact(ctx context.Context, contact model.Contact) (model.Candidate, error) {
	column, err := contactColumn(contact.Kind)
	if err != nil {
		return model.Candidate{}, err
	}

	query := `SELECT ` + candidateColumns + ` FROM staged_identities
			  WHERE ` + column + ` = $1 AND expires_at > NOW()`

	candidate, err := scanCandidate(r.db.QueryRow(ctx, query, contact.Value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Candidate{}, model.ErrNotFound
		}
		return model.Candidate{}, fmt.Errorf("failed to get candidate by contact: %w", err)
	}

	return candidate, nil
}

// Promote copies the live candidate into identities and deletes it. Only the
// proven contact is copied. It returns ErrNotFound when no live candidate holds
// contact and ErrIdentityExists when contact already belongs to an identity.
func (r *StagingRepository) Promote(ctx context.Context, contact model.Contact) (model.Identity, error) {
	candidate, err := r.GetByContact(ctx, contact)
	if err != nil {
		return model.Identity{}, err
	}

	var promoted model.Identity
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockContacts(ctx, tx, candidate.Contacts()); err != nil {
			return err
		}

		// Re-read under the lock: the candidate may have been promoted,
		// cancelled or expired while we waited.
		query := `SELECT ` + candidateColumns + ` FROM staged_identities
				  WHERE id = $1 AND expires_at > NOW() FOR UPDATE`
		locked, err := scanCandidate(tx.QueryRow(ctx, query, candidate.ID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrNotFound
			}
			return fmt.Errorf("failed to lock candidate: %w", err)
		}

		identity := locked.ProvenIdentity(contact)
		exists, err := identityExists(ctx, tx, contact)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrIdentityExists
		}

		identity.UpdatedAt = time.Now().UTC()
		promoted, err = insertIdentity(ctx, tx, identity)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM staged_identities WHERE id = $1`, locked.ID); err != nil {
			return fmt.Errorf("failed to delete promoted candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Identity{}, err
	}

	return promoted, nil
}

// DeleteByContact removes the candidate holding contact, live or expired.
// Deleting a missing candidate is not an error.
func (r *StagingRepository) DeleteByContact(ctx context.Context, contact model.Contact) error {
	column, err := contactColumn(contact.Kind)
	if err != nil {
		return err
	}

	query := `DELETE FROM staged_identities WHERE ` + column + ` = $1`
	if _, err := r.db.Exec(ctx, query, contact.Value); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}

	return nil
}

func (r *StagingRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM staged_identities WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired candidates: %w", err)
	}

	return tag.RowsAffected(), nil
}

func liveCandidateExists(ctx context.Context, tx pgx.Tx, contact model.Contact) (bool, error) {
	column, err := contactColumn(contact.Kind)
	if err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM staged_identities WHERE ` + column + ` = $1 AND expires_at > NOW())`
	if err := tx.QueryRow(ctx, query, contact.Value).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check candidate: %w", err)
	}
	return exists, nil
}

func scanCandidate(row pgx.Row) (model.Candidate, error) {
	var (
		candidate model.Candidate
		role      string
	)
	err := row.Scan(
		&candidate.ID, &candidate.Name, &candidate.Email, &candidate.Phone, &candidate.PasswordHash,
		&role, &candidate.Address, &candidate.CreatedAt, &candidate.UpdatedAt, &candidate.ExpiresAt,
	)
	if err != nil {
		return model.Candidate{}, err
	}
	candidate.Role = model.Role(role)
	return candidate, nil
}
