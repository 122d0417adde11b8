package model

import (
	"context"
	"time"
)

// StagingWindow is the default lifetime of an unverified signup.
const StagingWindow = 20 * time.Minute

// StagingStore persists unverified signup candidates.
//
// Reads never return a candidate whose ExpiresAt has passed, even if the row
// has not been swept yet.
type StagingStore interface {
	// Create stages a candidate. It fails with ErrIdentityExists when any of the
	// candidate's contacts belongs to an identity and with ErrPendingExists when
	// a live candidate already holds one of them.
	Create(ctx context.Context, candidate Candidate) error
	GetByContact(ctx context.Context, contact Contact) (Candidate, error)
	// Promote turns the live candidate for contact into an identity holding
	// only contact, and removes the candidate in a single transaction.
	Promote(ctx context.Context, contact Contact) (Identity, error)
	DeleteByContact(ctx context.Context, contact Contact) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Candidate is an unverified signup awaiting proof of contact ownership.
type Candidate struct {
	Identity
	ExpiresAt time.Time
}

// Expired reports whether the staging window has closed at now.
func (c Candidate) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// ProvenIdentity returns the identity that verifying proven yields. Only the
// proven contact is carried over; the candidate's other contact stays unclaimed
// until its owner proves it with a signup of their own.
func (c Candidate) ProvenIdentity(proven Contact) Identity {
	identity := c.Identity
	switch proven.Kind {
	case ContactEmail:
		identity.Phone = ""
	case ContactPhone:
		identity.Email = ""
	}
	return identity
}
