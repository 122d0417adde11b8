package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityStore defines persistence operations for verified identities.
type IdentityStore interface {
	GetByContact(ctx context.Context, contact Contact) (Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (Identity, error)
	Create(ctx context.Context, identity Identity) (Identity, error)
}

// Identity represents a verified account.
type Identity struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contacts returns every contact value the identity can be reached by.
func (i Identity) Contacts() []Contact {
	var contacts []Contact
	if i.Email != "" {
		contacts = append(contacts, Contact{Kind: ContactEmail, Value: i.Email})
	}
	if i.Phone != "" {
		contacts = append(contacts, Contact{Kind: ContactPhone, Value: i.Phone})
	}
	return contacts
}

// ContactKind tells how a contact value is delivered to.
type ContactKind string

const (
	// ContactEmail is an e-mail address.
	ContactEmail ContactKind = "email"
	// ContactPhone is an E.164-like phone number.
	ContactPhone ContactKind = "phone"
)

// Contact is a classified email or phone value.
type Contact struct {
	Kind  ContactKind
	Value string
}

func (c Contact) String() string {
	return c.Value
}

// Role is the closed set of account roles.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

// ParseRole converts raw input into a Role. Empty input means buyer.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleBuyer:
		return RoleBuyer, true
	case RoleFarmer:
		return RoleFarmer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

// RoleSet is the set of roles allowed to perform an operation.
type RoleSet []Role

// Roles builds a RoleSet. Roles outside the closed set are dropped.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set = append(set, r)
		}
	}
	return set
}

// Contains reports whether r belongs to the set.
func (s RoleSet) Contains(r Role) bool {
	for _, allowed := range s {
		if allowed == r {
			return true
		}
	}
	return false
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range s {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
