package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCandidate_ProvenIdentity(t *testing.T) {
	candidate := Candidate{Identity: Identity{
		ID:    uuid.New(),
		Name:  "Ana",
		Email: "ana@x.com",
		Phone: "+14155550123",
		Role:  RoleBuyer,
	}}

	tests := []struct {
		name  string
		proof Contact
		want  []Contact
	}{
		{
			name:  "email proven",
			proof: Contact{Kind: ContactEmail, Value: "ana@x.com"},
			want:  []Contact{{Kind: ContactEmail, Value: "ana@x.com"}},
		},
		{
			name:  "phone proven",
			proof: Contact{Kind: ContactPhone, Value: "+14155550123"},
			want:  []Contact{{Kind: ContactPhone, Value: "+14155550123"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidate.ProvenIdentity(tt.proof)
			assert.Equal(t, tt.want, got.Contacts())
			assert.Equal(t, candidate.ID, got.ID)
			assert.Equal(t, candidate.Name, got.Name)
		})
	}

	// The candidate itself is left intact.
	assert.Len(t, candidate.Contacts(), 2)
}

func TestRoles(t *testing.T) {
	assert.Equal(t, RoleSet{RoleAdmin}, Roles("", RoleAdmin, "wizard"))
	assert.Empty(t, Roles(""))
	assert.True(t, Roles(RoleFarmer, RoleBuyer).Contains(RoleBuyer))
	assert.False(t, Roles(RoleFarmer).Contains(""))
}
