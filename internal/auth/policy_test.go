package auth

import (
	"testing"

	domainUser "pet-adoption-marketplace/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanManage(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name   string
		caller *Principal
		want   bool
	}{
		{name: "anonymous", caller: nil, want: false},
		{name: "owner", caller: &Principal{ID: owner, Role: domainUser.RoleUser}, want: true},
		{name: "stranger", caller: &Principal{ID: uuid.New(), Role: domainUser.RoleUser}, want: false},
		{name: "superadmin", caller: &Principal{ID: uuid.New(), Role: domainUser.RoleSuperAdmin}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManage(tt.caller, owner))
		})
	}
}

func TestHasRole(t *testing.T) {
	admin := &Principal{Role: domainUser.RoleSuperAdmin}

	assert.True(t, HasRole(admin, domainUser.RoleUser, domainUser.RoleSuperAdmin))
	assert.False(t, HasRole(admin, domainUser.RoleUser))
	assert.False(t, HasRole(nil, domainUser.RoleSuperAdmin))
}
