package models_test

import (
	"testing"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	tests := []struct {
		name   string
		roleID int
		want   models.Role
	}{
		{"Admin", 1, models.RoleAdmin},
		{"Courier", 35, models.RoleCourier},
		{"Customer", 2, models.RoleCustomer},
		{"Unknown role id falls back to customer", 99, models.RoleCustomer},
		{"Zero role id falls back to customer", 0, models.RoleCustomer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user := &models.User{RoleID: tc.roleID}
			assert.Equal(t, tc.want, user.Role())
		})
	}
}

func TestRoleIDFor(t *testing.T) {
	assert.Equal(t, 1, models.RoleIDFor(models.RoleAdmin))
	assert.Equal(t, 35, models.RoleIDFor(models.RoleCourier))
	assert.Equal(t, 2, models.RoleIDFor(models.RoleCustomer))
}
