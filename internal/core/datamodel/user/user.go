package user

import (
	"github.com/frahmantamala/incubation-console/internal/core/datamodel"
	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
)

// User is a console account as the backend lists it.
type User struct {
	ID         datamodel.ID         `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	RoleID     coreuser.RoleID      `json:"roleId"`
	RoleName   string               `json:"roleName,omitempty"`
	TenantID   *string              `json:"tenantId"`
	TenantName string               `json:"tenantName,omitempty"`
	AdminState datamodel.AdminState `json:"adminState"`
}

// LoginResult is the data of a successful POST /auth/login.
type LoginResult struct {
	Token    string          `json:"token"`
	UserID   datamodel.ID    `json:"userId"`
	RoleID   coreuser.RoleID `json:"roleId"`
	TenantID *string         `json:"tenantId"`
	Name     string          `json:"name"`
}
