package user

import (
	"fmt"
	"strings"

	errors "github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
	"github.com/frahmantamala/incubation-console/internal/crud"
)

const minPasswordLength = 8

type Form struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RoleID     *int   `json:"roleId"`
	TenantID   string `json:"tenantId"`
	Password   string `json:"password"`
	AdminState *int   `json:"adminState"`
}

// Validate applies the edit rules; the password is only checked when one is given.
func (f Form) Validate() error {
	return f.validate(false)
}

// ValidateCreate additionally requires a password.
func (f Form) ValidateCreate() error {
	return f.validate(true)
}

func (f Form) validate(creating bool) error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required().MaxLength(100)
	v.Field("email", strings.TrimSpace(f.Email)).Required().Email()
	v.Field("roleId", f.RoleID).Required().Custom(knownRole)
	if needsTenant(f.RoleID) {
		v.Field("tenantId", f.TenantID).Required()
	}
	pw := v.Field("password", f.Password)
	if creating {
		pw.Required()
	}
	pw.MinLength(minPasswordLength)
	v.Field("adminState", crud.AdminState(f.AdminState)).OneOf(0, 1)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func knownRole(value interface{}) *errors.AppError {
	p, ok := value.(*int)
	if !ok || p == nil {
		return nil
	}
	if !coreuser.RoleID(*p).Known() {
		return errors.NewValidationFieldError("roleId", fmt.Sprintf("roleId %d is not a known role", *p), errors.ErrCodeValidationFailed)
	}
	return nil
}

// needsTenant is false for the cross-tenant roles: super-admin and inspector.
func needsTenant(roleID *int) bool {
	if roleID == nil {
		return false
	}
	switch coreuser.RoleID(*roleID) {
	case coreuser.RoleSuperAdmin, coreuser.RoleInspector:
		return false
	}
	return true
}

type request struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	RoleID     int     `json:"roleId"`
	TenantID   *string `json:"tenantId"`
	Password   string  `json:"password,omitempty"`
	AdminState int     `json:"adminState"`
}

func payload(f Form) interface{} {
	r := request{
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Password:   f.Password,
		AdminState: crud.AdminState(f.AdminState),
	}
	if f.RoleID != nil {
		r.RoleID = *f.RoleID
	}
	if tenant := strings.TrimSpace(f.TenantID); tenant != "" {
		r.TenantID = &tenant
	}
	return r
}
