package role

import (
	"strings"

	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
	"github.com/frahmantamala/incubation-console/internal/crud"
)

type Form struct {
	RoleID      *int   `json:"roleId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AdminState  *int   `json:"adminState"`
}

func (f Form) Validate() error {
	v := validation.NewValidator()
	v.Field("roleId", f.RoleID).Required()
	if f.RoleID != nil {
		v.Field("roleId", *f.RoleID).MinInt(0)
	}
	v.Field("name", f.Name).Required().MaxLength(50)
	v.Field("description", f.Description).MaxLength(500)
	v.Field("adminState", crud.AdminState(f.AdminState)).OneOf(0, 1)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type request struct {
	RoleID      int    `json:"roleId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AdminState  int    `json:"adminState"`
}

func payload(f Form) interface{} {
	r := request{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		AdminState:  crud.AdminState(f.AdminState),
	}
	if f.RoleID != nil {
		r.RoleID = *f.RoleID
	}
	return r
}
