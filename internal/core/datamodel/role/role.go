package role

import (
	"github.com/frahmantamala/incubation-console/internal/core/datamodel"
	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
)

type Role struct {
	ID          datamodel.ID         `json:"id"`
	RoleID      coreuser.RoleID      `json:"roleId"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	AdminState  datamodel.AdminState `json:"adminState"`
}
