package user

import (
	"fmt"
	"strconv"
)

// RoleID is the backend's numeric role identifier.
type RoleID int

const (
	RoleSuperAdmin     RoleID = 0
	RoleIncubatorAdmin RoleID = 1
	RoleOperator       RoleID = 3
	RoleIncubatee      RoleID = 4
	RoleInspector      RoleID = 7
)

var roleNames = map[RoleID]string{
	RoleSuperAdmin:     "super-admin",
	RoleIncubatorAdmin: "incubator-admin",
	RoleOperator:       "operator",
	RoleIncubatee:      "incubatee",
	RoleInspector:      "due-diligence-inspector",
}

// KnownRoles lists the role ids the console understands, in ascending order.
func KnownRoles() []RoleID {
	return []RoleID{RoleSuperAdmin, RoleIncubatorAdmin, RoleOperator, RoleIncubatee, RoleInspector}
}

func (r RoleID) Known() bool {
	_, ok := roleNames[r]
	return ok
}

func (r RoleID) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "reserved(" + strconv.Itoa(int(r)) + ")"
}

// ParseRoleID accepts the numeric id or the role name.
func ParseRoleID(s string) (RoleID, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return RoleID(n), nil
	}
	for id, name := range roleNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}
