package application

import "github.com/frahmantamala/incubation-console/internal/core/datamodel"

type Group struct {
	ID          datamodel.ID         `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	AdminState  datamodel.AdminState `json:"adminState"`
}

// Application is a menu entry of the platform, grouped by Group.
type Application struct {
	ID          datamodel.ID         `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Path        string               `json:"path"`
	GroupID     datamodel.ID         `json:"groupId"`
	GroupName   string               `json:"groupName,omitempty"`
	AdminState  datamodel.AdminState `json:"adminState"`
}
