package incubation

import "github.com/frahmantamala/incubation-console/internal/core/datamodel"

// Incubation is a tenant organisation.
type Incubation struct {
	ID          datamodel.ID         `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Location    string               `json:"location"`
	AdminState  datamodel.AdminState `json:"adminState"`
}
