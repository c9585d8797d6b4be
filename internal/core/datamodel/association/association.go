package association

import "github.com/frahmantamala/incubation-console/internal/core/datamodel"

// Link is one join row between a user and an incubatee.
type Link struct {
	ID            datamodel.ID `json:"id"`
	UserID        datamodel.ID `json:"userId"`
	IncubateeID   datamodel.ID `json:"incubateeId"`
	IncubateeName string       `json:"incubateeName"`
	CreatedBy     string       `json:"createdBy"`
	CreatedAt     string       `json:"createdAt"`
}

type Incubatee struct {
	ID           datamodel.ID `json:"id"`
	Name         string       `json:"name"`
	IncubationID datamodel.ID `json:"incubationId,omitempty"`
}
