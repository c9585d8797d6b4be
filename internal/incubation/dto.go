package incubation

import (
	"strings"

	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
	"github.com/frahmantamala/incubation-console/internal/crud"
)

type Form struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	AdminState  *int   `json:"adminState"`
}

func (f Form) Validate() error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required().MaxLength(100)
	v.Field("description", f.Description).MaxLength(500)
	v.Field("website", strings.TrimSpace(f.Website)).URL()
	v.Field("location", f.Location).MaxLength(100)
	v.Field("adminState", crud.AdminState(f.AdminState)).OneOf(0, 1)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type request struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	AdminState  int    `json:"adminState"`
}

func payload(f Form) interface{} {
	return request{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Website:     strings.TrimSpace(f.Website),
		Location:    strings.TrimSpace(f.Location),
		AdminState:  crud.AdminState(f.AdminState),
	}
}
