package application

import (
	"strings"

	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
	"github.com/frahmantamala/incubation-console/internal/crud"
)

type Form struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	GroupID     string `json:"groupId"`
	AdminState  *int   `json:"adminState"`
}

func (f Form) Validate() error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required().MaxLength(100)
	v.Field("description", f.Description).MaxLength(500)
	v.Field("path", strings.TrimSpace(f.Path)).Required().Prefix("/").MaxLength(200)
	v.Field("groupId", f.GroupID).Required()
	v.Field("adminState", crud.AdminState(f.AdminState)).OneOf(0, 1)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type request struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	GroupID     string `json:"groupId"`
	AdminState  int    `json:"adminState"`
}

func payload(f Form) interface{} {
	return request{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Path:        strings.TrimSpace(f.Path),
		GroupID:     strings.TrimSpace(f.GroupID),
		AdminState:  crud.AdminState(f.AdminState),
	}
}

type GroupForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AdminState  *int   `json:"adminState"`
}

func (f GroupForm) Validate() error {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required().MaxLength(100)
	v.Field("description", f.Description).MaxLength(500)
	v.Field("adminState", crud.AdminState(f.AdminState)).OneOf(0, 1)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AdminState  int    `json:"adminState"`
}

func groupPayload(f GroupForm) interface{} {
	return groupRequest{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		AdminState:  crud.AdminState(f.AdminState),
	}
}
