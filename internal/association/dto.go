package association

import (
	"strings"

	errors "github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
)

// LinkForm is the desired incubatee set of one user. An empty set unlinks everything.
type LinkForm struct {
	IncubateeIDs []string `json:"incubateeIds"`
	set          bool
}

func (f LinkForm) Validate() error {
	v := validation.NewValidator()
	v.Field("incubateeIds", f.IncubateeIDs).Custom(func(value interface{}) *errors.AppError {
		if !f.set && f.IncubateeIDs == nil {
			return errors.NewValidationFieldError("incubateeIds", "incubateeIds is required", errors.ErrCodeValidationFailed)
		}
		for _, id := range f.IncubateeIDs {
			if strings.TrimSpace(id) == "" {
				return errors.NewValidationFieldError("incubateeIds", "incubatee ids cannot be blank", errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// SplitIDs parses "1, 2,3" into ids, skipping blanks.
func SplitIDs(s string) []string {
	ids := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
