package auth

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
)

// LoginForm is the transport shape accepted by POST /login and the shell's login command.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f LoginForm) Validate() error {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(f.Email)).Required().Email()
	v.Field("password", f.Password).Required()

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// values is the form-urlencoded body the backend's login endpoint expects.
func (f LoginForm) values() url.Values {
	return url.Values{
		"email":    {strings.TrimSpace(f.Email)},
		"password": {f.Password},
	}
}

type logoutRequest struct {
	Reason string `json:"reason"`
}
