package association

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/incubation-console/internal"
	dm "github.com/frahmantamala/incubation-console/internal/core/datamodel/association"
	userdm "github.com/frahmantamala/incubation-console/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
	"github.com/frahmantamala/incubation-console/internal/listing"
)

const Module = "Association Management"

// Kind selects which users are linked: operators or due-diligence inspectors.
type Kind string

const (
	KindOperator  Kind = "operator"
	KindInspector Kind = "inspector"
)

func Kinds() []Kind { return []Kind{KindOperator, KindInspector} }

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindOperator:
		return KindOperator, nil
	case KindInspector, "ddi":
		return KindInspector, nil
	}
	return "", errors.NewValidationFieldError("kind", fmt.Sprintf("unknown association kind %q", s), errors.ErrCodeValidationFailed)
}

// Role is the role id of the users on the left side of the link.
func (k Kind) Role() coreuser.RoleID {
	if k == KindInspector {
		return coreuser.RoleInspector
	}
	return coreuser.RoleOperator
}

// UserLinks is one grid row: a user and every incubatee linked to it.
type UserLinks struct {
	User  userdm.User `json:"user"`
	Links []dm.Link   `json:"links"`
}

func (u UserLinks) IncubateeIDs() []string {
	ids := make([]string, len(u.Links))
	for i, l := range u.Links {
		ids[i] = l.IncubateeID.String()
	}
	return ids
}

func (u UserLinks) incubateeNames() []string {
	names := make([]string, len(u.Links))
	for i, l := range u.Links {
		names[i] = l.IncubateeName
	}
	return names
}

// Group folds join rows into one row per user, in user order. Users without links keep
// an empty list; links to users outside the list are dropped.
func Group(users []userdm.User, links []dm.Link) []UserLinks {
	byUser := make(map[string][]dm.Link, len(users))
	for _, l := range links {
		key := l.UserID.String()
		byUser[key] = append(byUser[key], l)
	}

	out := make([]UserLinks, 0, len(users))
	for _, u := range users {
		ls := byUser[u.ID.String()]
		if ls == nil {
			ls = []dm.Link{}
		}
		out = append(out, UserLinks{User: u, Links: ls})
	}
	return out
}

func NewDescriptor(kind Kind) listing.Descriptor[UserLinks] {
	return listing.Descriptor[UserLinks]{
		Name:   string(kind) + "-links",
		Module: Module,
		ID:     func(u UserLinks) string { return u.User.ID.String() },
		SearchFields: func(u UserLinks) []string {
			return append([]string{u.User.Name, u.User.Email}, u.incubateeNames()...)
		},
		Columns: []listing.Column[UserLinks]{
			{Key: "name", Label: "Name", Value: func(u UserLinks) string { return u.User.Name }},
			{Key: "email", Label: "Email", Value: func(u UserLinks) string { return u.User.Email }},
			{Key: "incubatees", Label: "Incubatees", Value: func(u UserLinks) string {
				names := u.incubateeNames()
				sort.Strings(names)
				return strings.Join(names, "; ")
			}},
			{
				Key:   "count",
				Label: "Links",
				Value: func(u UserLinks) string { return strconv.Itoa(len(u.Links)) },
				Less:  func(a, b UserLinks) bool { return len(a.Links) < len(b.Links) },
			},
		},
	}
}
