// Package guard holds the one table of which role may open which screen, and the checks
// built on it.
package guard

import (
	"fmt"
	"sort"

	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
)

// Screen paths.
const (
	ScreenLogin             = "/login"
	ScreenDashboard         = "/Incubation/Dashboard"
	ScreenStartupDashboard  = "/startup/Dashboard"
	ScreenIncubations       = "/Incubation/Incubations"
	ScreenApplications      = "/Incubation/Applications"
	ScreenApplicationGroups = "/Incubation/ApplicationGroups"
	ScreenRoles             = "/Incubation/Roles"
	ScreenUsers             = "/Incubation/Users"
	ScreenAssociations      = "/Incubation/Associations"
	ScreenChat              = "/chat"
)

// Screen is one navigable screen. A nil Roles list makes it public.
type Screen struct {
	Path  string            `json:"path"`
	Title string            `json:"title"`
	Roles []coreuser.RoleID `json:"roles,omitempty"`
}

func (s Screen) Public() bool { return s.Roles == nil }

func (s Screen) allows(role coreuser.RoleID) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Redirect is a role-based redirect rule found elsewhere in the console's history. Rules
// are not applied; they are checked against the matrix so contradictions show up.
type Redirect struct {
	Name  string            `json:"name"`
	Roles []coreuser.RoleID `json:"roles"`
	To    string            `json:"to"`
}

type Matrix struct {
	screens   []Screen
	defaults  map[coreuser.RoleID]string
	fallback  string
	redirects []Redirect
}

func NewMatrix(screens []Screen, defaults map[coreuser.RoleID]string, fallback string, redirects []Redirect) *Matrix {
	return &Matrix{screens: screens, defaults: defaults, fallback: fallback, redirects: redirects}
}

// DefaultMatrix is the authoritative role/screen table of the console.
func DefaultMatrix() *Matrix {
	r := func(ids ...coreuser.RoleID) []coreuser.RoleID { return ids }
	return NewMatrix(
		[]Screen{
			{Path: ScreenLogin, Title: "Login"},
			{Path: ScreenDashboard, Title: "Dashboard", Roles: r(coreuser.RoleSuperAdmin, coreuser.RoleIncubatorAdmin, coreuser.RoleOperator, coreuser.RoleInspector)},
			{Path: ScreenStartupDashboard, Title: "Startup Dashboard", Roles: r(coreuser.RoleIncubatee)},
			{Path: ScreenIncubations, Title: "Incubation Management", Roles: r(coreuser.RoleSuperAdmin)},
			{Path: ScreenApplications, Title: "Application Management", Roles: r(coreuser.RoleSuperAdmin)},
			{Path: ScreenApplicationGroups, Title: "Application Groups", Roles: r(coreuser.RoleSuperAdmin)},
			{Path: ScreenRoles, Title: "Role Management", Roles: r(coreuser.RoleSuperAdmin)},
			{Path: ScreenUsers, Title: "User Management", Roles: r(coreuser.RoleSuperAdmin, coreuser.RoleIncubatorAdmin)},
			{Path: ScreenAssociations, Title: "Association Management", Roles: r(coreuser.RoleSuperAdmin, coreuser.RoleIncubatorAdmin)},
			{Path: ScreenChat, Title: "Chat", Roles: r(coreuser.RoleIncubatorAdmin, coreuser.RoleOperator, coreuser.RoleIncubatee, coreuser.RoleInspector)},
		},
		map[coreuser.RoleID]string{coreuser.RoleIncubatee: ScreenStartupDashboard},
		ScreenDashboard,
		[]Redirect{
			// The post-login redirect has always listed role 4 next to 1, 3 and 7.
			{Name: "post-login redirect", Roles: r(coreuser.RoleIncubatorAdmin, coreuser.RoleOperator, coreuser.RoleIncubatee, coreuser.RoleInspector), To: ScreenDashboard},
		},
	)
}

func (m *Matrix) Screens() []Screen {
	return append([]Screen(nil), m.screens...)
}

func (m *Matrix) Screen(path string) (Screen, bool) {
	for _, s := range m.screens {
		if s.Path == path {
			return s, true
		}
	}
	return Screen{}, false
}

// Allows reports whether role may open path. Unknown paths are closed to everyone.
func (m *Matrix) Allows(path string, role coreuser.RoleID) bool {
	s, ok := m.Screen(path)
	if !ok {
		return false
	}
	return s.Public() || s.allows(role)
}

// DefaultScreen is where a role lands after login or after a denied navigation.
func (m *Matrix) DefaultScreen(role coreuser.RoleID) string {
	if path, ok := m.defaults[role]; ok {
		return path
	}
	return m.fallback
}

// Navigation lists the protected screens role may open, in matrix order.
func (m *Matrix) Navigation(role coreuser.RoleID) []Screen {
	var out []Screen
	for _, s := range m.screens {
		if !s.Public() && s.allows(role) {
			out = append(out, s)
		}
	}
	return out
}

// Inconsistencies describes every place where the matrix contradicts itself or a recorded
// redirect rule. It does not change any decision.
func (m *Matrix) Inconsistencies() []string {
	var issues []string

	for _, s := range m.screens {
		if s.Roles != nil && len(s.Roles) == 0 {
			issues = append(issues, fmt.Sprintf("screen %s has an empty allow-list and can never be opened", s.Path))
		}
	}

	for _, role := range coreuser.KnownRoles() {
		target := m.DefaultScreen(role)
		if !m.Allows(target, role) {
			issues = append(issues, fmt.Sprintf("default screen %s of role %d (%s) does not admit that role", target, role, role))
		}
	}

	for _, rd := range m.redirects {
		for _, role := range rd.Roles {
			if !m.Allows(rd.To, role) {
				issues = append(issues, fmt.Sprintf("%s sends role %d (%s) to %s, which denies it; the guard sends it to %s",
					rd.Name, role, role, rd.To, m.DefaultScreen(role)))
			}
		}
	}

	sort.Strings(issues)
	return issues
}
