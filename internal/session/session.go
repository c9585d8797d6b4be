package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	coreuser "github.com/frahmantamala/incubation-console/internal/core/user"
)

// Session is the identity established by a successful login.
type Session struct {
	Token       string          `json:"-"`
	UserID      string          `json:"userId"`
	RoleID      coreuser.RoleID `json:"roleId"`
	TenantID    *string         `json:"tenantId"`
	DisplayName string          `json:"displayName"`
	StartedAt   time.Time       `json:"startedAt"`
	// ExpiresAt is read from the token when it is a JWT carrying exp; zero otherwise.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Tenant returns the tenant id or "" for tenant-less roles.
func (s Session) Tenant() string {
	if s.TenantID == nil {
		return ""
	}
	return *s.TenantID
}

// Reader is the read-only view list screens and the API client get.
type Reader interface {
	Current() (Session, bool)
}

// tokenExpiry reads exp without verifying the signature; the console never holds the signing key.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
