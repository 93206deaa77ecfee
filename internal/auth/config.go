package auth

import (
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/config"
)

// Roles recognised in realm_access.roles.
const (
	RoleAdmin       = "ADMIN"
	RoleClinicStaff = "CLINIC_STAFF"
	RoleProvider    = "PROVIDER"
	RolePatient     = "PATIENT"
)

// Config holds auth configuration
type Config struct {
	Issuer          string
	JWKSURL         string
	Audience        string
	RefreshInterval time.Duration
}

// ConfigFrom picks the auth settings out of the service configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Issuer:          cfg.AuthIssuer,
		JWKSURL:         cfg.AuthJWKSURL,
		Audience:        cfg.AuthAudience,
		RefreshInterval: cfg.JWKSRefreshInterval,
	}
}
