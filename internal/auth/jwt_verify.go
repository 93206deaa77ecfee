package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Principal holds identity extracted from a validated token.
type Principal struct {
	UserID   string
	Email    string
	Roles    []string
	ClinicID string
	Claims   jwt.MapClaims
}

// HasRole reports whether the principal carries role (case-insensitive).
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsPatientOnly reports whether the principal acts purely as a patient.
// Patients are restricted to their own appointments and profile.
func (p *Principal) IsPatientOnly() bool {
	return p.HasRole(RolePatient) &&
		!p.HasRole(RoleAdmin) && !p.HasRole(RoleClinicStaff) && !p.HasRole(RoleProvider)
}

// ManagesClinic reports whether the principal may act on data owned by
// clinicID. Admins manage every clinic; everyone else only the clinic named
// in their token.
func (p *Principal) ManagesClinic(clinicID string) bool {
	if p.HasRole(RoleAdmin) {
		return true
	}
	return p.ClinicID != "" && strings.EqualFold(p.ClinicID, clinicID)
}

var (
	ErrNoToken         = errors.New("no token provided")
	ErrClinicForbidden = errors.New("clinic is outside the caller's scope")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrMissingSub      = errors.New("missing sub claim")
)

// Verifier checks RS256 bearer tokens against the issuer's key set.
type Verifier struct {
	cfg  Config
	keys KeySource
}

// NewVerifier constructs a verifier with config and a key source.
func NewVerifier(cfg Config, keys KeySource) *Verifier {
	return &Verifier{cfg: cfg, keys: keys}
}

// ParseAndVerifyToken verifies a bearer token, validates issuer/aud/exp and returns Principal.
func (v *Verifier) ParseAndVerifyToken(tokenString string) (*Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrNoToken
	}
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrInvalidToken
		}
		return v.keys.Get(kid)
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != v.cfg.Issuer {
		return nil, ErrInvalidIssuer
	}
	if v.cfg.Audience != "" && !claims.VerifyAudience(v.cfg.Audience, true) {
		return nil, ErrInvalidAudience
	}
	if !claims.VerifyExpiresAt(jwt.TimeFunc().Unix(), true) {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSub
	}

	var roles []string
	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		if rr, ok := ra["roles"].([]interface{}); ok {
			for _, r := range rr {
				if s, ok := r.(string); ok {
					roles = append(roles, s)
				}
			}
		}
	}

	email, _ := claims["email"].(string)
	clinicID, _ := claims["clinic_id"].(string)

	return &Principal{
		UserID:   sub,
		Email:    email,
		Roles:    roles,
		ClinicID: clinicID,
		Claims:   claims,
	}, nil
}
