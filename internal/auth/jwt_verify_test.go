package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testIssuer = "https://idp.test/realms/clinic"

func TestVerifier_ParseAndVerifyToken_Success(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	verifier := NewVerifier(Config{Issuer: testIssuer}, newMockJWKS(publicKey))

	tokenString := signToken(t, privateKey, jwt.MapClaims{
		"sub":   "user-123",
		"iss":   testIssuer,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"email": "ana@example.com",
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"CLINIC_STAFF", "PROVIDER"},
		},
		"clinic_id": "clinic-456",
	})

	principal, err := verifier.ParseAndVerifyToken(tokenString)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if principal.UserID != "user-123" {
		t.Errorf("Expected UserID 'user-123', got '%s'", principal.UserID)
	}
	if principal.Email != "ana@example.com" {
		t.Errorf("Expected email claim, got '%s'", principal.Email)
	}
	if len(principal.Roles) != 2 || principal.Roles[0] != "CLINIC_STAFF" {
		t.Errorf("Unexpected roles %v", principal.Roles)
	}
	if principal.ClinicID != "clinic-456" {
		t.Errorf("Expected ClinicID 'clinic-456', got '%s'", principal.ClinicID)
	}
}

func TestVerifier_ParseAndVerifyToken_EmptyToken(t *testing.T) {
	verifier := NewVerifier(Config{Issuer: testIssuer}, nil)

	principal, err := verifier.ParseAndVerifyToken("  ")
	if err != ErrNoToken {
		t.Errorf("Expected ErrNoToken, got: %v", err)
	}
	if principal != nil {
		t.Error("Expected nil principal")
	}
}

func TestVerifier_ParseAndVerifyToken_Rejections(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	otherKey, _ := generateTestKeyPair(t)

	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "user-123",
			"iss": testIssuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name     string
		cfg      Config
		key      *rsa.PrivateKey
		kid      string
		mutate   func(jwt.MapClaims)
		expected error
	}{
		{
			name:     "wrong issuer",
			cfg:      Config{Issuer: testIssuer},
			key:      privateKey,
			kid:      "test-key-id",
			mutate:   func(c jwt.MapClaims) { c["iss"] = "https://evil.test" },
			expected: ErrInvalidIssuer,
		},
		{
			name:     "expired",
			cfg:      Config{Issuer: testIssuer},
			key:      privateKey,
			kid:      "test-key-id",
			mutate:   func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() },
			expected: ErrInvalidToken,
		},
		{
			name:     "missing sub",
			cfg:      Config{Issuer: testIssuer},
			key:      privateKey,
			kid:      "test-key-id",
			mutate:   func(c jwt.MapClaims) { delete(c, "sub") },
			expected: ErrMissingSub,
		},
		{
			name:     "no kid",
			cfg:      Config{Issuer: testIssuer},
			key:      privateKey,
			kid:      "",
			mutate:   func(jwt.MapClaims) {},
			expected: ErrInvalidToken,
		},
		{
			name:     "signed with another key",
			cfg:      Config{Issuer: testIssuer},
			key:      otherKey,
			kid:      "test-key-id",
			mutate:   func(jwt.MapClaims) {},
			expected: ErrInvalidToken,
		},
		{
			name:     "audience mismatch",
			cfg:      Config{Issuer: testIssuer, Audience: "clinic-api"},
			key:      privateKey,
			kid:      "test-key-id",
			mutate:   func(c jwt.MapClaims) { c["aud"] = "billing-api" },
			expected: ErrInvalidAudience,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims := valid()
			tc.mutate(claims)
			token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
			if tc.kid != "" {
				token.Header["kid"] = tc.kid
			}
			tokenString, err := token.SignedString(tc.key)
			if err != nil {
				t.Fatalf("Failed to sign token: %v", err)
			}

			principal, err := NewVerifier(tc.cfg, newMockJWKS(publicKey)).ParseAndVerifyToken(tokenString)
			if err != tc.expected {
				t.Errorf("Expected %v, got: %v", tc.expected, err)
			}
			if principal != nil {
				t.Error("Expected nil principal")
			}
		})
	}
}

func TestVerifier_ParseAndVerifyToken_NoRolesOrClinic(t *testing.T) {
	privateKey, publicKey := generateTestKeyPair(t)
	verifier := NewVerifier(Config{Issuer: testIssuer, Audience: "clinic-api"}, newMockJWKS(publicKey))

	tokenString := signToken(t, privateKey, jwt.MapClaims{
		"sub": "user-123",
		"iss": testIssuer,
		"aud": []interface{}{"account", "clinic-api"},
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := verifier.ParseAndVerifyToken(tokenString)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(principal.Roles) != 0 {
		t.Errorf("Expected 0 roles, got %d", len(principal.Roles))
	}
	if principal.ClinicID != "" {
		t.Errorf("Expected empty ClinicID, got '%s'", principal.ClinicID)
	}
}

func TestPrincipal_IsPatientOnly(t *testing.T) {
	cases := map[string]struct {
		roles []string
		want  bool
	}{
		"patient":           {[]string{"PATIENT"}, true},
		"lowercase patient": {[]string{"patient"}, true},
		"patient and staff": {[]string{"PATIENT", "CLINIC_STAFF"}, false},
		"provider":          {[]string{"PROVIDER"}, false},
		"no roles":          {nil, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := &Principal{Roles: tc.roles}
			if got := p.IsPatientOnly(); got != tc.want {
				t.Errorf("IsPatientOnly() = %v, want %v", got, tc.want)
			}
		})
	}
}

// Helper functions

func generateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

func newMockJWKS(publicKey *rsa.PublicKey) *JWKS {
	return &JWKS{
		keys: map[string]*rsa.PublicKey{
			"test-key-id": publicKey,
		},
	}
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key-id"
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return s
}
