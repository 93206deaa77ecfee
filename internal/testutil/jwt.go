package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// TestIssuer is the issuer test tokens are signed for.
	TestIssuer = "https://auth.test.local/realms/clinic"
	// TestKeyID is the kid header of test tokens.
	TestKeyID = "test-key-id"
)

// GenerateTestKeyPair generates an RSA key pair for testing JWT tokens
func GenerateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

// GenerateTestJWT signs a token carrying the subject, email, clinic and
// realm roles the auth middleware reads.
func GenerateTestJWT(t *testing.T, privateKey *rsa.PrivateKey, userID, email, clinicID string, roles []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": TestIssuer,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
		"realm_access": map[string]interface{}{
			"roles": interfaceSlice(roles),
		},
	}
	if email != "" {
		claims["email"] = email
	}
	if clinicID != "" {
		claims["clinic_id"] = clinicID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = TestKeyID

	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}

func GenerateAdminToken(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "admin-123", "admin@clinic.test", "", []string{"ADMIN"})
}

func GenerateStaffToken(t *testing.T, privateKey *rsa.PrivateKey, clinicID string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "staff-123", "staff@clinic.test", clinicID, []string{"CLINIC_STAFF"})
}

func GeneratePatientToken(t *testing.T, privateKey *rsa.PrivateKey, patientID string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, patientID, patientID+"@patients.test", "", []string{"PATIENT"})
}

func interfaceSlice(strings []string) []interface{} {
	result := make([]interface{}, len(strings))
	for i, s := range strings {
		result[i] = s
	}
	return result
}
