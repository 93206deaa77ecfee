package testutil

import (
	"crypto/rsa"
	"testing"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
)

type staticKeys map[string]*rsa.PublicKey

func (s staticKeys) Get(kid string) (*rsa.PublicKey, error) {
	if k, ok := s[kid]; ok {
		return k, nil
	}
	return nil, auth.ErrKeyNotFound
}

// CreateTestVerifier returns a verifier that trusts tokens signed with the
// returned private key under TestKeyID.
func CreateTestVerifier(t *testing.T) (*auth.Verifier, *rsa.PrivateKey) {
	t.Helper()

	privateKey, publicKey := GenerateTestKeyPair(t)
	verifier := auth.NewVerifier(
		auth.Config{Issuer: TestIssuer},
		staticKeys{TestKeyID: publicKey},
	)
	return verifier, privateKey
}
