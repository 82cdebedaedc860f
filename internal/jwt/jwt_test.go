package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestKeys(t *testing.T) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privateKey = key
	publicKey = &key.PublicKey
}

func TestSignAndValidatePlayerName(t *testing.T) {
	useTestKeys(t)

	sign, err := Sign("Bluffing Shark")
	assert.NoError(t, err)

	name, err := ValidPlayerName(sign)
	assert.NoError(t, err)
	assert.Equal(t, "Bluffing Shark", name)
}

func TestValidPlayerName_InvalidAudience(t *testing.T) {
	useTestKeys(t)

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{"different-audience"},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   Issuer,
		Subject:  "Alice",
	})

	signedToken, err := token.SignedString(privateKey)
	require.NoError(t, err)

	name, err := ValidPlayerName(signedToken)
	assert.EqualError(t, err, "invalid audience")
	assert.Equal(t, "", name)
}

func TestValidPlayerName_InvalidIssuer(t *testing.T) {
	useTestKeys(t)

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   "invalid-issuer",
		Subject:  "Alice",
	})

	signedToken, err := token.SignedString(privateKey)
	require.NoError(t, err)

	name, err := ValidPlayerName(signedToken)
	assert.EqualError(t, err, "invalid issuer")
	assert.Equal(t, "", name)
}

func TestValidPlayerName_Expired(t *testing.T) {
	useTestKeys(t)

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		ID:        uuid.New().String(),
		IssuedAt:  jwtgo.NewNumericDate(time.Now()),
		Issuer:    Issuer,
		ExpiresAt: jwtgo.NewNumericDate(time.Now().Add(time.Hour * -1)),
		Subject:   "Alice",
	})

	signedToken, err := token.SignedString(privateKey)
	require.NoError(t, err)

	name, err := ValidPlayerName(signedToken)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "token is expired")
	}
	assert.Equal(t, "", name)
}

func TestValidPlayerName_WrongKey(t *testing.T) {
	useTestKeys(t)
	signedToken, err := Sign("Alice")
	require.NoError(t, err)

	// rotate the verification key
	useTestKeys(t)

	name, err := ValidPlayerName(signedToken)
	assert.Error(t, err)
	assert.Equal(t, "", name)
}

func TestLoadKeysFromPEMFiles(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()

	privatePath := filepath.Join(dir, "private.key")
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	publicPath := filepath.Join(dir, "public.pem")
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0600))

	privateKey = loadPrivateKey(privatePath)
	publicKey = loadPublicKey(publicPath)

	sign, err := Sign("Folding Fox")
	assert.NoError(t, err)

	name, err := ValidPlayerName(sign)
	assert.NoError(t, err)
	assert.Equal(t, "Folding Fox", name)
}
