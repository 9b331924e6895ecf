package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/pkg/jwt"
)

func TestGenerateYParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate("secreto", "user-1", "branch-1", "cashier", "pos", 5)
	require.NoError(t, err)

	claims, err := jwt.ParseClaims("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "branch-1", claims.BranchID)
	assert.Equal(t, "cashier", claims.Role)
	assert.NotEmpty(t, claims.ID, "cada token debe tener jti")
	assert.InDelta(t, 5*time.Minute, claims.Remaining(time.Now()), float64(5*time.Second))
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("secreto", "user-1", "", "admin", "pos", 5)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "", "admin", "pos", 5)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "user-1", "", "admin", "pos", -1)
	require.NoError(t, err)

	_, err = jwt.ParseClaims("secreto", token)
	assert.Error(t, err)
}
