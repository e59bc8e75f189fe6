package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvToken, "")
	return home
}

func TestTokenLifecycle(t *testing.T) {
	home := withHome(t)

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)

	require.NoError(t, SetToken("Bearer abc123", nil))
	info, err := os.Stat(filepath.Join(home, ".cardboard", credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := Token()
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	require.NoError(t, DeleteToken())
	require.NoError(t, DeleteToken())
	tok, err = Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestEnvOverridesFile(t *testing.T) {
	withHome(t)
	require.NoError(t, SetToken("from-file", nil))
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	withHome(t)
	assert.Error(t, SetToken("  ", nil))
}

func TestJWTPayloadAndExpiry(t *testing.T) {
	withHome(t)
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"me","exp":1700000000}`))
	token := "eyJhbGciOiJub25lIn0." + payload + ".sig"

	p, ok := JWTPayload(token)
	require.True(t, ok)
	assert.Contains(t, p, `"sub":"me"`)

	_, ok = JWTPayload("opaque")
	assert.False(t, ok)

	require.NoError(t, SetToken(token, nil))
	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti.ExpiresAt)
	assert.Equal(t, int64(1700000000), ti.ExpiresAt.Unix())
}
