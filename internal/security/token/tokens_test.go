package tokens

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHexToken_LengthAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := GenerateHexToken(32)
		require.NoError(t, err)
		require.Len(t, tok, 64)
		_, err = hex.DecodeString(tok)
		require.NoError(t, err)

		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %q", tok)
		seen[tok] = struct{}{}
	}
}

func TestGenerateHexToken_RejectsNonPositive(t *testing.T) {
	_, err := GenerateHexToken(0)
	assert.Error(t, err)
}

func TestGenerateOpaqueToken(t *testing.T) {
	tok, err := GenerateOpaqueToken(24)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
}

func TestSHA256Base64URL_KnownVector(t *testing.T) {
	// RFC 7636 Appendix B
	got := SHA256Base64URL("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", got)
}
