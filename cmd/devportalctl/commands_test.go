package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/devportal/internal/security/password"
	"github.com/dropDatabas3/devportal/internal/security/pkce"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func parseKV(s string) map[string]string {
	m := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		k, v, ok := strings.Cut(line, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}

func TestPKCECommand_Generates(t *testing.T) {
	out, err := execute(t, "", "pkce")
	require.NoError(t, err)

	kv := parseKV(out)
	require.NoError(t, pkce.ValidateVerifier(kv["code_verifier"]))
	assert.Equal(t, pkce.Challenge(kv["code_verifier"]), kv["code_challenge"])
	assert.Equal(t, "S256", kv["code_challenge_method"])
}

func TestPKCECommand_KnownVerifier(t *testing.T) {
	out, err := execute(t, "", "pkce", "--verifier", "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	require.NoError(t, err)
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", parseKV(out)["code_challenge"])

	_, err = execute(t, "", "pkce", "--verifier", "short")
	assert.Error(t, err)
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := execute(t, "", "hash-password", "long-enough-pass")
	require.NoError(t, err)
	assert.True(t, password.Verify("long-enough-pass", strings.TrimSpace(out)))

	out, err = execute(t, "from-stdin-pass\n", "hash-password", "--argon2id")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.True(t, password.Verify("from-stdin-pass", hash))

	_, err = execute(t, "", "hash-password", "short")
	assert.ErrorContains(t, err, "too_short")

	_, err = execute(t, "", "hash-password", "--skip-policy", "short")
	assert.NoError(t, err)
}

func TestMigrateCommand_RequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DSN", "")
	_, err := execute(t, "", "migrate", "--dsn", "")
	assert.ErrorContains(t, err, "--dsn")
}
