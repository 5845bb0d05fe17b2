package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/consent"
)

func execute(t *testing.T, store string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--store", store}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestConsentLifecycle(t *testing.T) {
	store := filepath.Join(t.TempDir(), "consents.json")

	out, err := execute(t, store, "generate", "--user-id", "alice", "--purpose", "budgeting", "-o", "json")
	require.NoError(t, err)
	var c consent.Consent
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "alice", c.UserID)

	out, err = execute(t, store, "validate", "--consent-id", c.ID, "--action", "share:budgeting")
	require.NoError(t, err)
	assert.Contains(t, out, "Consent Validation: ✅ Valid")

	out, err = execute(t, store, "revoke", "--consent-id", c.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "revoked successfully")

	out, err = execute(t, store, "list", "--user-id", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 consents:")
	assert.Contains(t, out, c.ID+": budgeting_app_access (revoked)")

	out, err = execute(t, store, "summary", "--user-id", "alice", "--output", "json")
	require.NoError(t, err)
	var s consent.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 1, s.Revoked)
	assert.Equal(t, 0, s.Active)
}

func TestRevokeUnknownReportsFailure(t *testing.T) {
	store := filepath.Join(t.TempDir(), "consents.json")

	out, err := execute(t, store, "revoke", "--consent-id", "consent_nope", "-o", "json")
	assert.Error(t, err)
	assert.Contains(t, out, `"success": false`)
}

func TestFlagValidation(t *testing.T) {
	store := filepath.Join(t.TempDir(), "consents.json")

	_, err := execute(t, store, "generate", "--user-id", "alice")
	assert.ErrorContains(t, err, "purpose")

	_, err = execute(t, store, "list", "--output", "yaml")
	assert.ErrorContains(t, err, "--output")

	_, err = execute(t, store, "list", "--status", "pending")
	assert.ErrorContains(t, err, "--status")

	_, err = execute(t, store, "generate", "--user-id", "alice", "--purpose", "crypto")
	assert.ErrorContains(t, err, "Unknown consent purpose")
}
