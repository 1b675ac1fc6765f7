//go:build e2e

package e2e

import (
	"testing"
)

// TestE2ESetupValidation is a minimal test to validate E2E configuration
func TestE2ESetupValidation(t *testing.T) {
	cfg := LoadConfig()
	t.Logf("Prefix: %s", cfg.Prefix)
	t.Logf("Timeout: %v", cfg.Timeout)
	t.Logf("Cleanup: %v", cfg.Cleanup)

	helper := NewE2ETestHelper(t)
	helper.LogTestInfo(t)

	if helper.App.Auth.AppOnly() {
		t.Log("Authentication: app-only")
		return
	}
	tok, err := helper.App.Auth.Status()
	if err != nil {
		t.Fatalf("Failed to read token: %v", err)
	}
	if tok.RefreshToken == "" {
		t.Error("Expected a refresh token; log in again with 'pnp auth login'")
	}
	t.Log("Your E2E testing environment is ready to use.")
}
