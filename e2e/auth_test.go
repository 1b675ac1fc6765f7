//go:build e2e

package e2e

import (
	"testing"
)

func TestAuthOperations(t *testing.T) {
	helper := NewE2ETestHelper(t)
	helper.LogTestInfo(t)

	if helper.App.Auth.AppOnly() {
		t.Skip("The signed-in user is not available with app-only authentication")
	}

	t.Run("Me", func(t *testing.T) {
		user, err := helper.App.SDK.Me(helper.Context(t))
		if err != nil {
			t.Fatalf("Failed to get user info: %v", err)
		}

		if user.UserPrincipalName == "" {
			t.Error("Expected UserPrincipalName to be populated, but it was empty")
		}

		if user.ID == "" {
			t.Error("Expected user ID to be populated, but it was empty")
		}

		t.Logf("Successfully fetched user info for: %s", user.UserPrincipalName)
	})
}
