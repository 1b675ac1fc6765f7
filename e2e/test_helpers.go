//go:build e2e

package e2e

import (
	"context"
	"errors"
	"testing"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// E2ETestHelper runs the SDK against the tenant of the local pnp config.
type E2ETestHelper struct {
	App    *app.App
	Config *Config
	TestID string

	cleanups []cleanup
}

type cleanup struct {
	name string
	fn   func(ctx context.Context) error
}

// NewE2ETestHelper loads the pnp configuration the CLI uses (PNP_CONFIG_PATH
// or ~/.pnp-client/config.yaml) and skips the test when nobody is logged in.
func NewE2ETestHelper(t *testing.T) *E2ETestHelper {
	t.Helper()

	cfg := LoadConfig()
	cmd := &cobra.Command{Use: "e2e"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("site", "", "")
	cmd.Flags().String("output", "", "")
	cmd.Flags().Bool("debug", false, "")
	if cfg.SiteURL != "" {
		if err := cmd.Flags().Set("site", cfg.SiteURL); err != nil {
			t.Fatalf("Failed to set site: %v", err)
		}
	}

	a, err := app.NewApp(cmd)
	if err != nil {
		t.Fatalf("Failed to initialize app: %v", err)
	}
	if !a.Auth.AppOnly() {
		if _, err := a.Auth.Status(); errors.Is(err, auth.ErrNotLoggedIn) {
			t.Skip(`
E2E Testing Setup Required:

1. Log in with the account the tests should use:
   pnp auth login

2. Point the SharePoint tests at a disposable site:
   export PNP_E2E_SITE_URL=https://contoso.sharepoint.com/sites/e2e

3. Then run E2E tests:
   go test -tags=e2e -v ./e2e/...
`)
		} else if err != nil {
			t.Fatalf("Failed to read token: %v", err)
		}
	}

	h := &E2ETestHelper{
		App:    a,
		Config: cfg,
		TestID: uuid.NewString()[:8],
	}
	t.Cleanup(func() {
		h.Cleanup(t)
	})
	return h
}

// RequireSite skips SharePoint tests when no site is configured.
func (h *E2ETestHelper) RequireSite(t *testing.T) {
	t.Helper()
	if _, err := h.App.Config.RequireSite(); err != nil {
		t.Skip("No SharePoint site configured; set PNP_E2E_SITE_URL")
	}
}

// Context returns a context bounded by the configured timeout.
func (h *E2ETestHelper) Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), h.Config.Timeout)
	t.Cleanup(cancel)
	return ctx
}

// Name returns a name unique to this run.
func (h *E2ETestHelper) Name(kind string) string {
	return h.Config.Prefix + "-" + kind + "-" + h.TestID
}

// Defer registers a remote cleanup. Cleanups run in reverse order.
func (h *E2ETestHelper) Defer(name string, fn func(ctx context.Context) error) {
	h.cleanups = append(h.cleanups, cleanup{name: name, fn: fn})
}

// Cleanup removes everything the test created
func (h *E2ETestHelper) Cleanup(t *testing.T) {
	t.Helper()
	if !h.Config.Cleanup {
		t.Logf("Cleanup disabled; leaving %d item(s) from run %s", len(h.cleanups), h.TestID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.Config.Timeout)
	defer cancel()
	for i := len(h.cleanups) - 1; i >= 0; i-- {
		c := h.cleanups[i]
		if err := c.fn(ctx); err != nil {
			t.Logf("Warning: failed to clean up %s: %v", c.name, err)
		}
	}
	h.cleanups = nil
}

// LogTestInfo logs useful information about the test setup
func (h *E2ETestHelper) LogTestInfo(t *testing.T) {
	t.Helper()
	t.Logf("Test ID: %s", h.TestID)
	t.Logf("Client ID: %s", maskSensitive(h.App.Config.ClientID))
	t.Logf("Site: %s", h.App.Config.SiteURL)
}
