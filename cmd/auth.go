// Package cmd (auth.go) defines the Cobra commands related to authentication
// with Microsoft Entra ID: 'auth login', 'auth logout' and 'auth status'.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/auth"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// authCmd is the parent of the login, logout and status subcommands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication with Microsoft Graph and SharePoint",
	Long:  `Provides subcommands to log in, clear the stored token (logout), and check authentication status.`,
}

// authLoginCmd handles 'auth login'.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in using the device code flow, a browser, or a client secret",
	Long: `Starts an interactive login and stores a refresh token that serves both
Microsoft Graph and SharePoint.

By default the device code flow is used: you are asked to visit a URL and
enter a code, and the command waits until you finish. With --browser a local
redirect listener is started and the sign-in page opens in your browser.

When a client secret is configured (client_secret or PNP_CLIENT_SECRET),
--app-only verifies the credentials instead; nothing is stored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth login': %w", err)
		}
		useBrowser, _ := cmd.Flags().GetBool("browser")
		appOnly, _ := cmd.Flags().GetBool("app-only")
		return authLoginLogic(cmd.Context(), a, useBrowser, appOnly)
	},
}

// authLogoutCmd handles 'auth logout'.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Long:  `Removes the stored token. After logging out, run 'pnp auth login' again to use commands that call the APIs.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth logout': %w", err)
		}
		return authLogoutLogic(a)
	},
}

// authStatusCmd handles 'auth status'.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the current authentication status",
	Long:  `Checks whether a token is stored and, if so, shows the signed-in user.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'auth status': %w", err)
		}
		return authStatusLogic(cmd.Context(), a)
	},
}

func authLoginLogic(ctx context.Context, a *app.App, useBrowser, appOnly bool) error {
	if appOnly || a.Auth.AppOnly() {
		if !a.Auth.AppOnly() {
			return errors.New("--app-only needs client_secret or PNP_CLIENT_SECRET to be set")
		}
		ts, err := a.Auth.TokenSource(ctx, a.Config.GraphURL)
		if err != nil {
			return fmt.Errorf("app-only login failed: %w", err)
		}
		if _, err := ts.Token(); err != nil {
			return fmt.Errorf("app-only login failed: %w", err)
		}
		ui.Success(fmt.Sprintf("Client credentials for %s are valid.", a.Config.ClientID))
		return nil
	}

	if tok, err := a.Auth.Status(); err == nil && tok != nil {
		fmt.Println("You are already logged in. To switch accounts, run 'pnp auth logout' first.")
		return nil
	}

	var err error
	if useBrowser {
		_, err = a.Auth.BrowserLogin(ctx, nil, func(authURL string) {
			fmt.Printf("Opening your browser to sign in. If it does not open, visit:\n%s\n", authURL)
		})
	} else {
		_, err = a.Auth.DeviceLogin(ctx, func(resp *oauth2.DeviceAuthResponse) {
			fmt.Printf("To complete authentication, please open a web browser and go to:\n%s\n", resp.VerificationURI)
			fmt.Printf("Then, enter the following code: %s\n\n", resp.UserCode)
			if !resp.Expiry.IsZero() {
				fmt.Printf("This code expires at %s. Waiting for you to finish...\n", resp.Expiry.Local().Format("15:04:05"))
			}
		})
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	ui.Success("Login successful.")
	return nil
}

func authLogoutLogic(a *app.App) error {
	if err := a.Auth.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	ui.Success("You have been logged out.")
	return nil
}

func authStatusLogic(ctx context.Context, a *app.App) error {
	if a.Auth.AppOnly() {
		fmt.Printf("Using app-only authentication as client %s in tenant %s.\n", a.Config.ClientID, a.Config.Tenant)
		return nil
	}
	if _, err := a.Auth.Status(); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			fmt.Println("You are not logged in. Please run 'pnp auth login'.")
			return nil
		}
		return fmt.Errorf("checking authentication status: %w", err)
	}

	user, err := a.SDK.Me(ctx)
	if err != nil {
		return fmt.Errorf("could not retrieve user information: %w", err)
	}
	fmt.Printf("You are logged in as: %s (%s)\n", user.DisplayName, user.UserPrincipalName)
	return nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().Bool("browser", false, "Sign in through the system browser instead of a device code")
	authLoginCmd.Flags().Bool("app-only", false, "Verify the configured client secret instead of signing in a user")
}
