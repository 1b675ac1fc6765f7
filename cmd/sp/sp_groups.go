// Package cmd (sp_groups.go) defines the site group commands.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage the site's SharePoint groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List site groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return groupsListLogic(cmd.Context(), a, out)
	},
}

var groupsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a site group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		return groupsAddLogic(cmd.Context(), a, out, args[0], description)
	},
}

var groupsUpdateCmd = &cobra.Command{
	Use:   "update <group-id>",
	Short: "Change a site group's title or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := setup(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("group id", args[0])
		if err != nil {
			return err
		}
		props := odata.Props{}
		if cmd.Flags().Changed("title") {
			props["Title"], _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			props["Description"], _ = cmd.Flags().GetString("description")
		}
		return groupsUpdateLogic(cmd.Context(), a, id, props)
	},
}

var groupsRemoveCmd = &cobra.Command{
	Use:   "remove <group-id>",
	Short: "Delete a site group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := setup(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("group id", args[0])
		if err != nil {
			return err
		}
		return groupsRemoveLogic(cmd.Context(), a, id)
	},
}

var groupsUsersCmd = &cobra.Command{
	Use:   "users <group-id>",
	Short: "List the members of a site group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("group id", args[0])
		if err != nil {
			return err
		}
		return groupsUsersLogic(cmd.Context(), a, out, id)
	},
}

var groupsSetOwnerCmd = &cobra.Command{
	Use:   "set-owner <group-id> <owner-id>",
	Short: "Make a user or group the owner of a site group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := setup(cmd)
		if err != nil {
			return err
		}
		groupID, err := parseID("group id", args[0])
		if err != nil {
			return err
		}
		ownerID, err := parseID("owner id", args[1])
		if err != nil {
			return err
		}
		return groupsSetOwnerLogic(cmd.Context(), a, groupID, ownerID)
	},
}

func groupsListLogic(ctx context.Context, a *app.App, out *ui.Printer) error {
	groups, err := a.SDK.ListSiteGroups(ctx)
	if err != nil {
		return fmt.Errorf("listing site groups: %w", err)
	}
	return out.Print(groups, ui.SiteGroupsTable(groups))
}

func groupsAddLogic(ctx context.Context, a *app.App, out *ui.Printer, title, description string) error {
	group, err := a.SDK.AddSiteGroup(ctx, title, description)
	if err != nil {
		return err
	}
	return out.Print(group, ui.SiteGroupTable(group))
}

func groupsUpdateLogic(ctx context.Context, a *app.App, id int, props odata.Props) error {
	if len(props) == 0 {
		return errors.New("nothing to update: pass --title or --description")
	}
	if err := a.SDK.UpdateSiteGroup(ctx, id, props); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Site group %d updated.", id))
	return nil
}

func groupsRemoveLogic(ctx context.Context, a *app.App, id int) error {
	if err := a.SDK.RemoveSiteGroup(ctx, id); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Site group %d removed.", id))
	return nil
}

func groupsUsersLogic(ctx context.Context, a *app.App, out *ui.Printer, id int) error {
	users, err := a.SDK.ListSiteGroupUsers(ctx, id)
	if err != nil {
		return fmt.Errorf("listing members of site group %d: %w", id, err)
	}
	return out.Print(users, ui.SiteUsersTable(users))
}

func groupsSetOwnerLogic(ctx context.Context, a *app.App, groupID, ownerID int) error {
	if err := a.SDK.SetSiteGroupOwner(ctx, groupID, ownerID); err != nil {
		return fmt.Errorf("setting owner of site group %d: %w", groupID, err)
	}
	ui.Success(fmt.Sprintf("Principal %d now owns site group %d.", ownerID, groupID))
	return nil
}
