package cmd

import (
	"github.com/spf13/cobra"
)

var SPCmd = &cobra.Command{
	Use:   "sp",
	Short: "Work with a SharePoint site",
	Long: `Provides commands for the site given by --site, site_url or PNP_SITE_URL:
site groups and their members, fields, and regional settings.`,
}

func InitSPCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(SPCmd)

	SPCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsAddCmd)
	groupsCmd.AddCommand(groupsUpdateCmd)
	groupsCmd.AddCommand(groupsRemoveCmd)
	groupsCmd.AddCommand(groupsUsersCmd)
	groupsCmd.AddCommand(groupsSetOwnerCmd)

	SPCmd.AddCommand(fieldsCmd)
	fieldsCmd.AddCommand(fieldsListCmd)
	fieldsCmd.AddCommand(fieldsAddCmd)
	fieldsCmd.AddCommand(fieldsXMLCmd)
	fieldsCmd.AddCommand(fieldsDeleteCmd)
	fieldsCmd.AddCommand(fieldsShowCmd)
	fieldsCmd.AddCommand(fieldsProvisionCmd)

	SPCmd.AddCommand(regionalCmd)
	regionalCmd.AddCommand(regionalLanguagesCmd)
	regionalCmd.AddCommand(regionalTimeZoneCmd)
	regionalCmd.AddCommand(regionalTimeZonesCmd)
	regionalCmd.AddCommand(regionalUTCToLocalCmd)
	regionalCmd.AddCommand(regionalLocalToUTCCmd)

	// Group flags
	groupsAddCmd.Flags().String("description", "", "Group description")
	groupsUpdateCmd.Flags().String("title", "", "New title")
	groupsUpdateCmd.Flags().String("description", "", "New description")

	// Field flags
	fieldsListCmd.Flags().String("filter", "", "OData filter, e.g. \"Hidden eq false\"")
	fieldsAddCmd.Flags().String("type", "Text", "Field type, e.g. Text, Note, Number, Choice, Lookup, Calculated")
	fieldsAddCmd.Flags().String("formula", "", "Formula of a Calculated field")
	fieldsAddCmd.Flags().StringSlice("choices", nil, "Choices of a Choice or MultiChoice field")
	fieldsAddCmd.Flags().String("lookup-list", "", "List ID a Lookup field points at")
	fieldsAddCmd.Flags().String("lookup-field", "", "Internal name shown by a Lookup field")
	fieldsAddCmd.Flags().String("group", "", "Field group")
	fieldsAddCmd.Flags().Bool("required", false, "Require a value")
	fieldsXMLCmd.Flags().Int("options", 0, "AddFieldOptions bit flags, e.g. 8 to use the internal name hint")
	fieldsShowCmd.Flags().String("form", "", "Form to change: display, edit or new")
	fieldsShowCmd.Flags().Bool("hide", false, "Hide the field instead of showing it")
	fieldsProvisionCmd.Flags().StringP("file", "f", "", "YAML file with the field definitions")
	fieldsProvisionCmd.Flags().Int("concurrency", 0, "Fields created in parallel (default 4)")
	_ = fieldsProvisionCmd.MarkFlagRequired("file")
	_ = fieldsShowCmd.MarkFlagRequired("form")
}
