// Package cmd (sp_fields.go) defines the site field commands, including bulk
// provisioning from a YAML file.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Manage the site's fields (columns)",
}

var fieldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List site fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		return fieldsListLogic(cmd.Context(), a, out, filter)
	},
}

var fieldsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a field of the given --type",
	Long: `Creates a site field. Type-specific settings come from --formula
(Calculated), --choices (Choice, MultiChoice) and --lookup-list with
--lookup-field (Lookup).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return fieldsAddLogic(cmd.Context(), a, out, fieldDefinitionFromFlags(cmd, args[0]))
	},
}

var fieldsXMLCmd = &cobra.Command{
	Use:   "xml <schema-xml|@file>",
	Short: "Create a field from CAML schema XML",
	Long:  `Creates a field from its <Field .../> schema. Prefix a path with @ to read the schema from a file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		schema, err := readSchema(args[0])
		if err != nil {
			return err
		}
		options, _ := cmd.Flags().GetInt("options")
		return fieldsXMLLogic(cmd.Context(), a, out, schema, sp.AddFieldOptions(options))
	},
}

var fieldsDeleteCmd = &cobra.Command{
	Use:   "delete <field-id>",
	Short: "Delete a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := setup(cmd)
		if err != nil {
			return err
		}
		return fieldsDeleteLogic(cmd.Context(), a, args[0])
	},
}

var fieldsShowCmd = &cobra.Command{
	Use:   "show <field-id>",
	Short: "Show or hide a field on the display, edit or new form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := setup(cmd)
		if err != nil {
			return err
		}
		form, _ := cmd.Flags().GetString("form")
		hide, _ := cmd.Flags().GetBool("hide")
		return fieldsShowLogic(cmd.Context(), a, args[0], app.Form(strings.ToLower(form)), !hide)
	},
}

var fieldsProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create every field listed in a YAML file",
	Long: `Creates the fields listed in --file, several at a time. A failing field
does not stop the others; failures are reported at the end.

Example file:

  fields:
    - title: Status
      type: Choice
      choices: [Open, Closed]
    - title: Total
      type: Calculated
      formula: "=[Price]*[Quantity]"
    - title: Customer
      type: Lookup
      lookupList: "3f0a..."
      lookupField: Title`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("file")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		return fieldsProvisionLogic(cmd.Context(), a, out, path, concurrency)
	},
}

func fieldDefinitionFromFlags(cmd *cobra.Command, title string) app.FieldDefinition {
	def := app.FieldDefinition{Title: title, Props: map[string]any{}}
	def.Type, _ = cmd.Flags().GetString("type")
	def.Formula, _ = cmd.Flags().GetString("formula")
	def.Choices, _ = cmd.Flags().GetStringSlice("choices")
	def.List, _ = cmd.Flags().GetString("lookup-list")
	def.Show, _ = cmd.Flags().GetString("lookup-field")
	if group, _ := cmd.Flags().GetString("group"); group != "" {
		def.Props["Group"] = group
	}
	if cmd.Flags().Changed("required") {
		def.Props["Required"], _ = cmd.Flags().GetBool("required")
	}
	return def
}

func readSchema(arg string) (string, error) {
	path, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return arg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	return string(data), nil
}

func fieldsListLogic(ctx context.Context, a *app.App, out *ui.Printer, filter string) error {
	fields, err := a.SDK.ListFields(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing fields: %w", err)
	}
	return out.Print(fields, ui.FieldsTable(fields))
}

func fieldsAddLogic(ctx context.Context, a *app.App, out *ui.Printer, def app.FieldDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	field, err := a.SDK.AddField(ctx, def)
	if err != nil {
		return err
	}
	return out.Print(field, ui.FieldTable(field))
}

func fieldsXMLLogic(ctx context.Context, a *app.App, out *ui.Printer, schema string, options sp.AddFieldOptions) error {
	if strings.TrimSpace(schema) == "" {
		return fmt.Errorf("schema XML is empty")
	}
	field, err := a.SDK.AddFieldAsXML(ctx, schema, options)
	if err != nil {
		return err
	}
	return out.Print(field, ui.FieldTable(field))
}

func fieldsDeleteLogic(ctx context.Context, a *app.App, id string) error {
	if err := a.SDK.DeleteField(ctx, id); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Field %s deleted.", id))
	return nil
}

func fieldsShowLogic(ctx context.Context, a *app.App, id string, form app.Form, show bool) error {
	if err := a.SDK.ShowField(ctx, id, form, show); err != nil {
		return fmt.Errorf("changing %s form visibility of field %s: %w", form, id, err)
	}
	state := "shown on"
	if !show {
		state = "hidden from"
	}
	ui.Success(fmt.Sprintf("Field %s is now %s the %s form.", id, state, form))
	return nil
}

// provisionRow is the printable outcome of one provisioned field.
type provisionRow struct {
	Title string `json:"title"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

func fieldsProvisionLogic(ctx context.Context, a *app.App, out *ui.Printer, path string, concurrency int) error {
	defs, err := app.LoadFieldDefinitions(path)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Println("No fields defined in", path)
		return nil
	}

	bar := ui.NewProgressBar(len(defs), "Provisioning fields")
	results := app.ProvisionFields(ctx, a.SDK, defs, concurrency, func(app.ProvisionResult) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	rows := make([]provisionRow, 0, len(results))
	table := ui.Table{Header: []string{"Title", "ID", "Result"}}
	failed := 0
	for _, r := range results {
		row := provisionRow{Title: r.Title, ID: r.Field.ID}
		status := "created"
		if r.Err != nil {
			failed++
			row.Error = r.Err.Error()
			status = row.Error
		}
		rows = append(rows, row)
		table.Rows = append(table.Rows, []string{r.Title, r.Field.ID, status})
	}
	if err := out.Print(rows, table); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fields failed", failed, len(results))
	}
	return nil
}
