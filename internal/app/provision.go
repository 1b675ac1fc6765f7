package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/sp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// DefaultProvisionConcurrency bounds parallel field creation.
const DefaultProvisionConcurrency = 4

// FieldDefinition describes one field to create. Type is an SP.FieldType
// name such as Text, Choice or Lookup. Props are sent as-is and win over
// the per-type defaults.
type FieldDefinition struct {
	Title   string         `yaml:"title" json:"title"`
	Type    string         `yaml:"type" json:"type"`
	Formula string         `yaml:"formula,omitempty" json:"formula,omitempty"`
	Choices []string       `yaml:"choices,omitempty" json:"choices,omitempty"`
	List    string         `yaml:"lookupList,omitempty" json:"lookupList,omitempty"`
	Show    string         `yaml:"lookupField,omitempty" json:"lookupField,omitempty"`
	Props   map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
}

// FieldFile is the layout of a provisioning file.
type FieldFile struct {
	Fields []FieldDefinition `yaml:"fields"`
}

// ProvisionResult reports the outcome for one definition.
type ProvisionResult struct {
	Title string
	Field sp.FieldInfo
	Err   error
}

// LoadFieldDefinitions reads a YAML provisioning file.
func LoadFieldDefinitions(path string) ([]FieldDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field definitions: %w", err)
	}
	var file FieldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing field definitions %s: %w", path, err)
	}
	for i, def := range file.Fields {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	return file.Fields, nil
}

// Validate checks the definition has what its type needs.
func (d FieldDefinition) Validate() error {
	if d.Title == "" {
		return errors.New("title is required")
	}
	kind, ok := sp.ParseFieldType(d.Type)
	if !ok {
		return fmt.Errorf("unknown field type %q", d.Type)
	}
	switch kind {
	case sp.FieldTypeCalculated:
		if d.Formula == "" {
			return fmt.Errorf("%s: calculated fields need a formula", d.Title)
		}
	case sp.FieldTypeLookup:
		if d.List == "" || d.Show == "" {
			return fmt.Errorf("%s: lookup fields need lookupList and lookupField", d.Title)
		}
	}
	return nil
}

func (d FieldDefinition) add(ctx context.Context, fields *sp.Fields) (odata.Result[sp.FieldInfo, *sp.Field], error) {
	if err := d.Validate(); err != nil {
		return odata.Result[sp.FieldInfo, *sp.Field]{}, err
	}
	kind, _ := sp.ParseFieldType(d.Type)
	props := odata.Props(d.Props)

	switch kind {
	case sp.FieldTypeText:
		return fields.AddText(ctx, d.Title, props)
	case sp.FieldTypeNote:
		return fields.AddMultilineText(ctx, d.Title, props)
	case sp.FieldTypeCalculated:
		return fields.AddCalculated(ctx, d.Title, d.Formula, props)
	case sp.FieldTypeDateTime:
		return fields.AddDateTime(ctx, d.Title, props)
	case sp.FieldTypeNumber:
		return fields.AddNumber(ctx, d.Title, props)
	case sp.FieldTypeCurrency:
		return fields.AddCurrency(ctx, d.Title, props)
	case sp.FieldTypeURL:
		return fields.AddURL(ctx, d.Title, props)
	case sp.FieldTypeUser:
		return fields.AddUser(ctx, d.Title, props)
	case sp.FieldTypeLookup:
		return fields.AddLookup(ctx, d.Title, d.List, d.Show, props)
	case sp.FieldTypeChoice:
		return fields.AddChoice(ctx, d.Title, d.Choices, props)
	case sp.FieldTypeMultiChoice:
		return fields.AddMultiChoice(ctx, d.Title, d.Choices, props)
	case sp.FieldTypeBoolean:
		return fields.AddBoolean(ctx, d.Title, props)
	case sp.FieldTypeLocation:
		return fields.AddLocation(ctx, d.Title, props)
	case sp.FieldTypeImage:
		return fields.AddImage(ctx, d.Title, props)
	default:
		return fields.Add(ctx, d.Title, kind, props)
	}
}

// ProvisionFields creates every definition through sdk with at most limit
// requests in flight. A failing definition does not stop the others; the
// results keep the input order and carry per-field errors.
func ProvisionFields(ctx context.Context, sdk SDK, defs []FieldDefinition, limit int, done func(ProvisionResult)) []ProvisionResult {
	if limit <= 0 {
		limit = DefaultProvisionConcurrency
	}
	results := make([]ProvisionResult, len(defs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			field, err := sdk.AddField(gctx, def)
			res := ProvisionResult{Title: def.Title, Field: field, Err: err}
			results[i] = res
			if done != nil {
				mu.Lock()
				done(res)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
