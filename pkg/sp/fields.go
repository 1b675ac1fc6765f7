package sp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// FieldInfo is an SP.Field.
type FieldInfo struct {
	DefaultFormula       string     `json:"DefaultFormula"`
	DefaultValue         string     `json:"DefaultValue"`
	Description          string     `json:"Description"`
	Direction            string     `json:"Direction"`
	EnforceUniqueValues  bool       `json:"EnforceUniqueValues"`
	EntityPropertyName   string     `json:"EntityPropertyName"`
	FieldTypeKind        FieldTypes `json:"FieldTypeKind"`
	Filterable           bool       `json:"Filterable"`
	FromBaseType         bool       `json:"FromBaseType"`
	Group                string     `json:"Group"`
	Hidden               bool       `json:"Hidden"`
	ID                   string     `json:"Id"`
	Indexed              bool       `json:"Indexed"`
	IndexStatus          int        `json:"IndexStatus"`
	InternalName         string     `json:"InternalName"`
	JSLink               string     `json:"JSLink"`
	PinnedToFiltersPane  bool       `json:"PinnedToFiltersPane"`
	ReadOnlyField        bool       `json:"ReadOnlyField"`
	Required             bool       `json:"Required"`
	SchemaXML            string     `json:"SchemaXml"`
	Scope                string     `json:"Scope"`
	Sealed               bool       `json:"Sealed"`
	ShowInFiltersPane    int        `json:"ShowInFiltersPane"`
	Sortable             bool       `json:"Sortable"`
	StaticName           string     `json:"StaticName"`
	Title                string     `json:"Title"`
	TypeAsString         string     `json:"TypeAsString"`
	TypeDisplayName      string     `json:"TypeDisplayName"`
	TypeShortDescription string     `json:"TypeShortDescription"`
	ValidationFormula    string     `json:"ValidationFormula"`
	ValidationMessage    string     `json:"ValidationMessage"`
}

// XMLSchemaFieldCreationInformation is the argument of CreateFieldAsXML.
type XMLSchemaFieldCreationInformation struct {
	Options   AddFieldOptions `json:"Options,omitempty"`
	SchemaXML string          `json:"SchemaXml"`
}

// Fields is a collection of site or list columns.
type Fields struct {
	odata.Collection[*Fields]
}

var _ odata.GetByIDCapable[string, *Field] = (*Fields)(nil)

// NewFields composes a fields collection; path defaults to "fields".
func NewFields(init odata.Init, path string) *Fields {
	return wrapFields(odata.Compose(init, pathOrDefault(path, "fields")))
}

func wrapFields(q *odata.Queryable) *Fields {
	f := &Fields{}
	f.Collection = odata.NewCollection(q, f, wrapFields)
	return f
}

// GetByID addresses a field by its GUID.
func (f *Fields) GetByID(id string) *Field {
	return wrapField(odata.ComposeKey(f, "("+quote(id)+")"))
}

// GetByTitle addresses a field by display name.
func (f *Fields) GetByTitle(title string) *Field {
	return NewField(odata.From(f), "getByTitle("+quote(title)+")")
}

// GetByInternalNameOrTitle addresses a field by internal name, falling back
// to display name.
func (f *Fields) GetByInternalNameOrTitle(name string) *Field {
	return NewField(odata.From(f), "getByInternalNameOrTitle("+quote(name)+")")
}

// List fetches one page of fields.
func (f *Fields) List(ctx context.Context) ([]FieldInfo, error) {
	return odata.List[FieldInfo](ctx, f)
}

// Paged starts paging through the fields.
func (f *Fields) Paged(ctx context.Context) (*odata.Pager[FieldInfo], error) {
	return odata.Paged[FieldInfo](ctx, f)
}

// CreateFieldAsXML creates a field from a CAML schema.
func (f *Fields) CreateFieldAsXML(ctx context.Context, info XMLSchemaFieldCreationInformation) (odata.Result[FieldInfo, *Field], error) {
	params := odata.MergeProps(metadata("SP.XmlSchemaFieldCreationInformation"), odata.Props{"SchemaXml": info.SchemaXML})
	if info.Options != AddFieldDefaultValue {
		params["Options"] = int(info.Options)
	}
	target := NewFields(odata.From(f), "createfieldasxml")
	return f.created(ctx, target, "fields.createFieldAsXml", odata.Props{"parameters": params})
}

// Add creates a field of the given kind. props are merged over Title and
// FieldTypeKind, so they may override either.
func (f *Fields) Add(ctx context.Context, title string, kind FieldTypes, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	body := odata.MergeProps(odata.Props{"Title": title, "FieldTypeKind": int(kind)}, props)
	return f.created(ctx, f, "fields.add", body)
}

// AddText adds a single line of text field; MaxLength defaults to 255.
func (f *Fields) AddText(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeText, odata.MergeProps(odata.Props{"MaxLength": 255}, props))
}

// AddCalculated adds a calculated field; OutputType defaults to Text.
func (f *Fields) AddCalculated(ctx context.Context, title, formula string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	defaults := odata.Props{"Formula": formula, "OutputType": int(FieldTypeText)}
	return f.Add(ctx, title, FieldTypeCalculated, odata.MergeProps(defaults, props))
}

// AddDateTime adds a date field using the Gregorian calendar, date only.
func (f *Fields) AddDateTime(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	defaults := odata.Props{
		"DateTimeCalendarType":  int(CalendarGregorian),
		"DisplayFormat":         int(DateTimeFormatDateOnly),
		"FriendlyDisplayFormat": int(FriendlyFormatUnspecified),
	}
	return f.Add(ctx, title, FieldTypeDateTime, odata.MergeProps(defaults, props))
}

// AddNumber adds a number field.
func (f *Fields) AddNumber(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeNumber, props)
}

// AddCurrency adds a currency field; CurrencyLocaleId defaults to 1033 (en-US).
func (f *Fields) AddCurrency(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeCurrency, odata.MergeProps(odata.Props{"CurrencyLocaleId": 1033}, props))
}

// AddMultilineText adds a rich text note field with six visible lines.
func (f *Fields) AddMultilineText(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	defaults := odata.Props{
		"AllowHyperlink": true,
		"AppendOnly":     false,
		"NumberOfLines":  6,
		"RestrictedMode": false,
		"RichText":       true,
	}
	return f.Add(ctx, title, FieldTypeNote, odata.MergeProps(defaults, props))
}

// AddURL adds a hyperlink field.
func (f *Fields) AddURL(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeURL, odata.MergeProps(odata.Props{"DisplayFormat": int(URLFormatHyperlink)}, props))
}

// AddUser adds a person field accepting people and groups.
func (f *Fields) AddUser(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeUser, odata.MergeProps(odata.Props{"SelectionMode": int(UserSelectionPeopleAndGroups)}, props))
}

// AddLookup adds a lookup field showing lookupFieldName from the list lookupListID.
func (f *Fields) AddLookup(ctx context.Context, title, lookupListID, lookupFieldName string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	defaults := odata.Props{"LookupListId": lookupListID, "LookupFieldName": lookupFieldName}
	return f.Add(ctx, title, FieldTypeLookup, odata.MergeProps(defaults, props))
}

// AddChoice adds a single-choice dropdown field.
func (f *Fields) AddChoice(ctx context.Context, title string, choices []string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeChoice, odata.MergeProps(choiceDefaults(choices), props))
}

// AddMultiChoice adds a multiple-choice field.
func (f *Fields) AddMultiChoice(ctx context.Context, title string, choices []string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeMultiChoice, odata.MergeProps(choiceDefaults(choices), props))
}

func choiceDefaults(choices []string) odata.Props {
	if choices == nil {
		choices = []string{}
	}
	return odata.Props{
		"Choices":      map[string]any{"results": choices},
		"EditFormat":   int(ChoiceFormatDropdown),
		"FillInChoice": false,
	}
}

// AddBoolean adds a yes/no field.
func (f *Fields) AddBoolean(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeBoolean, props)
}

// AddLocation adds a location field.
func (f *Fields) AddLocation(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeLocation, props)
}

// AddImage adds an image field.
func (f *Fields) AddImage(ctx context.Context, title string, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.Add(ctx, title, FieldTypeImage, props)
}

// AddDependentLookupField adds a secondary column projected through an
// existing lookup field.
func (f *Fields) AddDependentLookupField(ctx context.Context, displayName, primaryLookupFieldID, showField string) (odata.Result[FieldInfo, *Field], error) {
	path := fmt.Sprintf("adddependentlookupfield(displayName=%s, primarylookupfieldid=%s, showfield=%s)",
		quote(displayName), quote(primaryLookupFieldID), quote(showField))
	return f.created(ctx, NewFields(odata.From(f), path), "fields.addDependentLookupField", nil)
}

// created posts body to target and addresses the new field by its Id.
func (f *Fields) created(ctx context.Context, target odata.Resource, op string, body any) (odata.Result[FieldInfo, *Field], error) {
	var res odata.Result[FieldInfo, *Field]
	raw, err := post(ctx, target, op, body)
	if err != nil {
		return res, err
	}
	id, err := odata.StringField(f, raw, "Id")
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[FieldInfo](f, raw)
	if err != nil {
		return res, err
	}
	res.Entity = f.GetByID(id)
	return res, nil
}

// Field is a single column.
type Field struct {
	odata.Instance[*Field]
}

var _ odata.Deletable = (*Field)(nil)

var _ odata.Updatable[FieldInfo, *Field] = (*Field)(nil)

// NewField composes a field handle.
func NewField(init odata.Init, path string) *Field {
	return wrapField(odata.Compose(init, path))
}

func wrapField(q *odata.Queryable) *Field {
	f := &Field{}
	f.Instance = odata.NewInstance(q, f, wrapField)
	return f
}

// Get fetches the field.
func (f *Field) Get(ctx context.Context) (FieldInfo, error) {
	return odata.Get[FieldInfo](ctx, f)
}

// Update merges props into the field. SharePoint needs the field's concrete
// type (SP.FieldText, SP.FieldChoice...) in the body, so it is read first.
func (f *Field) Update(ctx context.Context, props odata.Props) (odata.Result[FieldInfo, *Field], error) {
	return f.UpdateAs(ctx, props, "")
}

// UpdateAs merges props into the field declared as fieldType, for example
// "SP.FieldText". An empty fieldType is looked up with an extra request.
func (f *Field) UpdateAs(ctx context.Context, props odata.Props, fieldType string) (odata.Result[FieldInfo, *Field], error) {
	res := odata.Result[FieldInfo, *Field]{Entity: f}
	if fieldType == "" {
		t, err := f.entityType(ctx)
		if err != nil {
			return res, err
		}
		fieldType = t
	}
	raw, err := postMerge(ctx, f, "field.update", odata.MergeProps(metadata(fieldType), props))
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[FieldInfo](f, raw)
	return res, err
}

// entityType reads the field's odata.type, or __metadata.type in verbose responses.
func (f *Field) entityType(ctx context.Context) (string, error) {
	probe := f.CloneAs().Select("FieldTypeKind")
	raw, err := probe.Fetch(ctx)
	if err != nil {
		return "", err
	}
	if t, err := odata.StringField(probe, raw, "odata.type"); err == nil {
		return t, nil
	}
	var verbose struct {
		Metadata struct {
			Type string `json:"type"`
		} `json:"__metadata"`
	}
	if err := json.Unmarshal(probe.Entity(raw), &verbose); err != nil || verbose.Metadata.Type == "" {
		return "", fmt.Errorf("%w: odata.type", odata.ErrMissingField)
	}
	return verbose.Metadata.Type, nil
}

// Delete removes the field.
func (f *Field) Delete(ctx context.Context) error {
	return postDelete(ctx, f, "field.delete")
}

// SetShowInDisplayForm shows or hides the field on the display form.
func (f *Field) SetShowInDisplayForm(ctx context.Context, show bool) error {
	return f.setShowIn(ctx, "setshowindisplayform", show)
}

// SetShowInEditForm shows or hides the field on the edit form.
func (f *Field) SetShowInEditForm(ctx context.Context, show bool) error {
	return f.setShowIn(ctx, "setshowineditform", show)
}

// SetShowInNewForm shows or hides the field on the new item form.
func (f *Field) SetShowInNewForm(ctx context.Context, show bool) error {
	return f.setShowIn(ctx, "setshowinnewform", show)
}

func (f *Field) setShowIn(ctx context.Context, action string, show bool) error {
	target := NewField(odata.From(f), action+"("+strconv.FormatBool(show)+")")
	_, err := post(ctx, target, "field."+action, nil)
	return err
}
