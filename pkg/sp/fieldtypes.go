package sp

import "strconv"

// FieldTypes is SP.FieldType, the FieldTypeKind of a field.
type FieldTypes int

const (
	FieldTypeInvalid FieldTypes = iota
	FieldTypeInteger
	FieldTypeText
	FieldTypeNote
	FieldTypeDateTime
	FieldTypeCounter
	FieldTypeChoice
	FieldTypeLookup
	FieldTypeBoolean
	FieldTypeNumber
	FieldTypeCurrency
	FieldTypeURL
	FieldTypeComputed
	FieldTypeThreading
	FieldTypeGUID
	FieldTypeMultiChoice
	FieldTypeGridChoice
	FieldTypeCalculated
	FieldTypeFile
	FieldTypeAttachments
	FieldTypeUser
	FieldTypeRecurrence
	FieldTypeCrossProjectLink
	FieldTypeModStat
	FieldTypeError
	FieldTypeContentTypeID
	FieldTypePageSeparator
	FieldTypeThreadIndex
	FieldTypeWorkflowStatus
	FieldTypeAllDayEvent
	FieldTypeWorkflowEventType
)

// Kinds without an SP.FieldType name that the field creation endpoint accepts.
const (
	FieldTypeLocation FieldTypes = 33
	FieldTypeImage    FieldTypes = 34
)

var fieldTypeNames = map[FieldTypes]string{
	FieldTypeInvalid:           "Invalid",
	FieldTypeInteger:           "Integer",
	FieldTypeText:              "Text",
	FieldTypeNote:              "Note",
	FieldTypeDateTime:          "DateTime",
	FieldTypeCounter:           "Counter",
	FieldTypeChoice:            "Choice",
	FieldTypeLookup:            "Lookup",
	FieldTypeBoolean:           "Boolean",
	FieldTypeNumber:            "Number",
	FieldTypeCurrency:          "Currency",
	FieldTypeURL:               "URL",
	FieldTypeComputed:          "Computed",
	FieldTypeThreading:         "Threading",
	FieldTypeGUID:              "Guid",
	FieldTypeMultiChoice:       "MultiChoice",
	FieldTypeGridChoice:        "GridChoice",
	FieldTypeCalculated:        "Calculated",
	FieldTypeFile:              "File",
	FieldTypeAttachments:       "Attachments",
	FieldTypeUser:              "User",
	FieldTypeRecurrence:        "Recurrence",
	FieldTypeCrossProjectLink:  "CrossProjectLink",
	FieldTypeModStat:           "ModStat",
	FieldTypeError:             "Error",
	FieldTypeContentTypeID:     "ContentTypeId",
	FieldTypePageSeparator:     "PageSeparator",
	FieldTypeThreadIndex:       "ThreadIndex",
	FieldTypeWorkflowStatus:    "WorkflowStatus",
	FieldTypeAllDayEvent:       "AllDayEvent",
	FieldTypeWorkflowEventType: "WorkflowEventType",
	FieldTypeLocation:          "Location",
	FieldTypeImage:             "Image",
}

func (k FieldTypes) String() string {
	if s, ok := fieldTypeNames[k]; ok {
		return s
	}
	return "FieldTypes(" + strconv.Itoa(int(k)) + ")"
}

// ParseFieldType looks a kind up by name, case-sensitively.
func ParseFieldType(name string) (FieldTypes, bool) {
	for k, s := range fieldTypeNames {
		if s == name {
			return k, true
		}
	}
	return FieldTypeInvalid, false
}

// DateTimeFieldFormatType selects whether a DateTime field stores a time.
type DateTimeFieldFormatType int

const (
	DateTimeFormatDateOnly DateTimeFieldFormatType = 0
	DateTimeFormatDateTime DateTimeFieldFormatType = 1
)

// DateTimeFieldFriendlyFormatType controls relative date rendering.
type DateTimeFieldFriendlyFormatType int

const (
	FriendlyFormatUnspecified DateTimeFieldFriendlyFormatType = 0
	FriendlyFormatDisabled    DateTimeFieldFriendlyFormatType = 1
	FriendlyFormatRelative    DateTimeFieldFriendlyFormatType = 2
)

// AddFieldOptions are the flags accepted by CreateFieldAsXML.
type AddFieldOptions int

const (
	AddFieldDefaultValue         AddFieldOptions = 0
	AddFieldToDefaultContentType AddFieldOptions = 1
	AddFieldToNoContentType      AddFieldOptions = 2
	AddFieldToAllContentTypes    AddFieldOptions = 4
	AddFieldInternalNameHint     AddFieldOptions = 8
	AddFieldToDefaultView        AddFieldOptions = 16
	AddFieldCheckDisplayName     AddFieldOptions = 32
)

// CalendarType identifies a calendar system.
type CalendarType int

const (
	CalendarGregorian            CalendarType = 1
	CalendarJapan                CalendarType = 3
	CalendarTaiwan               CalendarType = 4
	CalendarKorea                CalendarType = 5
	CalendarHijri                CalendarType = 6
	CalendarThai                 CalendarType = 7
	CalendarHebrew               CalendarType = 8
	CalendarGregorianMEFrench    CalendarType = 9
	CalendarGregorianArabic      CalendarType = 10
	CalendarGregorianXLITEnglish CalendarType = 11
	CalendarGregorianXLITFrench  CalendarType = 12
	CalendarKoreaJapanLunar      CalendarType = 14
	CalendarChineseLunar         CalendarType = 15
	CalendarSakaEra              CalendarType = 16
	CalendarUmAlQura             CalendarType = 23
)

// URLFieldFormatType renders a URL field as a link or an image.
type URLFieldFormatType int

const (
	URLFormatHyperlink URLFieldFormatType = 0
	URLFormatImage     URLFieldFormatType = 1
)

// FieldUserSelectionMode limits a User field to people or people and groups.
type FieldUserSelectionMode int

const (
	UserSelectionPeopleOnly      FieldUserSelectionMode = 0
	UserSelectionPeopleAndGroups FieldUserSelectionMode = 1
)

// ChoiceFieldFormatType renders a Choice field as a dropdown or radio buttons.
type ChoiceFieldFormatType int

const (
	ChoiceFormatDropdown     ChoiceFieldFormatType = 0
	ChoiceFormatRadioButtons ChoiceFieldFormatType = 1
)
