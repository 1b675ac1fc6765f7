package sp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// RegionalSettingsInfo is SP.RegionalSettings.
type RegionalSettingsInfo struct {
	AdjustHijriDays       int    `json:"AdjustHijriDays"`
	AlternateCalendarType int    `json:"AlternateCalendarType"`
	AM                    string `json:"AM"`
	CalendarType          int    `json:"CalendarType"`
	Collation             int    `json:"Collation"`
	CollationLCID         int    `json:"CollationLCID"`
	DateFormat            int    `json:"DateFormat"`
	DateSeparator         string `json:"DateSeparator"`
	DecimalSeparator      string `json:"DecimalSeparator"`
	DigitGrouping         string `json:"DigitGrouping"`
	FirstDayOfWeek        int    `json:"FirstDayOfWeek"`
	FirstWeekOfYear       int    `json:"FirstWeekOfYear"`
	IsEastAsia            bool   `json:"IsEastAsia"`
	IsRightToLeft         bool   `json:"IsRightToLeft"`
	IsUIRightToLeft       bool   `json:"IsUIRightToLeft"`
	ListSeparator         string `json:"ListSeparator"`
	LocaleID              int    `json:"LocaleId"`
	NegativeSign          string `json:"NegativeSign"`
	NegNumberMode         int    `json:"NegNumberMode"`
	PM                    string `json:"PM"`
	PositiveSign          string `json:"PositiveSign"`
	ShowWeeks             bool   `json:"ShowWeeks"`
	ThousandSeparator     string `json:"ThousandSeparator"`
	Time24                bool   `json:"Time24"`
	TimeMarkerPosition    int    `json:"TimeMarkerPosition"`
	TimeSeparator         string `json:"TimeSeparator"`
	WorkDayEndHour        int    `json:"WorkDayEndHour"`
	WorkDays              int    `json:"WorkDays"`
	WorkDayStartHour      int    `json:"WorkDayStartHour"`
}

// InstalledLanguageInfo is one language pack installed on the farm.
type InstalledLanguageInfo struct {
	DisplayName string `json:"DisplayName"`
	LanguageTag string `json:"LanguageTag"`
	LCID        int    `json:"Lcid"`
}

// TimeZoneInfo is SP.TimeZone.
type TimeZoneInfo struct {
	Description string              `json:"Description"`
	ID          int                 `json:"Id"`
	Information TimeZoneInformation `json:"Information"`
}

// TimeZoneInformation holds a zone's offsets from UTC, in minutes.
type TimeZoneInformation struct {
	Bias         int `json:"Bias"`
	DaylightBias int `json:"DaylightBias"`
	StandardBias int `json:"StandardBias"`
}

// isoLayout matches the millisecond ISO 8601 form SharePoint echoes back.
const isoLayout = "2006-01-02T15:04:05.000Z"

// RegionalSettings holds a web's locale, calendar and time zone.
type RegionalSettings struct {
	odata.Instance[*RegionalSettings]
}

// NewRegionalSettings composes a regional settings handle; path defaults to
// "regionalsettings".
func NewRegionalSettings(init odata.Init, path string) *RegionalSettings {
	return wrapRegionalSettings(odata.Compose(init, pathOrDefault(path, "regionalsettings")))
}

func wrapRegionalSettings(q *odata.Queryable) *RegionalSettings {
	r := &RegionalSettings{}
	r.Instance = odata.NewInstance(q, r, wrapRegionalSettings)
	return r
}

// Get fetches the settings.
func (r *RegionalSettings) Get(ctx context.Context) (RegionalSettingsInfo, error) {
	return odata.Get[RegionalSettingsInfo](ctx, r)
}

// InstalledLanguages addresses the installed language collection.
//
// Deprecated: use GetInstalledLanguages.
func (r *RegionalSettings) InstalledLanguages() *InstalledLanguages {
	r.Logger().Warn("Deprecated: RegionalSettings.InstalledLanguages is deprecated, please use RegionalSettings.GetInstalledLanguages")
	return NewInstalledLanguages(odata.From(r), "")
}

// GetInstalledLanguages returns the languages installed on the farm.
func (r *RegionalSettings) GetInstalledLanguages(ctx context.Context) ([]InstalledLanguageInfo, error) {
	return NewInstalledLanguages(odata.From(r), "").Get(ctx)
}

// TimeZone addresses the web's time zone.
func (r *RegionalSettings) TimeZone() *TimeZone {
	return NewTimeZone(odata.From(r), "")
}

// TimeZones addresses every time zone the farm knows about.
func (r *RegionalSettings) TimeZones() *TimeZones {
	return NewTimeZones(odata.From(r), "")
}

// InstalledLanguages is the installedlanguages resource, an object wrapping
// an Items array.
type InstalledLanguages struct {
	odata.Collection[*InstalledLanguages]
}

// NewInstalledLanguages composes the resource; path defaults to "installedlanguages".
func NewInstalledLanguages(init odata.Init, path string) *InstalledLanguages {
	return wrapInstalledLanguages(odata.Compose(init, pathOrDefault(path, "installedlanguages")))
}

func wrapInstalledLanguages(q *odata.Queryable) *InstalledLanguages {
	l := &InstalledLanguages{}
	l.Collection = odata.NewCollection(q, l, wrapInstalledLanguages)
	return l
}

// Get fetches the languages.
func (l *InstalledLanguages) Get(ctx context.Context) ([]InstalledLanguageInfo, error) {
	type items struct {
		Items json.RawMessage `json:"Items"`
	}
	res, err := odata.Get[items](ctx, l)
	if err != nil {
		return nil, err
	}
	return decodeNested[InstalledLanguageInfo](res.Items)
}

// TimeZone is a single time zone.
type TimeZone struct {
	odata.Instance[*TimeZone]
}

// NewTimeZone composes a time zone handle; path defaults to "timezone".
func NewTimeZone(init odata.Init, path string) *TimeZone {
	return wrapTimeZone(odata.Compose(init, pathOrDefault(path, "timezone")))
}

func wrapTimeZone(q *odata.Queryable) *TimeZone {
	z := &TimeZone{}
	z.Instance = odata.NewInstance(q, z, wrapTimeZone)
	return z
}

// Get fetches the zone.
func (z *TimeZone) Get(ctx context.Context) (TimeZoneInfo, error) {
	return odata.Get[TimeZoneInfo](ctx, z)
}

// UTCToLocalTime converts t to the zone's local time. The result is the ISO
// string SharePoint returns, without an offset.
func (z *TimeZone) UTCToLocalTime(ctx context.Context, t time.Time) (string, error) {
	return z.UTCToLocalTimeISO(ctx, t.UTC().Format(isoLayout))
}

// UTCToLocalTimeISO is UTCToLocalTime for a preformatted timestamp, which is
// sent verbatim.
func (z *TimeZone) UTCToLocalTimeISO(ctx context.Context, iso string) (string, error) {
	return z.convert(ctx, "utctolocaltime", iso, "UTCToLocalTime")
}

// LocalTimeToUTC converts a wall-clock time in the zone to UTC. Only the
// clock reading of t is used; its location is ignored.
func (z *TimeZone) LocalTimeToUTC(ctx context.Context, t time.Time) (string, error) {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return z.LocalTimeToUTCISO(ctx, wall.Format(isoLayout))
}

// LocalTimeToUTCISO is LocalTimeToUTC for a preformatted timestamp, which is
// sent verbatim.
func (z *TimeZone) LocalTimeToUTCISO(ctx context.Context, iso string) (string, error) {
	return z.convert(ctx, "localtimetoutc", iso, "LocalTimeToUTC")
}

func (z *TimeZone) convert(ctx context.Context, action, iso, field string) (string, error) {
	target := NewTimeZone(odata.From(z), action+"("+quote(iso)+")")
	raw, err := post(ctx, target, "timezone."+action, nil)
	if err != nil {
		return "", err
	}
	return odata.ProbeScalar[string](target, raw, field)
}

// TimeZones is the collection of all time zones.
type TimeZones struct {
	odata.Collection[*TimeZones]
}

// NewTimeZones composes the collection; path defaults to "timezones".
func NewTimeZones(init odata.Init, path string) *TimeZones {
	return wrapTimeZones(odata.Compose(init, pathOrDefault(path, "timezones")))
}

func wrapTimeZones(q *odata.Queryable) *TimeZones {
	z := &TimeZones{}
	z.Collection = odata.NewCollection(q, z, wrapTimeZones)
	return z
}

// List fetches one page of zones.
func (z *TimeZones) List(ctx context.Context) ([]TimeZoneInfo, error) {
	return odata.List[TimeZoneInfo](ctx, z)
}

// GetByID fetches the zone with the given id. SharePoint exposes this lookup
// as a POST service operation.
func (z *TimeZones) GetByID(ctx context.Context, id int) (TimeZoneInfo, error) {
	target := NewTimeZones(odata.From(z), fmt.Sprintf("GetById(%d)", id))
	raw, err := post(ctx, target, "timezones.getById", nil)
	if err != nil {
		return TimeZoneInfo{}, err
	}
	return odata.Decode[TimeZoneInfo](target, raw)
}
