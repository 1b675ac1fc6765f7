package sp

import (
	"context"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// WebInfo is the subset of SP.Web properties the client reads.
type WebInfo struct {
	ID                string `json:"Id"`
	Title             string `json:"Title"`
	Description       string `json:"Description,omitempty"`
	URL               string `json:"Url"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
	Language          int    `json:"Language"`
	Created           string `json:"Created,omitempty"`
	WebTemplate       string `json:"WebTemplate,omitempty"`
}

// Web is a SharePoint web.
type Web struct {
	odata.Instance[*Web]
}

// NewWeb composes a web handle; path defaults to "web".
func NewWeb(init odata.Init, path string) *Web {
	return wrapWeb(odata.Compose(init, pathOrDefault(path, "web")))
}

func wrapWeb(q *odata.Queryable) *Web {
	w := &Web{}
	w.Instance = odata.NewInstance(q, w, wrapWeb)
	return w
}

// Get fetches the web's properties.
func (w *Web) Get(ctx context.Context) (WebInfo, error) {
	return odata.Get[WebInfo](ctx, w)
}

// SiteGroups addresses the web's site groups.
func (w *Web) SiteGroups() *SiteGroups {
	return NewSiteGroups(odata.From(w), "")
}

// SiteUsers addresses the web's site users.
func (w *Web) SiteUsers() *SiteUsers {
	return NewSiteUsers(odata.From(w), "")
}

// Fields addresses the web's site columns.
func (w *Web) Fields() *Fields {
	return NewFields(odata.From(w), "")
}

// RegionalSettings addresses the web's locale and time zone settings.
func (w *Web) RegionalSettings() *RegionalSettings {
	return NewRegionalSettings(odata.From(w), "")
}
