package sp

import (
	"context"
	"fmt"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// SiteGroupInfo is an SP.Group.
type SiteGroupInfo struct {
	AllowMembersEditMembership     bool   `json:"AllowMembersEditMembership"`
	AllowRequestToJoinLeave        bool   `json:"AllowRequestToJoinLeave"`
	AutoAcceptRequestToJoinLeave   bool   `json:"AutoAcceptRequestToJoinLeave"`
	Description                    string `json:"Description"`
	ID                             int    `json:"Id"`
	IsHiddenInUI                   bool   `json:"IsHiddenInUI"`
	LoginName                      string `json:"LoginName"`
	OnlyAllowMembersViewMembership bool   `json:"OnlyAllowMembersViewMembership"`
	OwnerTitle                     string `json:"OwnerTitle"`
	PrincipalType                  int    `json:"PrincipalType"`
	RequestToJoinLeaveEmailSetting string `json:"RequestToJoinLeaveEmailSetting"`
	Title                          string `json:"Title"`
}

// SiteGroups is the collection of groups defined on a web.
type SiteGroups struct {
	odata.Collection[*SiteGroups]
}

var _ odata.GetByIDCapable[int, *SiteGroup] = (*SiteGroups)(nil)

// NewSiteGroups composes a site groups collection; path defaults to "sitegroups".
func NewSiteGroups(init odata.Init, path string) *SiteGroups {
	return wrapSiteGroups(odata.Compose(init, pathOrDefault(path, "sitegroups")))
}

func wrapSiteGroups(q *odata.Queryable) *SiteGroups {
	g := &SiteGroups{}
	g.Collection = odata.NewCollection(q, g, wrapSiteGroups)
	return g
}

// GetByID addresses a group by its numeric id.
func (g *SiteGroups) GetByID(id int) *SiteGroup {
	return wrapSiteGroup(odata.ComposeKey(g, fmt.Sprintf("(%d)", id)))
}

// GetByName addresses a group by its title.
func (g *SiteGroups) GetByName(name string) *SiteGroup {
	return NewSiteGroup(odata.From(g), "getByName("+quote(name)+")")
}

// List fetches one page of groups.
func (g *SiteGroups) List(ctx context.Context) ([]SiteGroupInfo, error) {
	return odata.List[SiteGroupInfo](ctx, g)
}

// Paged starts paging through the groups.
func (g *SiteGroups) Paged(ctx context.Context) (*odata.Pager[SiteGroupInfo], error) {
	return odata.Paged[SiteGroupInfo](ctx, g)
}

// Add creates a group from props (at least Title) and returns it with a handle
// addressed by the new id.
func (g *SiteGroups) Add(ctx context.Context, props odata.Props) (odata.Result[SiteGroupInfo, *SiteGroup], error) {
	var res odata.Result[SiteGroupInfo, *SiteGroup]
	raw, err := post(ctx, g, "sitegroups.add", odata.MergeProps(metadata("SP.Group"), props))
	if err != nil {
		return res, err
	}
	id, err := intField(g, raw, "Id")
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[SiteGroupInfo](g, raw)
	if err != nil {
		return res, err
	}
	res.Entity = g.GetByID(id)
	return res, nil
}

// RemoveByID deletes the group with the given id.
func (g *SiteGroups) RemoveByID(ctx context.Context, id int) error {
	target := NewSiteGroups(odata.From(g), fmt.Sprintf("removeById('%d')", id))
	_, err := post(ctx, target, "sitegroups.removeById", nil)
	return err
}

// RemoveByLoginName deletes the group with the given login name.
func (g *SiteGroups) RemoveByLoginName(ctx context.Context, loginName string) error {
	target := NewSiteGroups(odata.From(g), "removeByLoginName("+quote(loginName)+")")
	_, err := post(ctx, target, "sitegroups.removeByLoginName", nil)
	return err
}

// SiteGroup is a single group.
type SiteGroup struct {
	odata.Instance[*SiteGroup]
}

var _ odata.Updatable[SiteGroupInfo, *SiteGroup] = (*SiteGroup)(nil)

// NewSiteGroup composes a site group handle.
func NewSiteGroup(init odata.Init, path string) *SiteGroup {
	return wrapSiteGroup(odata.Compose(init, path))
}

func wrapSiteGroup(q *odata.Queryable) *SiteGroup {
	g := &SiteGroup{}
	g.Instance = odata.NewInstance(q, g, wrapSiteGroup)
	return g
}

// Get fetches the group.
func (g *SiteGroup) Get(ctx context.Context) (SiteGroupInfo, error) {
	return odata.Get[SiteGroupInfo](ctx, g)
}

// Users addresses the group's members.
func (g *SiteGroup) Users() *SiteUsers {
	return NewSiteUsers(odata.From(g), "users")
}

// Update merges props into the group and returns this same handle. The
// SP.Group type is supplied unless props carries its own __metadata.
func (g *SiteGroup) Update(ctx context.Context, props odata.Props) (odata.Result[SiteGroupInfo, *SiteGroup], error) {
	res := odata.Result[SiteGroupInfo, *SiteGroup]{Entity: g}
	raw, err := postMerge(ctx, g, "sitegroup.update", odata.MergeProps(metadata("SP.Group"), props))
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[SiteGroupInfo](g, raw)
	return res, err
}

// SetUserAsOwner makes the user with the given id the owner of the group.
func (g *SiteGroup) SetUserAsOwner(ctx context.Context, userID int) error {
	target := NewSiteGroup(odata.From(g), fmt.Sprintf("SetUserAsOwner(%d)", userID))
	_, err := post(ctx, target, "sitegroup.setUserAsOwner", nil)
	return err
}
