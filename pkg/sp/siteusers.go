package sp

import (
	"context"
	"fmt"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// SiteUserInfo is an SP.User.
type SiteUserInfo struct {
	ID            int    `json:"Id"`
	Email         string `json:"Email"`
	IsHiddenInUI  bool   `json:"IsHiddenInUI"`
	IsSiteAdmin   bool   `json:"IsSiteAdmin"`
	LoginName     string `json:"LoginName"`
	PrincipalType int    `json:"PrincipalType"`
	Title         string `json:"Title"`
	UserPrincipal string `json:"UserPrincipalName,omitempty"`
}

// SiteUsers is a collection of users: everyone known to a web, or the members
// of one group.
type SiteUsers struct {
	odata.Collection[*SiteUsers]
}

var _ odata.GetByIDCapable[int, *SiteUser] = (*SiteUsers)(nil)

// NewSiteUsers composes a site users collection; path defaults to "siteusers".
func NewSiteUsers(init odata.Init, path string) *SiteUsers {
	return wrapSiteUsers(odata.Compose(init, pathOrDefault(path, "siteusers")))
}

func wrapSiteUsers(q *odata.Queryable) *SiteUsers {
	u := &SiteUsers{}
	u.Collection = odata.NewCollection(q, u, wrapSiteUsers)
	return u
}

// GetByID addresses a user by numeric id.
func (u *SiteUsers) GetByID(id int) *SiteUser {
	return NewSiteUser(odata.From(u), fmt.Sprintf("getById(%d)", id))
}

// GetByEmail addresses a user by e-mail address.
func (u *SiteUsers) GetByEmail(email string) *SiteUser {
	return NewSiteUser(odata.From(u), "getByEmail("+quote(email)+")")
}

// GetByLoginName addresses a user by claims login name. The name goes through
// a parameter alias because claims contain characters that are not allowed in
// a path segment.
func (u *SiteUsers) GetByLoginName(loginName string) *SiteUser {
	q := odata.Compose(odata.From(u), "getByLoginName(@v)")
	q.SetAlias("@v", aliasValue(loginName))
	return wrapSiteUser(q)
}

// List fetches one page of users.
func (u *SiteUsers) List(ctx context.Context) ([]SiteUserInfo, error) {
	return odata.List[SiteUserInfo](ctx, u)
}

// Add ensures the user is a member of the collection and returns a handle
// addressed by login name.
func (u *SiteUsers) Add(ctx context.Context, loginName string) (*SiteUser, error) {
	body := odata.MergeProps(metadata("SP.User"), odata.Props{"LoginName": loginName})
	if _, err := post(ctx, u, "siteusers.add", body); err != nil {
		return nil, err
	}
	return u.GetByLoginName(loginName), nil
}

// RemoveByID removes the user with the given id from the collection.
func (u *SiteUsers) RemoveByID(ctx context.Context, id int) error {
	target := NewSiteUsers(odata.From(u), fmt.Sprintf("removeById(%d)", id))
	_, err := post(ctx, target, "siteusers.removeById", nil)
	return err
}

// RemoveByLoginName removes the user with the given login name.
func (u *SiteUsers) RemoveByLoginName(ctx context.Context, loginName string) error {
	q := odata.Compose(odata.From(u), "removeByLoginName(@v)")
	q.SetAlias("@v", aliasValue(loginName))
	_, err := post(ctx, wrapSiteUsers(q), "siteusers.removeByLoginName", nil)
	return err
}

// SiteUser is a single user.
type SiteUser struct {
	odata.Instance[*SiteUser]
}

var _ odata.Deletable = (*SiteUser)(nil)

var _ odata.Updatable[SiteUserInfo, *SiteUser] = (*SiteUser)(nil)

// NewSiteUser composes a site user handle.
func NewSiteUser(init odata.Init, path string) *SiteUser {
	return wrapSiteUser(odata.Compose(init, path))
}

func wrapSiteUser(q *odata.Queryable) *SiteUser {
	u := &SiteUser{}
	u.Instance = odata.NewInstance(q, u, wrapSiteUser)
	return u
}

// Get fetches the user.
func (u *SiteUser) Get(ctx context.Context) (SiteUserInfo, error) {
	return odata.Get[SiteUserInfo](ctx, u)
}

// Groups addresses the groups the user belongs to.
func (u *SiteUser) Groups() *SiteGroups {
	return NewSiteGroups(odata.From(u), "groups")
}

// Update merges props into the user and returns this same handle.
func (u *SiteUser) Update(ctx context.Context, props odata.Props) (odata.Result[SiteUserInfo, *SiteUser], error) {
	res := odata.Result[SiteUserInfo, *SiteUser]{Entity: u}
	raw, err := postMerge(ctx, u, "siteuser.update", odata.MergeProps(metadata("SP.User"), props))
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[SiteUserInfo](u, raw)
	return res, err
}

// Delete removes the user from the web.
func (u *SiteUser) Delete(ctx context.Context) error {
	return postDelete(ctx, u, "siteuser.delete")
}
