package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/dheniges/pnp-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsListLogic(t *testing.T) {
	mockSDK := &MockSDK{
		ListSiteGroupsFunc: func(ctx context.Context) ([]sp.SiteGroupInfo, error) {
			return []sp.SiteGroupInfo{
				{ID: 3, Title: "Dev Owners", OwnerTitle: "Dev Owners"},
				{ID: 5, Title: "Dev Visitors", OwnerTitle: "Dev Owners", Description: "Read only"},
			}, nil
		},
	}
	a := newTestApp(mockSDK)

	output := captureOutput(t, func() {
		err := groupsListLogic(context.Background(), a, tablePrinter(t))
		assert.NoError(t, err)
	})

	assert.Contains(t, output, "Dev Owners")
	assert.Contains(t, output, "Dev Visitors")
	assert.Contains(t, output, "Read only")
}

func TestGroupsListLogicEmpty(t *testing.T) {
	a := newTestApp(&MockSDK{})

	output := captureOutput(t, func() {
		err := groupsListLogic(context.Background(), a, tablePrinter(t))
		assert.NoError(t, err)
	})

	assert.Contains(t, output, "No site groups found.")
}

func TestGroupsListLogicError(t *testing.T) {
	mockSDK := &MockSDK{
		ListSiteGroupsFunc: func(ctx context.Context) ([]sp.SiteGroupInfo, error) {
			return nil, transport.ErrAccessDenied
		},
	}

	err := groupsListLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrAccessDenied)
	assert.Contains(t, err.Error(), "listing site groups")
}

func TestGroupsAddLogic(t *testing.T) {
	var gotTitle, gotDescription string
	mockSDK := &MockSDK{
		AddSiteGroupFunc: func(ctx context.Context, title, description string) (sp.SiteGroupInfo, error) {
			gotTitle, gotDescription = title, description
			return sp.SiteGroupInfo{ID: 12, Title: title, Description: description}, nil
		},
	}

	output := captureOutput(t, func() {
		err := groupsAddLogic(context.Background(), newTestApp(mockSDK), jsonPrinter(t, ".Id"), "Reviewers", "People who review")
		assert.NoError(t, err)
	})

	assert.Equal(t, "Reviewers", gotTitle)
	assert.Equal(t, "People who review", gotDescription)
	assert.Equal(t, "12\n", output)
}

func TestGroupsUpdateLogic(t *testing.T) {
	var gotID int
	var gotProps odata.Props
	mockSDK := &MockSDK{
		UpdateSiteGroupFunc: func(ctx context.Context, id int, props odata.Props) error {
			gotID, gotProps = id, props
			return nil
		},
	}
	a := newTestApp(mockSDK)

	output := captureOutput(t, func() {
		err := groupsUpdateLogic(context.Background(), a, 7, odata.Props{"Title": "Renamed"})
		assert.NoError(t, err)
	})

	assert.Equal(t, 7, gotID)
	assert.Equal(t, odata.Props{"Title": "Renamed"}, gotProps)
	assert.Contains(t, output, "Site group 7 updated.")

	err := groupsUpdateLogic(context.Background(), a, 7, odata.Props{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestGroupsRemoveLogic(t *testing.T) {
	testCases := []struct {
		name        string
		removeErr   error
		expectError bool
		expectOut   string
	}{
		{name: "removed", expectOut: "Site group 9 removed."},
		{name: "missing group", removeErr: transport.ErrResourceNotFound, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSDK := &MockSDK{
				RemoveSiteGroupFunc: func(ctx context.Context, id int) error {
					assert.Equal(t, 9, id)
					return tc.removeErr
				},
			}
			var err error
			output := captureOutput(t, func() {
				err = groupsRemoveLogic(context.Background(), newTestApp(mockSDK), 9)
			})
			if tc.expectError {
				assert.ErrorIs(t, err, tc.removeErr)
				assert.NotContains(t, output, "removed")
				return
			}
			assert.NoError(t, err)
			assert.Contains(t, output, tc.expectOut)
		})
	}
}

func TestGroupsUsersLogic(t *testing.T) {
	mockSDK := &MockSDK{
		ListSiteGroupUsersFunc: func(ctx context.Context, id int) ([]sp.SiteUserInfo, error) {
			assert.Equal(t, 4, id)
			return []sp.SiteUserInfo{{ID: 10, Title: "Ada", Email: "ada@contoso.com", IsSiteAdmin: true}}, nil
		},
	}

	output := captureOutput(t, func() {
		err := groupsUsersLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t), 4)
		assert.NoError(t, err)
	})

	assert.Contains(t, output, "ada@contoso.com")
	assert.Contains(t, output, "yes")
}

func TestGroupsSetOwnerLogic(t *testing.T) {
	mockSDK := &MockSDK{
		SetSiteGroupOwnerFunc: func(ctx context.Context, groupID, ownerID int) error {
			if ownerID == 0 {
				return errors.New("principal not found")
			}
			return nil
		},
	}
	a := newTestApp(mockSDK)

	output := captureOutput(t, func() {
		assert.NoError(t, groupsSetOwnerLogic(context.Background(), a, 4, 11))
	})
	assert.Contains(t, output, "Principal 11 now owns site group 4.")

	err := groupsSetOwnerLogic(context.Background(), a, 4, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting owner of site group 4")
}

func TestParseID(t *testing.T) {
	id, err := parseID("group id", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "abc", "-1", "4.2"} {
		_, err := parseID("group id", bad)
		assert.Error(t, err, bad)
	}
}
