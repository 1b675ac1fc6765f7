package cmd

import (
	"context"
	"testing"

	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphMeLogic(t *testing.T) {
	mockSDK := &MockSDK{
		MeFunc: func(ctx context.Context) (graph.UserInfo, error) {
			return graph.UserInfo{ID: "u1", DisplayName: "Ada Lovelace", Mail: "ada@contoso.com", JobTitle: "Engineer"}, nil
		},
	}

	output := captureOutput(t, func() {
		assert.NoError(t, graphMeLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t)))
	})

	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "ada@contoso.com")
	assert.Contains(t, output, "Engineer")
}

func TestGraphMeLogicError(t *testing.T) {
	mockSDK := &MockSDK{
		MeFunc: func(ctx context.Context) (graph.UserInfo, error) {
			return graph.UserInfo{}, transport.ErrReauthRequired
		},
	}

	err := graphMeLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrReauthRequired)
}

func TestUsersSearchLogic(t *testing.T) {
	var gotQuery string
	var gotTop int
	mockSDK := &MockSDK{
		SearchUsersFunc: func(ctx context.Context, query string, top int) ([]graph.UserInfo, error) {
			gotQuery, gotTop = query, top
			return []graph.UserInfo{
				{ID: "u1", DisplayName: "Ada", Mail: "ada@contoso.com"},
				{ID: "u2", DisplayName: "Adam"},
			}, nil
		},
	}

	output := captureOutput(t, func() {
		err := usersSearchLogic(context.Background(), newTestApp(mockSDK), jsonPrinter(t, "map(.id)"), "Ada", 5)
		assert.NoError(t, err)
	})

	assert.Equal(t, "Ada", gotQuery)
	assert.Equal(t, 5, gotTop)
	assert.JSONEq(t, `["u1","u2"]`, output)
}

func TestUsersSearchLogicEmpty(t *testing.T) {
	output := captureOutput(t, func() {
		assert.NoError(t, usersSearchLogic(context.Background(), newTestApp(&MockSDK{}), tablePrinter(t), "nobody", 0))
	})

	assert.Contains(t, output, "No users found.")
}

func TestUsersCountLogic(t *testing.T) {
	mockSDK := &MockSDK{
		CountUsersFunc: func(ctx context.Context, filter string) (int64, error) {
			assert.Equal(t, "accountEnabled eq true", filter)
			return 42, nil
		},
	}

	output := captureOutput(t, func() {
		assert.NoError(t, usersCountLogic(context.Background(), newTestApp(mockSDK), jsonPrinter(t, ""), "accountEnabled eq true"))
	})

	assert.Equal(t, "42\n", output)
}

func TestCalendarsListLogic(t *testing.T) {
	mockSDK := &MockSDK{
		ListCalendarsFunc: func(ctx context.Context) ([]graph.CalendarInfo, error) {
			return []graph.CalendarInfo{
				{ID: "c1", Name: "Calendar", IsDefaultCalendar: true},
				{ID: "c2", Name: "Holidays"},
			}, nil
		},
	}

	output := captureOutput(t, func() {
		assert.NoError(t, calendarsListLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t)))
	})

	assert.Contains(t, output, "Calendar")
	assert.Contains(t, output, "Holidays")
}
