package static

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/djenbridge/internal/connector"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestFixtures(t *testing.T) {
	all, err := Fixtures()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestQuery_Filters(t *testing.T) {
	tests := []struct {
		name   string
		params connector.QueryParams
		want   int
	}{
		{"name without accents", connector.QueryParams{LawyerName: "pedro brandao", Start: day("2025-08-06"), End: day("2025-08-06")}, 3},
		{"name with accents", connector.QueryParams{LawyerName: "PEDRO BRANDÃO", Start: day("2025-08-01"), End: day("2025-08-31")}, 3},
		{"oab", connector.QueryParams{LawyerName: "Pedro", OAB: "123456", Start: day("2025-08-06"), End: day("2025-08-06")}, 3},
		{"court mismatch", connector.QueryParams{LawyerName: "Pedro", Court: "TJSP", Start: day("2025-08-06"), End: day("2025-08-06")}, 0},
		{"other lawyer", connector.QueryParams{LawyerName: "ALFREDO RAMOS", Start: day("2025-08-06"), End: day("2025-08-06")}, 1},
		{"out of range", connector.QueryParams{LawyerName: "Pedro", Start: day("2025-08-07"), End: day("2025-08-08")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := (&Connector{}).Query(context.Background(), connector.ConnectorConfig{}, tt.params)
			require.NoError(t, err)
			assert.Len(t, res, tt.want)
		})
	}
}

func TestQuery_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Connector{}).Query(ctx, connector.ConnectorConfig{}, connector.QueryParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, connector.Providers(), "static")
}
