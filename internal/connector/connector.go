package connector

import (
	"context"
	"time"

	"github.com/crimson-sun/djenbridge/internal/model"
)

// Connector defines the interface all notification sources must implement.
type Connector interface {
	// Query fetches every raw notification matching params, following
	// pagination up to the source's page ceiling.
	Query(ctx context.Context, cfg ConnectorConfig, params QueryParams) ([]model.RawNotification, error)
}

// ConnectorConfig holds provider-specific connection settings.
type ConnectorConfig struct {
	Provider    string
	APIKey      string
	Endpoint    string
	Timeout     time.Duration // per attempt
	MaxRetries  int
	BackoffBase time.Duration
	Extra       map[string]string
}

// QueryParams defines the filters of a notification query.
type QueryParams struct {
	LawyerName string
	OAB        string // number, optionally suffixed "/UF"
	Court      string
	Start      time.Time
	End        time.Time
}

// ParamsFromQuery converts a validated facade query.
func ParamsFromQuery(q model.Query) QueryParams {
	start, end := q.Range()
	return QueryParams{
		LawyerName: q.LawyerName,
		OAB:        q.OAB,
		Court:      q.Court,
		Start:      start,
		End:        end,
	}
}
