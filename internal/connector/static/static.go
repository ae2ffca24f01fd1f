// Package static serves an embedded set of DJEN-shaped records. It backs
// offline demos and the "static" provider; it never touches the network.
package static

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crimson-sun/djenbridge/internal/connector"
	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
	"github.com/crimson-sun/djenbridge/internal/model"
)

//go:embed fixtures.json
var fixturesJSON []byte

func init() {
	connector.Register("static", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector over the embedded fixtures.
type Connector struct{}

// Fixtures returns a fresh copy of the embedded records.
func Fixtures() ([]model.RawNotification, error) {
	var out []model.RawNotification
	if err := json.Unmarshal(fixturesJSON, &out); err != nil {
		return nil, fmt.Errorf("static connector: parse fixtures: %w", err)
	}
	return out, nil
}

func (c *Connector) Query(ctx context.Context, _ connector.ConnectorConfig, params connector.QueryParams) ([]model.RawNotification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := Fixtures()
	if err != nil {
		return nil, err
	}

	var out []model.RawNotification
	for _, raw := range all {
		if matches(raw, params) {
			out = append(out, raw)
		}
	}
	return out, nil
}

// matches applies the same filters comunicaapi does: date range, name
// substring, OAB substring and court.
func matches(raw model.RawNotification, p connector.QueryParams) bool {
	date := field(raw, "dataDisponibilizacao")
	if !p.Start.IsZero() && date < p.Start.Format(model.DateLayout) {
		return false
	}
	if !p.End.IsZero() && date > p.End.Format(model.DateLayout) {
		return false
	}
	if p.LawyerName != "" && !strings.Contains(textnorm.Fold(field(raw, "nomeAdvogado")), textnorm.Fold(p.LawyerName)) {
		return false
	}
	if p.OAB != "" && !strings.Contains(strings.ToUpper(field(raw, "numeroOab")), strings.ToUpper(p.OAB)) {
		return false
	}
	if p.Court != "" && !strings.EqualFold(field(raw, "tribunal"), p.Court) {
		return false
	}
	return true
}

func field(raw model.RawNotification, key string) string {
	s, _ := raw[key].(string)
	return s
}
