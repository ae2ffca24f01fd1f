package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/djenbridge/internal/adapter"
	"github.com/crimson-sun/djenbridge/internal/config"
	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/engine/taxonomy"
	"github.com/crimson-sun/djenbridge/internal/model"
)

func staticConfig() config.Config {
	cfg := config.Defaults()
	cfg.Connector.Provider = "static"
	return cfg
}

func TestBuild_StaticEndToEnd(t *testing.T) {
	a, err := Build(staticConfig())
	require.NoError(t, err)

	q := model.Query{LawyerName: "Pedro Brandão", DateStart: "2025-08-06", DateEnd: "2025-08-06", ClientKey: "t"}
	res, err := a.Adapter.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, adapter.SourceUpstream, res.Source)
	assert.False(t, res.Stale)
	require.Len(t, res.Records, 3)
	for _, r := range res.Records {
		assert.Equal(t, "TJMG", r.Court)
		assert.Equal(t, "PEDRO BRANDÃO", r.LawyerName)
		assert.NotEmpty(t, r.Actions)
	}

	again, err := a.Adapter.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, adapter.SourceCache, again.Source)
	assert.Equal(t, res.Records, again.Records)
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := staticConfig()
	cfg.Connector.Provider = "vercel"
	_, err := Build(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vercel")
}

func TestBuild_CustomRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "custom-1"
catch_all: OUTROS
types:
  - name: CITAR
    keywords: [despacho]
    deadline: 3 days
    actions: [AGENDAR_AUDIENCIA]
  - name: OUTROS
    deadline: not determined
    actions: [REVISAR_MANUALMENTE]
`), 0644))

	cfg := staticConfig()
	cfg.Engine.RulesPath = path
	a, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", a.Taxonomy.Version())
}

func TestBuild_MissingRules(t *testing.T) {
	cfg := staticConfig()
	cfg.Engine.RulesPath = filepath.Join(t.TempDir(), "absent.yaml")
	_, err := Build(cfg)
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	eng := NewEngine(taxonomy.Default(), compactor.Standard)
	rec, err := eng.Process(model.RawNotification{
		"numeroProcesso":       "12345678920248130001",
		"tribunal":             "tjmg",
		"dataDisponibilizacao": "2025-08-06",
		"texto":                "Fica intimado para tomar ciência do despacho",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TypeTomarCiencia, rec.Type)
	assert.Equal(t, "15 days", rec.Deadline)
}
