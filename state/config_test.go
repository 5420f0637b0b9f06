package state

import (
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNodeConfig = `
router: /ndn/site/router-a
max_faces_per_prefix: 2
hyperbolic: "dry-run"
routing_calc_interval: 5s
prefixes:
  - /ndn/site/a/data
coordinates:
  radius: 16.23
  angles: [2.97]
neighbours:
  - name: /ndn/site/router-b
    face_uri: "udp4://10.0.0.2:6363"
    cost: 10
  - name: /ndn/site/router-c
    face_uri: "tcp4://10.0.0.3:6363"
    cost: 25
`

func TestParseNodeConfig(t *testing.T) {
	var cfg LocalCfg
	require.NoError(t, yaml.Unmarshal([]byte(sampleNodeConfig), &cfg))
	ExpandLocalConfig(&cfg)
	require.NoError(t, NodeConfigValidator(&cfg))

	assert.Equal(t, MustName("/ndn/site/router-a"), cfg.Router)
	assert.Equal(t, 2, cfg.MaxFacesPerPrefix)
	assert.Equal(t, HyperbolicDryRun, cfg.Hyperbolic)
	assert.Equal(t, 5*time.Second, *cfg.RoutingCalcInterval)
	assert.Equal(t, LsaLifetime, *cfg.LsaLifetime)
	assert.True(t, *cfg.AssumeNeighboursUp)
	assert.Equal(t, []Name{MustName("/ndn/site/a/data")}, cfg.Prefixes)
	require.Len(t, cfg.Neighbours, 2)
	assert.Equal(t, 25.0, cfg.Neighbours[1].Cost)
	assert.Equal(t, []float64{2.97}, cfg.Coordinates.Angles)

	adj := NewAdjacencyListFromConfig(&cfg)
	assert.Equal(t, 2, adj.Len())
	assert.True(t, adj.IsActive(MustName("/ndn/site/router-b")))
	face, ok := adj.FaceUri(MustName("/ndn/site/router-c"))
	assert.True(t, ok)
	assert.Equal(t, "tcp4://10.0.0.3:6363", face)
}

func TestHyperbolicStateText(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out HyperbolicState
	}{
		{"off", HyperbolicOff},
		{"on", HyperbolicOn},
		{"dry-run", HyperbolicDryRun},
	} {
		var h HyperbolicState
		require.NoError(t, h.UnmarshalText([]byte(tc.in)))
		assert.Equal(t, tc.out, h)
		assert.Equal(t, tc.in, h.String())
	}
	var h HyperbolicState
	assert.Error(t, h.UnmarshalText([]byte("sideways")))
}

func TestConfigRoundTrip(t *testing.T) {
	var cfg LocalCfg
	require.NoError(t, yaml.Unmarshal([]byte(sampleNodeConfig), &cfg))
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var again LocalCfg
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, cfg, again)
}
