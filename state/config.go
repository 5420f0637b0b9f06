package state

import (
	"fmt"
	"time"
)

type HyperbolicState int

const (
	HyperbolicOff HyperbolicState = iota
	HyperbolicOn
	HyperbolicDryRun
)

func (h HyperbolicState) String() string {
	switch h {
	case HyperbolicOn:
		return "on"
	case HyperbolicDryRun:
		return "dry-run"
	default:
		return "off"
	}
}

func (h HyperbolicState) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HyperbolicState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "off", "disabled", "false", "":
		*h = HyperbolicOff
	case "on", "enabled", "true":
		*h = HyperbolicOn
	case "dry-run", "dryrun":
		*h = HyperbolicDryRun
	default:
		return fmt.Errorf("unknown hyperbolic state %q, expected off, on or dry-run", string(text))
	}
	return nil
}

type CoordinateCfg struct {
	Radius float64   `yaml:"radius"`
	Angles []float64 `yaml:"angles"`
}

// NeighbourCfg is a statically configured adjacency
type NeighbourCfg struct {
	Name    Name    `yaml:"name"`
	FaceUri string  `yaml:"face_uri"`
	Cost    float64 `yaml:"cost"`
}

// LocalCfg represents local router configuration
type LocalCfg struct {
	Router              Name            `yaml:"router"`                          // name of this router
	MaxFacesPerPrefix   int             `yaml:"max_faces_per_prefix"`            // 1 = single path, 0 = every face, n = at most n faces per prefix
	Hyperbolic          HyperbolicState `yaml:"hyperbolic"`                      // off, on or dry-run
	RoutingCalcInterval *time.Duration  `yaml:"routing_calc_interval,omitempty"` // minimum time between two routing calculations
	LsaRefreshInterval  *time.Duration  `yaml:"lsa_refresh_interval,omitempty"`  // how often our own LSAs are re-originated
	LsaLifetime         *time.Duration  `yaml:"lsa_lifetime,omitempty"`          // lifetime of our own LSAs
	AssumeNeighboursUp  *bool           `yaml:"assume_neighbours_up,omitempty"`  // treat configured neighbours as active until told otherwise
	LogPath             string          `yaml:"log_path,omitempty"`              // if not empty, logs are also written to this file
	LsdbSnapshot        string          `yaml:"lsdb_snapshot,omitempty"`         // if not empty, LSAs are read from this file
	FeedInterval        *time.Duration  `yaml:"feed_interval,omitempty"`         // how often the snapshot is checked for changes
	ControlSocket       string          `yaml:"control_socket,omitempty"`        // if not empty, nlsr inspect can query this router over this unix socket
	Prefixes            []Name          `yaml:"prefixes,omitempty"`              // prefixes advertised by this router
	Coordinates         *CoordinateCfg  `yaml:"coordinates,omitempty"`           // hyperbolic coordinates of this router
	Neighbours          []NeighbourCfg  `yaml:"neighbours,omitempty"`            // direct adjacencies
}

// ExpandLocalConfig fills in defaults for unset optional fields
func ExpandLocalConfig(cfg *LocalCfg) {
	if cfg.RoutingCalcInterval == nil {
		d := RoutingCalcInterval
		cfg.RoutingCalcInterval = &d
	}
	if cfg.LsaRefreshInterval == nil {
		d := LsaRefreshInterval
		cfg.LsaRefreshInterval = &d
	}
	if cfg.LsaLifetime == nil {
		d := LsaLifetime
		cfg.LsaLifetime = &d
	}
	if cfg.FeedInterval == nil {
		d := FeedInterval
		cfg.FeedInterval = &d
	}
	if cfg.AssumeNeighboursUp == nil {
		b := true
		cfg.AssumeNeighboursUp = &b
	}
}

// NewAdjacencyListFromConfig builds the initial adjacency list of this router
func NewAdjacencyListFromConfig(cfg *LocalCfg) *AdjacencyList {
	status := StatusUnknown
	if cfg.AssumeNeighboursUp == nil || *cfg.AssumeNeighboursUp {
		status = StatusActive
	}
	l := NewAdjacencyList()
	for _, n := range cfg.Neighbours {
		l.Insert(Adjacent{
			Name:     n.Name,
			FaceUri:  n.FaceUri,
			LinkCost: n.Cost,
			Status:   status,
		})
	}
	return l
}
