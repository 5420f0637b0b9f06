package state

import "time"

const (
	// NonAdjacentCost marks the absence of a link in the adjacency matrix
	NonAdjacentCost = -12345.0
	// HyperbolicCostAdjustmentFactor scales hyperbolic distances into integer forwarder costs
	HyperbolicCostAdjustmentFactor = 1000
	// MaxFacesPerPrefixLimit is the largest accepted max_faces_per_prefix
	MaxFacesPerPrefixLimit = 60
)

var (
	RoutingCalcInterval = time.Second * 15
	LsaRefreshInterval  = time.Minute * 30
	LsaLifetime         = time.Hour
	FeedInterval        = time.Second * 5
	GcDelay             = time.Millisecond * 1000

	// dispatches slower than this are reported
	SlowDispatchThreshold = time.Millisecond * 4
)
