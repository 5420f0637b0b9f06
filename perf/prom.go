package perf

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nlsr"

var (
	RouteCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_calculations_total",
		Help:      "Number of routing table calculations, by algorithm.",
	}, []string{"algorithm"})
	FibOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fib_operations_total",
		Help:      "Number of FIB operations, by operation.",
	}, []string{"op"})
	MatrixCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matrix_corrections_total",
		Help:      "Number of asymmetric adjacency matrix entries that were reconciled.",
	})
	RoutingTableEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "routing_table_entries",
		Help:      "Number of destinations in the routing table.",
	})
	NamePrefixTableEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "npt_entries",
		Help:      "Number of name prefixes known to the name prefix table.",
	})
	LsdbEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "lsdb_entries",
		Help:      "Number of LSAs in the database, by type.",
	}, []string{"type"})
)

func init() {
	http.Handle("/metrics", promhttp.Handler())
}
