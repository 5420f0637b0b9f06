package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency      = metric.NewHistogram("1m1s")
	CalcLatency          = metric.NewHistogram("10m10s")
	CalcsPerSecond       = metric.NewCounter("10m10s")
	FibUpdatesPerSecond  = metric.NewCounter("10s1s")
	LsaInstallsPerSecond = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("nlsr:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("nlsr:CalcLatency (µs)", CalcLatency)
	expvar.Publish("nlsr:Calcs/s", CalcsPerSecond)
	expvar.Publish("nlsr:FibUpdates/s", FibUpdatesPerSecond)
	expvar.Publish("nlsr:LsaInstalls/s", LsaInstallsPerSecond)
}
