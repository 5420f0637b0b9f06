package core

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
)

// NlsrRouter owns the LSA database and the tables derived from it
type NlsrRouter struct {
	Lsdb *Lsdb
	Rt   *RoutingTable
	Npt  *NamePrefixTable
	// Fib receives name prefix routes. If nil, a ForwardingTable that logs registrations is used.
	Fib Fib

	lastCalc  time.Time
	calcTimer *time.Timer
	// refresh re-originates each own LSA one refresh interval after it was last originated
	refresh map[state.LsaType]*time.Timer
	seq     map[state.LsaType]uint64
	now     func() time.Time
}

func (r *NlsrRouter) Init(s *state.State) error {
	s.Log.Debug("init nlsr router")
	state.ExpandLocalConfig(&s.LocalCfg)
	if r.now == nil {
		r.now = time.Now
	}
	if r.Fib == nil {
		r.Fib = NewForwardingTable(s.Log, LogRegistrar{Log: s.Log}, s.MaxFacesPerPrefix)
	}
	if s.Adjacencies == nil {
		s.Adjacencies = state.NewAdjacencyListFromConfig(&s.LocalCfg)
	}
	r.seq = make(map[state.LsaType]uint64)
	r.refresh = make(map[state.LsaType]*time.Timer)
	r.Lsdb = NewLsdb(s.Log)
	r.Rt = NewRoutingTable()
	r.Npt = NewNamePrefixTable(s.Log, r.Rt, r.Fib)
	r.Lsdb.OnChange(func(ev LsaEvent) {
		r.handleLsaEvent(s, ev)
	})

	r.originateNameLsa(s)
	r.originateAdjLsa(s)
	r.originateCoordinateLsa(s)

	s.RepeatTask(r.gc, state.GcDelay)
	return nil
}

func (r *NlsrRouter) stopTimers() {
	if r.calcTimer != nil {
		r.calcTimer.Stop()
	}
	for _, t := range r.refresh {
		t.Stop()
	}
	clear(r.refresh)
}

func (r *NlsrRouter) Cleanup(s *state.State) error {
	r.stopTimers()
	if f, ok := r.Fib.(*ForwardingTable); ok {
		f.Clear()
	}
	r.Lsdb.Close()
	return nil
}

func (r *NlsrRouter) gc(s *state.State) error {
	r.Lsdb.ProcessExpired()
	return nil
}

// scheduleRefresh arms the refresh timer of our LSA of type t. A timer that fires after the LSA was re-originated
// for another reason does nothing.
func (r *NlsrRouter) scheduleRefresh(s *state.State, t state.LsaType, originate func(*state.State)) {
	if old, ok := r.refresh[t]; ok {
		old.Stop()
	}
	seq := r.seq[t]
	r.refresh[t] = s.ScheduleTask(func(s *state.State) error {
		if r.seq[t] != seq {
			return nil
		}
		s.Log.Debug("refreshing own lsa", "type", t, "seq", seq)
		originate(s)
		return nil
	}, *s.LsaRefreshInterval)
}

func (r *NlsrRouter) header(s *state.State, t state.LsaType) state.LsaHeader {
	r.seq[t]++
	return state.LsaHeader{
		OriginRouter: s.Router,
		Seq:          r.seq[t],
		Expiry:       r.now().Add(*s.LsaLifetime),
	}
}

func (r *NlsrRouter) originateNameLsa(s *state.State) {
	r.Lsdb.Install(&state.NameLsa{
		LsaHeader: r.header(s, state.LsaName),
		Prefixes:  slices.Clone(s.Prefixes),
	})
	r.scheduleRefresh(s, state.LsaName, r.originateNameLsa)
}

func (r *NlsrRouter) originateAdjLsa(s *state.State) {
	r.Lsdb.Install(&state.AdjLsa{
		LsaHeader:   r.header(s, state.LsaAdjacency),
		Adjacencies: s.Adjacencies.Active(),
	})
	r.scheduleRefresh(s, state.LsaAdjacency, r.originateAdjLsa)
}

func (r *NlsrRouter) originateCoordinateLsa(s *state.State) {
	if s.Coordinates == nil {
		return
	}
	r.Lsdb.Install(&state.CoordinateLsa{
		LsaHeader: r.header(s, state.LsaCoordinate),
		Radius:    s.Coordinates.Radius,
		Angles:    slices.Clone(s.Coordinates.Angles),
	})
	r.scheduleRefresh(s, state.LsaCoordinate, r.originateCoordinateLsa)
}

// Advertise adds prefix to the prefixes this router advertises and re-originates its name LSA. It returns false if
// the prefix was already advertised.
func (r *NlsrRouter) Advertise(s *state.State, prefix state.Name) (bool, error) {
	if err := state.NameValidator(string(prefix)); err != nil {
		return false, err
	}
	if slices.Contains(s.Prefixes, prefix) {
		return false, nil
	}
	s.Prefixes = append(s.Prefixes, prefix)
	s.Log.Info("advertising prefix", "prefix", prefix)
	r.originateNameLsa(s)
	return true, nil
}

// Withdraw stops advertising prefix. It returns false if the prefix was not advertised.
func (r *NlsrRouter) Withdraw(s *state.State, prefix state.Name) (bool, error) {
	idx := slices.Index(s.Prefixes, prefix)
	if idx < 0 {
		return false, nil
	}
	s.Prefixes = slices.Delete(s.Prefixes, idx, idx+1)
	s.Log.Info("withdrawing prefix", "prefix", prefix)
	r.originateNameLsa(s)
	return true, nil
}

// SetNeighbourStatus is called by the hello protocol when a neighbour goes up or down
func (r *NlsrRouter) SetNeighbourStatus(s *state.State, neighbour state.Name, status state.Status) error {
	changed, err := s.Adjacencies.SetStatus(neighbour, status)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	s.Log.Info("neighbour status changed", "neighbour", neighbour, "status", status)
	r.originateAdjLsa(s)
	return nil
}

func (r *NlsrRouter) handleLsaEvent(s *state.State, ev LsaEvent) {
	if ev.Key.Origin != s.Router {
		r.syncOrigin(s, ev.Key.Origin)
	}
	if ev.Key.Type == state.LsaAdjacency || ev.Key.Type == state.LsaCoordinate {
		r.RequestCalculation(s)
	}
}

// syncOrigin makes the name prefix table match what the database says origin advertises: the prefixes of its
// name LSA, and its own router name while it has an adjacency or coordinate LSA
func (r *NlsrRouter) syncOrigin(s *state.State, origin state.Name) {
	desired := make([]state.Name, 0)
	if lsa, ok := r.Lsdb.FindNameLsa(origin); ok {
		for _, p := range lsa.Prefixes {
			if !slices.Contains(desired, p) {
				desired = append(desired, p)
			}
		}
	}
	_, hasAdj := r.Lsdb.FindAdjLsa(origin)
	_, hasCoord := r.Lsdb.FindCoordinateLsa(origin)
	if (hasAdj || hasCoord) && !slices.Contains(desired, origin) {
		desired = append(desired, origin)
	}

	current := make([]state.Name, 0)
	if p, ok := r.Npt.PoolEntry(origin); ok {
		for prefix := range p.prefixes {
			current = append(current, prefix)
		}
	}
	added, removed := state.PrefixDiff(current, desired)
	state.SortNames(added)
	state.SortNames(removed)
	for _, p := range added {
		r.Npt.AddEntry(p, origin)
	}
	for _, p := range removed {
		r.Npt.RemoveEntry(p, origin)
	}
}

func (r *NlsrRouter) calcInterval(s *state.State) time.Duration {
	if s.RoutingCalcInterval == nil {
		return state.RoutingCalcInterval
	}
	return *s.RoutingCalcInterval
}

// RequestCalculation asks for the routing table to be recalculated. Requests are coalesced so that at most one
// calculation runs per routing calculation interval.
func (r *NlsrRouter) RequestCalculation(s *state.State) {
	if r.Rt.Scheduled {
		return
	}
	delay := r.calcInterval(s)
	if !r.Rt.Calculating {
		delay = max(0, r.lastCalc.Add(delay).Sub(r.now()))
	}
	r.Rt.Scheduled = true
	s.Log.Debug("routing calculation scheduled", "delay", delay)
	r.calcTimer = s.ScheduleTask(r.calculate, delay)
}

func (r *NlsrRouter) calculate(s *state.State) error {
	if r.Rt.Calculating {
		r.Rt.Scheduled = false
		r.RequestCalculation(s)
		return nil
	}
	r.Rt.Scheduled = false
	r.Rt.Calculating = true
	start := time.Now()
	r.Calculate(s)
	elapsed := time.Since(start)
	r.Rt.Calculating = false
	r.lastCalc = r.now()
	perf.CalcLatency.Add(float64(elapsed.Microseconds()))
	perf.CalcsPerSecond.Add(1)
	return nil
}

// Calculate rebuilds the routing table from the database and pushes the result through the name prefix table
func (r *NlsrRouter) Calculate(s *state.State) {
	s.Log.Debug("calculating routing table", "hyperbolic", s.Hyperbolic)
	r.Rt.Clear()
	r.Rt.ClearDryRun()

	_, hasOwnAdj := r.Lsdb.FindAdjLsa(s.Router)
	switch {
	case s.Hyperbolic == state.HyperbolicOn:
		lsas := r.Lsdb.CoordinateLsas()
		calc := HyperbolicCalculator{Log: s.Log}
		calc.Calculate(NewNameMapFromCoordinateLsas(lsas), r.Rt, r.Lsdb, s.Router, s.Adjacencies)
	case hasOwnAdj:
		lsas := r.Lsdb.AdjLsas()
		calc := LinkStateCalculator{Log: s.Log, MaxFacesPerPrefix: s.MaxFacesPerPrefix}
		calc.Calculate(NewNameMapFromAdjLsas(lsas), r.Rt, lsas, s.Router, s.Adjacencies)
		if s.Hyperbolic == state.HyperbolicDryRun {
			coords := r.Lsdb.CoordinateLsas()
			dry := HyperbolicCalculator{Log: s.Log, DryRun: true}
			dry.Calculate(NewNameMapFromCoordinateLsas(coords), r.Rt, r.Lsdb, s.Router, s.Adjacencies)
		}
	default:
		s.Log.Info("no adjacency lsa for this router, no routes can be calculated")
	}

	r.Npt.UpdateWithNewRoute(r.Rt)
	perf.RoutingTableEntries.Set(float64(r.Rt.Len()))

	if s.Log.Enabled(context.Background(), slog.LevelDebug) {
		s.Log.Debug("routing table\n" + RenderRoutingTable(r.Rt.Entries()))
		if s.Hyperbolic == state.HyperbolicDryRun {
			s.Log.Debug("dry-run routing table\n" + RenderRoutingTable(r.Rt.DryRunEntries()))
		}
	}
}
