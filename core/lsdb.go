package core

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/encodeous/nlsr/perf"
	"github.com/encodeous/nlsr/state"
	"github.com/jellydator/ttlcache/v3"
)

type LsaEventKind int

const (
	LsaInstalled LsaEventKind = iota
	LsaUpdated
	LsaRemoved
	LsaExpired
)

func (k LsaEventKind) String() string {
	switch k {
	case LsaInstalled:
		return "installed"
	case LsaUpdated:
		return "updated"
	case LsaRemoved:
		return "removed"
	default:
		return "expired"
	}
}

type LsaEvent struct {
	Key  state.LsaKey
	Kind LsaEventKind
}

// LsaSource is the read-only view of the LSA database used by the route calculation
type LsaSource interface {
	CoordinateSource
	AdjLsas() []*state.AdjLsa
	CoordinateLsas() []*state.CoordinateLsa
	NameLsas() []*state.NameLsa
	FindAdjLsa(origin state.Name) (*state.AdjLsa, bool)
}

// Lsdb stores the newest LSA of each (origin, type), dropping LSAs once they expire.
// Lsdb must only be used from the dispatch goroutine.
type Lsdb struct {
	log      *slog.Logger
	cache    *ttlcache.Cache[state.LsaKey, state.Lsa]
	handlers []func(LsaEvent)
	// expiry of every stored LSA that expires, used to report expirations without waiting for eviction callbacks
	expiry map[state.LsaKey]time.Time
	now    func() time.Time
}

func NewLsdb(log *slog.Logger) *Lsdb {
	return &Lsdb{
		log: log,
		cache: ttlcache.New[state.LsaKey, state.Lsa](
			ttlcache.WithDisableTouchOnHit[state.LsaKey, state.Lsa](),
		),
		expiry: make(map[state.LsaKey]time.Time),
		now:    time.Now,
	}
}

// OnChange registers a handler that is called for every change to the database
func (l *Lsdb) OnChange(fn func(LsaEvent)) {
	l.handlers = append(l.handlers, fn)
}

func (l *Lsdb) emit(ev LsaEvent) {
	perf.LsdbEntries.WithLabelValues(ev.Key.Type.String()).Set(float64(l.count(ev.Key.Type)))
	for _, h := range l.handlers {
		h(ev)
	}
}

func (l *Lsdb) count(t state.LsaType) int {
	n := 0
	for k := range l.cache.Items() {
		if k.Type == t {
			n++
		}
	}
	return n
}

// Install stores lsa if it is newer than the stored LSA with the same key. Returns true if it was stored.
func (l *Lsdb) Install(lsa state.Lsa) bool {
	key := lsa.Key()
	ttl := ttlcache.NoTTL
	exp := lsa.ExpiresAt()
	if !exp.IsZero() {
		ttl = exp.Sub(l.now())
		if ttl <= 0 {
			l.log.Debug("ignoring expired lsa", "key", key, "seq", lsa.SeqNo())
			return false
		}
	}

	kind := LsaInstalled
	if item := l.cache.Get(key); item != nil {
		if item.Value().SeqNo() >= lsa.SeqNo() {
			l.log.Debug("ignoring stale lsa", "key", key, "seq", lsa.SeqNo(), "have", item.Value().SeqNo())
			return false
		}
		kind = LsaUpdated
	}
	l.cache.Set(key, lsa, ttl)
	if exp.IsZero() {
		delete(l.expiry, key)
	} else {
		l.expiry[key] = exp
	}
	perf.LsaInstallsPerSecond.Add(1)
	l.log.Debug("lsa "+kind.String(), "key", key, "seq", lsa.SeqNo())
	l.emit(LsaEvent{Key: key, Kind: kind})
	return true
}

func (l *Lsdb) Remove(key state.LsaKey) bool {
	if !l.cache.Has(key) {
		return false
	}
	l.cache.Delete(key)
	delete(l.expiry, key)
	l.log.Debug("lsa removed", "key", key)
	l.emit(LsaEvent{Key: key, Kind: LsaRemoved})
	return true
}

// ProcessExpired drops expired LSAs and notifies handlers about every LSA that expired since the last call
func (l *Lsdb) ProcessExpired() int {
	now := l.now()
	expired := make([]state.LsaKey, 0)
	for key, exp := range l.expiry {
		if !exp.After(now) {
			expired = append(expired, key)
			delete(l.expiry, key)
		}
	}
	slices.SortFunc(expired, func(a, b state.LsaKey) int {
		return int(a.Type) - int(b.Type)
	})
	state.SortByName(expired, func(k state.LsaKey) state.Name {
		return k.Origin
	})
	l.cache.DeleteExpired()
	for _, key := range expired {
		l.log.Debug("lsa expired", "key", key)
		l.emit(LsaEvent{Key: key, Kind: LsaExpired})
	}
	return len(expired)
}

func (l *Lsdb) Find(key state.LsaKey) (state.Lsa, bool) {
	item := l.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func find[T state.Lsa](l *Lsdb, key state.LsaKey) (T, bool) {
	var zero T
	lsa, ok := l.Find(key)
	if !ok {
		return zero, false
	}
	v, ok := lsa.(T)
	return v, ok
}

func (l *Lsdb) FindAdjLsa(origin state.Name) (*state.AdjLsa, bool) {
	return find[*state.AdjLsa](l, state.LsaKey{Origin: origin, Type: state.LsaAdjacency})
}

func (l *Lsdb) FindCoordinateLsa(origin state.Name) (*state.CoordinateLsa, bool) {
	return find[*state.CoordinateLsa](l, state.LsaKey{Origin: origin, Type: state.LsaCoordinate})
}

func (l *Lsdb) FindNameLsa(origin state.Name) (*state.NameLsa, bool) {
	return find[*state.NameLsa](l, state.LsaKey{Origin: origin, Type: state.LsaName})
}

func all[T state.Lsa](l *Lsdb, t state.LsaType) []T {
	keys := make([]state.LsaKey, 0)
	items := l.cache.Items()
	for k := range items {
		if k.Type == t {
			keys = append(keys, k)
		}
	}
	state.SortByName(keys, func(k state.LsaKey) state.Name {
		return k.Origin
	})
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if v, ok := items[k].Value().(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// AdjLsas returns every adjacency LSA, ordered by origin
func (l *Lsdb) AdjLsas() []*state.AdjLsa {
	return all[*state.AdjLsa](l, state.LsaAdjacency)
}

func (l *Lsdb) CoordinateLsas() []*state.CoordinateLsa {
	return all[*state.CoordinateLsa](l, state.LsaCoordinate)
}

func (l *Lsdb) NameLsas() []*state.NameLsa {
	return all[*state.NameLsa](l, state.LsaName)
}

// All returns every stored LSA, ordered by origin and then type
func (l *Lsdb) All() []state.Lsa {
	items := l.cache.Items()
	keys := slices.Collect(maps.Keys(items))
	slices.SortFunc(keys, func(a, b state.LsaKey) int {
		return int(a.Type) - int(b.Type)
	})
	state.SortByName(keys, func(k state.LsaKey) state.Name {
		return k.Origin
	})
	out := make([]state.Lsa, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k].Value())
	}
	return out
}

func (l *Lsdb) Len() int {
	return l.cache.Len()
}

func (l *Lsdb) Close() {
	clear(l.expiry)
	l.cache.DeleteAll()
}
