package core

import (
	"fmt"
	"os"
	"time"

	"github.com/encodeous/nlsr/state"
	"github.com/goccy/go-yaml"
)

func ReadLsdbSnapshot(path string) (*state.LsdbSnapshot, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap state.LsdbSnapshot
	err = yaml.Unmarshal(file, &snap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lsdb snapshot %s: %w", path, err)
	}
	err = state.SnapshotValidator(&snap)
	if err != nil {
		return nil, fmt.Errorf("invalid lsdb snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// LsaFeed installs LSAs read from a snapshot file, re-reading it whenever it changes.
// LSAs that disappear from the file are removed from the database.
type LsaFeed struct {
	modTime time.Time
	keys    map[state.LsaKey]struct{}
}

func (f *LsaFeed) Init(s *state.State) error {
	f.keys = make(map[state.LsaKey]struct{})
	if s.LsdbSnapshot == "" {
		return nil
	}
	s.Log.Info("reading lsas from snapshot", "path", s.LsdbSnapshot)
	s.RepeatTask(f.poll, *s.FeedInterval)
	return nil
}

func (f *LsaFeed) Cleanup(s *state.State) error {
	return nil
}

func (f *LsaFeed) poll(s *state.State) error {
	info, err := os.Stat(s.LsdbSnapshot)
	if err != nil {
		s.Log.Warn("failed to stat lsdb snapshot", "error", err)
		return nil
	}
	if info.ModTime().Equal(f.modTime) {
		return nil
	}
	snap, err := ReadLsdbSnapshot(s.LsdbSnapshot)
	if err != nil {
		s.Log.Warn("failed to read lsdb snapshot", "error", err)
		return nil
	}
	f.modTime = info.ModTime()
	f.Apply(s, Get[*NlsrRouter](s).Lsdb, snap)
	return nil
}

// Apply installs every LSA of snap that is not originated by this router, and removes LSAs of a previous snapshot
// that are no longer present. Snapshot LSAs without an expiry never expire.
func (f *LsaFeed) Apply(s *state.State, lsdb *Lsdb, snap *state.LsdbSnapshot) int {
	if f.keys == nil {
		f.keys = make(map[state.LsaKey]struct{})
	}
	seen := make(map[state.LsaKey]struct{})
	installed := 0
	for _, w := range snap.Lsas {
		key := w.Key()
		if key.Origin == s.Router {
			continue
		}
		seen[key] = struct{}{}
		if lsdb.Install(w.Lsa) {
			installed++
		}
	}
	for key := range f.keys {
		if _, ok := seen[key]; !ok {
			lsdb.Remove(key)
		}
	}
	f.keys = seen
	s.Log.Debug("applied lsdb snapshot", "lsas", len(snap.Lsas), "installed", installed)
	return installed
}
