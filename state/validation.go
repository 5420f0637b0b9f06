package state

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"time"
)

var schemePattern, _ = regexp.Compile("^[a-z][a-z0-9+.-]*$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	_, err := ParseName(s)
	if err != nil {
		return err
	}
	if len(s) > 8000 {
		return fmt.Errorf("len(\"%s\") = %d > 8000 is too long", s, len(s))
	}
	return nil
}

// FaceUriValidator checks that a face uri has the form scheme://host[:port] or scheme://path
func FaceUriValidator(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%s is not a valid face uri: %w", s, err)
	}
	if !schemePattern.MatchString(u.Scheme) {
		return fmt.Errorf("%s is not a valid face uri, missing scheme", s)
	}
	if u.Host == "" && u.Path == "" {
		return fmt.Errorf("%s is not a valid face uri, missing host", s)
	}
	return nil
}

func CostValidator(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return fmt.Errorf("link cost %g must be a finite non-negative number", c)
	}
	return nil
}

// CoordinateValidator checks hyperbolic coordinates, every angle except the last is in [0, pi], the last is in [0, 2pi]
func CoordinateValidator(radius float64, angles []float64) error {
	if math.IsNaN(radius) || radius <= 0 {
		return fmt.Errorf("hyperbolic radius %g must be positive", radius)
	}
	if len(angles) == 0 {
		return fmt.Errorf("hyperbolic coordinates need at least one angle")
	}
	for i, theta := range angles {
		upper := math.Pi
		if i == len(angles)-1 {
			upper = 2 * math.Pi
		}
		if math.IsNaN(theta) || theta < 0 || theta > upper {
			return fmt.Errorf("angle %d = %g is out of range [0, %g]", i, theta, upper)
		}
	}
	return nil
}

func NodeConfigValidator(cfg *LocalCfg) error {
	err := NameValidator(string(cfg.Router))
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}
	if cfg.MaxFacesPerPrefix < 0 || cfg.MaxFacesPerPrefix > MaxFacesPerPrefixLimit {
		return fmt.Errorf("max_faces_per_prefix = %d must be within [0, %d]", cfg.MaxFacesPerPrefix, MaxFacesPerPrefixLimit)
	}
	for name, d := range map[string]*time.Duration{
		"routing_calc_interval": cfg.RoutingCalcInterval,
		"lsa_refresh_interval":  cfg.LsaRefreshInterval,
		"lsa_lifetime":          cfg.LsaLifetime,
		"feed_interval":         cfg.FeedInterval,
	} {
		if d != nil && *d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if cfg.Hyperbolic != HyperbolicOff && cfg.Coordinates == nil {
		return fmt.Errorf("hyperbolic routing is %s but no coordinates are configured", cfg.Hyperbolic)
	}
	if cfg.Coordinates != nil {
		err = CoordinateValidator(cfg.Coordinates.Radius, cfg.Coordinates.Angles)
		if err != nil {
			return fmt.Errorf("coordinates: %w", err)
		}
	}
	for _, p := range cfg.Prefixes {
		err = NameValidator(string(p))
		if err != nil {
			return fmt.Errorf("prefix: %w", err)
		}
	}
	seen := make([]Name, 0, len(cfg.Neighbours))
	for _, n := range cfg.Neighbours {
		err = NameValidator(string(n.Name))
		if err != nil {
			return fmt.Errorf("neighbour: %w", err)
		}
		if n.Name == cfg.Router {
			return fmt.Errorf("router %s cannot be its own neighbour", n.Name)
		}
		if slices.Contains(seen, n.Name) {
			return fmt.Errorf("duplicate neighbour %s", n.Name)
		}
		seen = append(seen, n.Name)
		err = FaceUriValidator(n.FaceUri)
		if err != nil {
			return fmt.Errorf("neighbour %s: %w", n.Name, err)
		}
		err = CostValidator(n.Cost)
		if err != nil {
			return fmt.Errorf("neighbour %s: %w", n.Name, err)
		}
	}
	if cfg.LogPath != "" {
		err = PathValidator(cfg.LogPath)
		if err != nil {
			return fmt.Errorf("log_path: %w", err)
		}
	}
	if cfg.ControlSocket != "" {
		err = PathValidator(cfg.ControlSocket)
		if err != nil {
			return fmt.Errorf("control_socket: %w", err)
		}
	}
	return nil
}

// SnapshotValidator checks every LSA in a snapshot
func SnapshotValidator(snap *LsdbSnapshot) error {
	seen := make(map[LsaKey]struct{})
	for _, w := range snap.Lsas {
		if w.Lsa == nil {
			return fmt.Errorf("empty lsa entry")
		}
		key := w.Key()
		if err := NameValidator(string(key.Origin)); err != nil {
			return fmt.Errorf("lsa origin: %w", err)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate lsa %s", key)
		}
		seen[key] = struct{}{}
		switch l := w.Lsa.(type) {
		case *AdjLsa:
			for _, a := range l.Adjacencies {
				if err := NameValidator(string(a.Name)); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				if a.LinkCost != NonAdjacentCost {
					if err := CostValidator(a.LinkCost); err != nil {
						return fmt.Errorf("%s: %w", key, err)
					}
				}
			}
		case *CoordinateLsa:
			if err := CoordinateValidator(l.Radius, l.Angles); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		case *NameLsa:
			for _, p := range l.Prefixes {
				if err := NameValidator(string(p)); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
			}
		}
	}
	return nil
}
