// Package facilities serves the static catalog of facilities around the
// holy sites and answers nearby queries against it.
package facilities

import (
	"sort"

	"github.com/rafiq-app/rafiq/internal/geo"
)

// Type classifies a facility.
type Type string

const (
	Entrance   Type = "entrance"
	Toilet     Type = "toilet"
	Wheelchair Type = "wheelchair"
	Zamzam     Type = "zamzam"
	Women      Type = "women"
	Restaurant Type = "restaurant"
	Hospital   Type = "hospital"
	Bus        Type = "bus"
)

// Facility is one catalog entry.
type Facility struct {
	ID         string
	Type       Type
	Name       string
	GateNumber string
	Coordinate geo.Coordinate
}

// WithDistance pairs a facility with its distance from a reference point.
type WithDistance struct {
	Facility
	DistanceMeters float64
}

// All returns the full catalog.
func All() []Facility {
	out := make([]Facility, len(catalog))
	copy(out, catalog)
	return out
}

// ByType returns catalog entries of the given type.
func ByType(t Type) []Facility {
	var out []Facility
	for _, f := range catalog {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}

// Nearest returns up to limit facilities sorted by distance from the given
// position. When the position is unknown (nil), the catalog order is kept
// and every distance is 0 — the degraded mode used when the location
// permission is denied.
func Nearest(from *geo.Coordinate, limit int) []WithDistance {
	out := make([]WithDistance, 0, len(catalog))
	for _, f := range catalog {
		wd := WithDistance{Facility: f}
		if from != nil {
			wd.DistanceMeters = geo.Distance(*from, f.Coordinate)
		}
		out = append(out, wd)
	}
	if from != nil {
		sort.Slice(out, func(i, j int) bool {
			return out[i].DistanceMeters < out[j].DistanceMeters
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
