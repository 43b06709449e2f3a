// Package geo estimates the distance between two clinic locations.
// A single Haversine great-circle formula backs every caller; when only a
// postal code is known the location resolves to a coarse district centroid,
// so distances between coarse locations carry roughly district-level
// precision (about 1 km per district unit) rather than street-level accuracy.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
)

const earthRadiusKm = 6371.0

// Location is a resolved geographic point. Coarse marks locations derived
// from a postal code rather than true coordinates.
type Location struct {
	Lat    float64
	Lon    float64
	Coarse bool
}

// FromLatLon builds a precise location from true coordinates.
func FromLatLon(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

// CoarseFromPostal maps a postal code onto a deterministic district centroid.
// The first three digits select the district (latitude band), the remaining
// digits the sector offset within it. The mapping is stable across calls so
// ranking stays deterministic, but it is an estimate, not a geocode.
func CoarseFromPostal(code string) (Location, error) {
	var digits strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 3 {
		return Location{}, apperr.BadRequest("postal code %q has no resolvable district", code)
	}

	district, err := strconv.Atoi(d[:3])
	if err != nil {
		return Location{}, apperr.BadRequest("postal code %q: unparseable district", code)
	}
	sector := 0
	if len(d) > 3 {
		sector, _ = strconv.Atoi(d[3:])
	}

	return Location{
		Lat:    1.0 + float64(district)/100.0,
		Lon:    103.0 + float64(sector)/10000.0,
		Coarse: true,
	}, nil
}

// Distance returns the great-circle distance between a and b in kilometres.
// The result is always >= 0 and 0 for identical points.
func Distance(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
