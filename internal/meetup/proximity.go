package meetup

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371

// Ranked is a record annotated with its great-circle distance from the
// viewer. DistanceKM is nil when the record is unmappable or the viewer
// location is unknown.
type Ranked struct {
	Record
	DistanceKM *float64 `json:"distanceKm,omitempty"`
	Closest    bool     `json:"closest,omitempty"`
}

// ParseCoordinates parses an InPerson location of the form "<lat>,<lng>".
// Anything else, including the legacy pipe-delimited format, marks the
// record unmappable rather than failing the collection.
func ParseCoordinates(location string) (lat, lng float64, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	return lat, lng, true
}

// HaversineKM computes the great-circle distance between two coordinate
// pairs in kilometers.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RankByProximity orders records by ascending distance from the viewer.
// Unmappable records sort after every mappable one. When the viewer
// location is unknown, or no record has a finite distance, the whole set
// falls back to ascending chronological order. The nearest record is
// flagged Closest only when at least one finite distance exists.
func RankByProximity(records []Record, viewerLat, viewerLng *float64) []Ranked {
	ranked := make([]Ranked, len(records))
	distances := make([]float64, len(records))
	anyFinite := false
	for i, rec := range records {
		ranked[i] = Ranked{Record: rec}
		distances[i] = math.Inf(1)
		if viewerLat == nil || viewerLng == nil || rec.LocationKind != KindInPerson {
			continue
		}
		lat, lng, ok := ParseCoordinates(rec.Location)
		if !ok {
			continue
		}
		d := HaversineKM(*viewerLat, *viewerLng, lat, lng)
		distances[i] = d
		dist := d
		ranked[i].DistanceKM = &dist
		anyFinite = true
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	if anyFinite {
		sort.SliceStable(order, func(a, b int) bool {
			return distances[order[a]] < distances[order[b]]
		})
	} else {
		sort.SliceStable(order, func(a, b int) bool {
			return ranked[order[a]].StartTime < ranked[order[b]].StartTime
		})
	}

	out := make([]Ranked, 0, len(ranked))
	for _, idx := range order {
		out = append(out, ranked[idx])
	}
	if anyFinite && len(out) > 0 && out[0].DistanceKM != nil {
		out[0].Closest = true
	}
	return out
}
