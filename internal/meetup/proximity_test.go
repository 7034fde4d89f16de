package meetup

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

// TestParseCoordinates verifies parse coordinates behavior.
func TestParseCoordinates(t *testing.T) {
	lat, lng, ok := ParseCoordinates("51.5, -0.09")
	if !ok {
		t.Fatal("ParseCoordinates rejected a valid pair")
	}
	if lat != 51.5 || lng != -0.09 {
		t.Fatalf("coordinates = %v,%v", lat, lng)
	}

	invalid := []string{
		"old|format",
		"51.5",
		"51.5,-0.09,12",
		"abc,def",
		"NaN,0",
		"",
	}
	for _, input := range invalid {
		if _, _, ok := ParseCoordinates(input); ok {
			t.Fatalf("ParseCoordinates(%q) = ok, want unmappable", input)
		}
	}
}

// TestHaversineKnownDistance verifies haversine known distance behavior.
func TestHaversineKnownDistance(t *testing.T) {
	// Viewer at (51.6, -0.1), meetup at (51.5, -0.09): roughly 11 km.
	d := HaversineKM(51.6, -0.1, 51.5, -0.09)
	if d < 10 || d > 13 {
		t.Fatalf("distance = %.2f km, want ~11 km", d)
	}
	if z := HaversineKM(51.5, -0.09, 51.5, -0.09); z != 0 {
		t.Fatalf("zero distance = %v", z)
	}
}

// TestRankByProximityOrdering verifies rank by proximity ordering behavior.
func TestRankByProximityOrdering(t *testing.T) {
	records := []Record{
		{ID: 1, LocationKind: KindInPerson, Location: "old|format", StartTime: 1000},
		{ID: 2, LocationKind: KindInPerson, Location: "51.5,-0.09", StartTime: 3000},
		{ID: 3, LocationKind: KindInPerson, Location: "48.85,2.35", StartTime: 2000},
	}
	ranked := RankByProximity(records, floatPtr(51.6), floatPtr(-0.1))
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d", len(ranked))
	}
	if ranked[0].ID != 2 {
		t.Fatalf("nearest = %d, want 2", ranked[0].ID)
	}
	if !ranked[0].Closest {
		t.Fatal("nearest record not flagged closest")
	}
	if ranked[0].DistanceKM == nil || math.IsInf(*ranked[0].DistanceKM, 1) {
		t.Fatal("nearest record has no finite distance")
	}
	if ranked[1].ID != 3 {
		t.Fatalf("second = %d, want 3", ranked[1].ID)
	}
	if ranked[2].ID != 1 {
		t.Fatalf("unmappable record not last: %d", ranked[2].ID)
	}
	if ranked[2].DistanceKM != nil {
		t.Fatal("unmappable record carries a finite distance")
	}
	if ranked[1].Closest || ranked[2].Closest {
		t.Fatal("closest flag applied beyond the nearest record")
	}
}

// TestRankByProximityChronologicalFallback verifies rank by proximity chronological fallback behavior.
func TestRankByProximityChronologicalFallback(t *testing.T) {
	records := []Record{
		{ID: 1, LocationKind: KindInPerson, Location: "51.5,-0.09", StartTime: 3000},
		{ID: 2, LocationKind: KindOnline, Location: "https://meet.example", StartTime: 1000},
		{ID: 3, LocationKind: KindInPerson, Location: "48.85,2.35", StartTime: 2000},
	}

	// No viewer coordinates: chronological order, no closest flag.
	ranked := RankByProximity(records, nil, nil)
	wantOrder := []int64{2, 3, 1}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Fatalf("order[%d] = %d, want %d", i, ranked[i].ID, want)
		}
		if ranked[i].Closest {
			t.Fatal("closest flag set without any finite distance")
		}
		if ranked[i].DistanceKM != nil {
			t.Fatal("distance set without viewer coordinates")
		}
	}

	// Viewer present but nothing mappable: same fallback.
	unmappable := []Record{
		{ID: 4, LocationKind: KindOnline, Location: "https://meet.example", StartTime: 2000},
		{ID: 5, LocationKind: KindInPerson, Location: "old|format", StartTime: 1000},
	}
	ranked = RankByProximity(unmappable, floatPtr(51.6), floatPtr(-0.1))
	if ranked[0].ID != 5 || ranked[1].ID != 4 {
		t.Fatalf("fallback order = %d,%d, want 5,4", ranked[0].ID, ranked[1].ID)
	}
	if ranked[0].Closest {
		t.Fatal("closest flag set with no finite distance")
	}
}

// TestRankByProximityStable verifies rank by proximity stable behavior.
func TestRankByProximityStable(t *testing.T) {
	// Two records at the same venue keep their input order.
	records := []Record{
		{ID: 1, LocationKind: KindInPerson, Location: "51.5,-0.09", StartTime: 1},
		{ID: 2, LocationKind: KindInPerson, Location: "51.5,-0.09", StartTime: 2},
	}
	ranked := RankByProximity(records, floatPtr(51.6), floatPtr(-0.1))
	if ranked[0].ID != 1 || ranked[1].ID != 2 {
		t.Fatalf("equal-distance order = %d,%d, want 1,2", ranked[0].ID, ranked[1].ID)
	}
}
