package services

import (
	"math"
	"testing"
	"time"

	"placement-stats/models"
)

func TestFingerprintStableAndContentSensitive(t *testing.T) {
	a := samplePlacements()
	b := samplePlacements()
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("equal lists must share a fingerprint")
	}

	b[1].BranchCounts = []models.BranchCount{{Branch: "CSE", Count: 1}, {Branch: "ECE", Count: 2}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("changing a branch count must change the fingerprint")
	}

	if Fingerprint(a) == Fingerprint(a[:3]) {
		t.Error("dropping a record must change the fingerprint")
	}

	c := samplePlacements()
	c[2].CTC = math.Float64frombits(0x7ff8000000000001)
	if Fingerprint(a) != Fingerprint(c) {
		t.Error("NaN CTC values must hash alike")
	}
}

func TestReportCacheHitsAndRecomputes(t *testing.T) {
	cache := NewReportCache(time.Minute)
	clock := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	calls := 0
	compute := func(p []models.Placement) *models.StatsReport {
		calls++
		return &models.StatsReport{TotalPlacements: len(p)}
	}

	first := cache.GetOrCompute(samplePlacements(), compute)
	second := cache.GetOrCompute(samplePlacements(), compute)
	if calls != 1 {
		t.Errorf("compute calls: got %d, want 1", calls)
	}
	if first != second {
		t.Error("a hit should return the cached report")
	}

	changed := samplePlacements()[:2]
	if r := cache.GetOrCompute(changed, compute); r.TotalPlacements != 2 {
		t.Errorf("changed list: got %d placements, want 2", r.TotalPlacements)
	}
	if calls != 2 {
		t.Errorf("compute calls after change: got %d, want 2", calls)
	}

	clock = clock.Add(2 * time.Minute)
	cache.GetOrCompute(samplePlacements(), compute)
	if calls != 3 {
		t.Errorf("compute calls after expiry: got %d, want 3", calls)
	}

	hits, misses := cache.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("stats: got %d hits/%d misses, want 1/3", hits, misses)
	}
}

func TestReportCacheClear(t *testing.T) {
	cache := NewReportCache(time.Hour)
	calls := 0
	compute := func(p []models.Placement) *models.StatsReport {
		calls++
		return &models.StatsReport{}
	}

	cache.GetOrCompute(nil, compute)
	cache.Clear()
	cache.GetOrCompute(nil, compute)
	if calls != 2 {
		t.Errorf("compute calls: got %d, want 2", calls)
	}
}
