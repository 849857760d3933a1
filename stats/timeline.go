package stats

import (
	"math"
	"sort"
	"time"

	"placement-stats/models"
)

const (
	maxDaySpan   = 31
	maxMonthSpan = 24

	dayLabelLayout   = "02 Jan 2006"
	monthLabelLayout = "January 2006"
	yearLabelLayout  = "2006"
)

// DetectGranularity picks the bucket width from the span of the dated records.
// The span is counted inclusively: up to 31 days gives day buckets, up to 24
// calendar months gives month buckets, anything longer gives year buckets.
// ok is false when no record carries a date.
func DetectGranularity(records []models.Placement) (g models.Granularity, ok bool) {
	var first, last time.Time
	for _, p := range records {
		if !p.HasDate() {
			continue
		}
		d := p.PlacementDate.UTC()
		if !ok || d.Before(first) {
			first = d
		}
		if !ok || d.After(last) {
			last = d
		}
		ok = true
	}
	if !ok {
		return "", false
	}

	days := int(math.Ceil(last.Sub(first).Hours()/24)) + 1
	months := (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1

	switch {
	case days <= maxDaySpan:
		return models.GranularityDay, true
	case months <= maxMonthSpan:
		return models.GranularityMonth, true
	default:
		return models.GranularityYear, true
	}
}

// GroupSelectionsByDynamicRange sums the selections of every dated record into
// time buckets whose width is chosen by DetectGranularity. Buckets come out in
// chronological order of their start. Undated records are skipped.
func GroupSelectionsByDynamicRange(records []models.Placement) []models.TimeBucket {
	g, ok := DetectGranularity(records)
	if !ok {
		return []models.TimeBucket{}
	}

	totals := make(map[time.Time]int)
	for _, p := range records {
		if !p.HasDate() {
			continue
		}
		totals[BucketStart(p.PlacementDate, g)] += RecordSelections(p)
	}

	buckets := make([]models.TimeBucket, 0, len(totals))
	for start, selections := range totals {
		buckets = append(buckets, models.TimeBucket{
			Label:      BucketLabel(start, g),
			Start:      start,
			Selections: selections,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

// GroupCtcByDynamicRange summarises the CTC of the offers made in each time bucket.
// The granularity is chosen from all dated records; only records with both a
// date and a valid CTC contribute values. Figures are rounded to 2 decimals.
func GroupCtcByDynamicRange(records []models.Placement) []models.CtcTrendPoint {
	g, ok := DetectGranularity(records)
	if !ok {
		return []models.CtcTrendPoint{}
	}

	bins := make(map[time.Time][]float64)
	for _, p := range records {
		if !p.HasDate() || !ValidCTC(p.CTC) {
			continue
		}
		start := BucketStart(p.PlacementDate, g)
		bins[start] = append(bins[start], p.CTC)
	}

	points := make([]models.CtcTrendPoint, 0, len(bins))
	for start, values := range bins {
		s := CalculateCtcStats(values)
		points = append(points, models.CtcTrendPoint{
			Label:  BucketLabel(start, g),
			Start:  start,
			Median: round2(s.Median),
			Avg:    round2(s.Avg),
			Max:    round2(s.Max),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Start.Before(points[j].Start)
	})
	return points
}

// BucketStart truncates t (in UTC) to the start of its bucket.
func BucketStart(t time.Time, g models.Granularity) time.Time {
	t = t.UTC()
	switch g {
	case models.GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case models.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// BucketLabel formats a bucket start: "10 Jan 2024", "January 2024" or "2024".
func BucketLabel(start time.Time, g models.Granularity) string {
	switch g {
	case models.GranularityDay:
		return start.Format(dayLabelLayout)
	case models.GranularityMonth:
		return start.Format(monthLabelLayout)
	default:
		return start.Format(yearLabelLayout)
	}
}
