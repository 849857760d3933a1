// Package stats derives placement statistics from a list of validated placements.
//
// Every function here is pure: inputs are never mutated, nothing is cached and
// malformed records are left out of the aggregates they cannot support instead
// of failing the whole computation.
package stats

import (
	"math"
	"sort"

	"placement-stats/models"
)

// ValidCTC reports whether v can take part in CTC statistics.
func ValidCTC(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// CalculateCtcStats returns min, max, mean and median of values.
// An empty input yields all-zero stats; callers that need to tell "no data"
// apart from "all zero" must look at len(values).
func CalculateCtcStats(values []float64) models.CtcStats {
	if len(values) == 0 {
		return models.CtcStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// Summing in sorted order keeps the mean independent of input order.
	var total float64
	for _, v := range sorted {
		total += v
	}

	n := len(sorted)
	min, max := sorted[0], sorted[n-1]
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return models.CtcStats{
		Min:    min,
		Max:    max,
		Avg:    clamp(total/float64(n), min, max),
		Median: median,
	}
}

// CollectCTCs returns the valid CTC of every record, in record order.
func CollectCTCs(records []models.Placement) []float64 {
	values := make([]float64, 0, len(records))
	for _, p := range records {
		if ValidCTC(p.CTC) {
			values = append(values, p.CTC)
		}
	}
	return values
}

// BranchCtcStats summarises the offers that included branch.
//
// Each record counts once, whatever the number of students of that branch it
// selected: the result describes the offers available to the branch, not the
// package an average student of the branch received. A branch missing from
// the mapping yields zero stats.
func BranchCtcStats(branchCompany []models.BranchCompanyMapping, records []models.Placement, branch string) models.CtcStats {
	if !mappingHasBranch(branchCompany, branch) {
		return models.CtcStats{}
	}
	return CalculateCtcStats(branchOffers(records, branch))
}

// AllBranchCtcStats returns the per-offer CTC summary of every branch in the mapping, in mapping order.
func AllBranchCtcStats(branchCompany []models.BranchCompanyMapping, records []models.Placement) []models.BranchCtcStat {
	out := make([]models.BranchCtcStat, 0, len(branchCompany))
	for _, b := range branchCompany {
		offers := branchOffers(records, b.Branch)
		out = append(out, models.BranchCtcStat{
			Branch: b.Branch,
			Offers: len(offers),
			Stats:  CalculateCtcStats(offers),
		})
	}
	return out
}

func branchOffers(records []models.Placement, branch string) []float64 {
	var values []float64
	for _, p := range records {
		if !ValidCTC(p.CTC) || !recordHasBranch(p, branch) {
			continue
		}
		values = append(values, p.CTC)
	}
	return values
}

func recordHasBranch(p models.Placement, branch string) bool {
	for _, bc := range p.BranchCounts {
		if bc.Branch == branch {
			return true
		}
	}
	return false
}

func mappingHasBranch(branchCompany []models.BranchCompanyMapping, branch string) bool {
	for _, b := range branchCompany {
		if b.Branch == branch {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
