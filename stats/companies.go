package stats

import (
	"math"
	"time"

	"placement-stats/models"
)

type ctcBand struct {
	label    string
	min, max float64
}

// ctcBands are the fixed CTC ranges of the distribution chart, in LPA.
var ctcBands = []ctcBand{
	{"<5 LPA", 0, 5},
	{"5-10 LPA", 5, 10},
	{"10-15 LPA", 10, 15},
	{"15-20 LPA", 15, 20},
	{">20 LPA", 20, math.Inf(1)},
}

// CtcRangeDistribution counts students placed per CTC band.
// A record adds all of its selections to the band [min, max) holding its CTC;
// records without a valid CTC are skipped. All bands are always returned.
func CtcRangeDistribution(records []models.Placement) []models.CtcRangeCount {
	counts := make([]int, len(ctcBands))
	for _, p := range records {
		if !ValidCTC(p.CTC) {
			continue
		}
		for i, b := range ctcBands {
			if p.CTC >= b.min && p.CTC < b.max {
				counts[i] += RecordSelections(p)
				break
			}
		}
	}

	out := make([]models.CtcRangeCount, 0, len(ctcBands))
	for i, b := range ctcBands {
		rc := models.CtcRangeCount{Range: b.label, Min: b.min, Count: counts[i]}
		if !math.IsInf(b.max, 1) {
			max := b.max
			rc.Max = &max
		}
		out = append(out, rc)
	}
	return out
}

// CompanySummaries builds one table row per company of the mapping, in mapping order.
// The CTC shown is the first valid one among the company's records and the
// date is the earliest placement date, nil when none of them is dated.
func CompanySummaries(companyBranch []models.CompanyBranchMapping, records []models.Placement) []models.CompanySummary {
	type companyFacts struct {
		first  *time.Time
		ctc    float64
		hasCTC bool
	}
	facts := make(map[string]*companyFacts, len(companyBranch))
	for _, p := range records {
		f, ok := facts[p.Company]
		if !ok {
			f = &companyFacts{}
			facts[p.Company] = f
		}
		if p.HasDate() {
			d := p.PlacementDate.UTC()
			if f.first == nil || d.Before(*f.first) {
				f.first = &d
			}
		}
		if !f.hasCTC && ValidCTC(p.CTC) {
			f.ctc = p.CTC
			f.hasCTC = true
		}
	}

	out := make([]models.CompanySummary, 0, len(companyBranch))
	for _, c := range companyBranch {
		row := models.CompanySummary{
			Company:  c.Company,
			Branches: c.Branches,
		}
		for _, b := range c.Branches {
			row.TotalSelections += b.Count
		}
		if f, ok := facts[c.Company]; ok {
			row.FirstPlacementDate = f.first
			row.CTC = f.ctc
			row.HasCTC = f.hasCTC
		}
		out = append(out, row)
	}
	return out
}
