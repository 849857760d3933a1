package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"placement-stats/models"
	"placement-stats/stats"
	"placement-stats/utils"
)

type InsightService struct {
	logger *utils.Logger
	now    func() time.Time
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, now: time.Now}
}

// Generate derives every aggregate of the report from one placement list.
func (s *InsightService) Generate(placements []models.Placement) *models.StatsReport {
	ctcs := stats.CollectCTCs(placements)
	companyBranch := stats.BuildCompanyBranchMapping(placements)
	branchCompany := stats.BuildBranchCompanyMapping(placements)
	granularity, _ := stats.DetectGranularity(placements)

	report := &models.StatsReport{
		TotalPlacements: len(placements),
		TotalOffers:     len(ctcs),
		TotalSelections: stats.TotalSelections(placements),
		Ctc:             stats.CalculateCtcStats(ctcs),
		Granularity:     granularity,
		Timeline:        stats.GroupSelectionsByDynamicRange(placements),
		CtcTrend:        stats.GroupCtcByDynamicRange(placements),
		CtcRanges:       stats.CtcRangeDistribution(placements),
		CompanyBranch:   companyBranch,
		BranchCompany:   branchCompany,
		BranchShares:    stats.BranchShares(branchCompany),
		BranchCtc:       stats.AllBranchCtcStats(branchCompany, placements),
		Companies:       stats.CompanySummaries(companyBranch, placements),
		GeneratedAt:     s.now().UTC(),
	}

	s.logger.Debug("[insights] %d placements → %d companies, %d branches, %d time buckets (%s)",
		report.TotalPlacements, len(companyBranch), len(branchCompany), len(report.Timeline), granularity)
	return report
}

// Reconcile compares mappings computed by the upstream API with the local
// rollup and returns one line per disagreement.
func (s *InsightService) Reconcile(local, upstream []models.CompanyBranchMapping) []string {
	index := func(m []models.CompanyBranchMapping) map[string]map[string]int {
		out := make(map[string]map[string]int, len(m))
		for _, c := range m {
			branches := make(map[string]int, len(c.Branches))
			for _, b := range c.Branches {
				branches[b.Branch] += b.Count
			}
			out[c.Company] = branches
		}
		return out
	}
	l, u := index(local), index(upstream)

	var diffs []string
	for company, lb := range l {
		ub, ok := u[company]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%s: missing upstream", company))
			continue
		}
		for branch, n := range lb {
			if ub[branch] != n {
				diffs = append(diffs, fmt.Sprintf("%s/%s: local %d, upstream %d", company, branch, n, ub[branch]))
			}
		}
		for branch, n := range ub {
			if _, ok := lb[branch]; !ok {
				diffs = append(diffs, fmt.Sprintf("%s/%s: local 0, upstream %d", company, branch, n))
			}
		}
	}
	for company := range u {
		if _, ok := l[company]; !ok {
			diffs = append(diffs, fmt.Sprintf("%s: missing locally", company))
		}
	}
	sort.Strings(diffs)
	return diffs
}

func (s *InsightService) Print(w io.Writer, r *models.StatsReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🎓 PLACEMENT STATISTICS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Placement records      : \033[1m%d\033[0m\n", r.TotalPlacements)
	fmt.Fprintf(w, "  Offers with CTC        : \033[1m%d\033[0m\n", r.TotalOffers)
	fmt.Fprintf(w, "  Students placed        : \033[1m%d\033[0m\n", r.TotalSelections)
	fmt.Fprintf(w, "  Companies              : \033[1m%d\033[0m\n", len(r.CompanyBranch))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  CTC Statistics (LPA)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalOffers > 0 {
		fmt.Fprintf(w, "  Median CTC  : \033[1;32m%.2f LPA\033[0m\n", r.Ctc.Median)
		fmt.Fprintf(w, "  Average CTC : \033[1;32m%.2f LPA\033[0m\n", r.Ctc.Avg)
		fmt.Fprintf(w, "  Max CTC     : \033[1;32m%.2f LPA\033[0m\n", r.Ctc.Max)
		fmt.Fprintf(w, "  Min CTC     : \033[1;32m%.2f LPA\033[0m\n", r.Ctc.Min)
	} else {
		fmt.Fprintf(w, "  No CTC data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Selections by %s\033[0m\n", granularityTitle(r.Granularity))
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Timeline) == 0 {
		fmt.Fprintf(w, "  No dated placements\n")
	} else {
		for _, b := range r.Timeline {
			fmt.Fprintf(w, "  %-18s %s (%d)\n", b.Label, bar(b.Selections), b.Selections)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Students by CTC Range\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, rc := range r.CtcRanges {
		fmt.Fprintf(w, "  %-12s %s (%d)\n", rc.Range, bar(rc.Count), rc.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Branch-wise Offers\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.BranchCtc) == 0 {
		fmt.Fprintf(w, "  No branch data\n")
	} else {
		selections := make(map[string]int, len(r.BranchShares))
		for _, b := range r.BranchShares {
			selections[b.Branch] = b.Selections
		}
		for _, b := range r.BranchCtc {
			fmt.Fprintf(w, "  %-10s %4d placed | %3d offers | median %6.2f | avg %6.2f LPA\n",
				truncate(b.Branch, 10), selections[b.Branch], b.Offers, b.Stats.Median, b.Stats.Avg)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top Recruiters\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Companies) == 0 {
		fmt.Fprintf(w, "  No company data\n")
	} else {
		rows := make([]models.CompanySummary, len(r.Companies))
		copy(rows, r.Companies)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].TotalSelections > rows[j].TotalSelections
		})
		if len(rows) > 10 {
			rows = rows[:10]
		}
		for i, c := range rows {
			ctc := "-"
			if c.HasCTC {
				ctc = fmt.Sprintf("%.2f LPA", c.CTC)
			}
			fmt.Fprintf(w, "  \033[1m%2d.\033[0m %-28s %4d  %s\n", i+1, truncate(c.Company, 28), c.TotalSelections, ctc)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func granularityTitle(g models.Granularity) string {
	switch g {
	case models.GranularityDay:
		return "Day"
	case models.GranularityYear:
		return "Year"
	default:
		return "Month"
	}
}

// bar caps the width so large cohorts still fit on one line.
func bar(n int) string {
	if n > 40 {
		n = 40
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("█", n)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
