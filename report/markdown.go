// Package report renders a StatsReport as markdown, HTML and PDF.
package report

import (
	"fmt"
	"strings"
	"time"

	"placement-stats/models"
)

// Markdown renders the report as a GitHub-flavoured markdown document.
func Markdown(r *models.StatsReport, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Placement Statistics Report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", generatedAt.UTC().Format("02 Jan 2006 15:04 MST"))

	b.WriteString("## Overview\n\n")
	table(&b, []string{"Metric", "Value"}, [][]string{
		{"Placements", fmt.Sprint(r.TotalPlacements)},
		{"Offers with CTC", fmt.Sprint(r.TotalOffers)},
		{"Students placed", fmt.Sprint(r.TotalSelections)},
		{"Companies", fmt.Sprint(len(r.CompanyBranch))},
		{"Branches", fmt.Sprint(len(r.BranchCompany))},
	})

	b.WriteString("## CTC Statistics (LPA)\n\n")
	table(&b, []string{"Min", "Max", "Average", "Median"}, [][]string{ctcCells(r.Ctc)})

	if len(r.BranchCtc) > 0 {
		b.WriteString("## Branch-wise CTC (LPA)\n\n")
		rows := make([][]string, 0, len(r.BranchCtc))
		for _, bc := range r.BranchCtc {
			rows = append(rows, append([]string{escape(bc.Branch), fmt.Sprint(bc.Offers)}, ctcCells(bc.Stats)...))
		}
		table(&b, []string{"Branch", "Offers", "Min", "Max", "Average", "Median"}, rows)
	}

	if len(r.BranchShares) > 0 {
		b.WriteString("## Selections by Branch\n\n")
		rows := make([][]string, 0, len(r.BranchShares))
		for _, s := range r.BranchShares {
			rows = append(rows, []string{escape(s.Branch), fmt.Sprint(s.Selections)})
		}
		table(&b, []string{"Branch", "Selections"}, rows)
	}

	if len(r.Timeline) > 0 {
		fmt.Fprintf(&b, "## Selections by %s\n\n", periodTitle(r.Granularity))
		rows := make([][]string, 0, len(r.Timeline))
		for _, tb := range r.Timeline {
			rows = append(rows, []string{tb.Label, fmt.Sprint(tb.Selections)})
		}
		table(&b, []string{"Period", "Selections"}, rows)
	}

	if len(r.CtcTrend) > 0 {
		b.WriteString("## CTC Trend (LPA)\n\n")
		rows := make([][]string, 0, len(r.CtcTrend))
		for _, p := range r.CtcTrend {
			rows = append(rows, []string{p.Label, lpa(p.Median), lpa(p.Avg), lpa(p.Max)})
		}
		table(&b, []string{"Period", "Median", "Average", "Max"}, rows)
	}

	b.WriteString("## Students by CTC Range\n\n")
	rows := make([][]string, 0, len(r.CtcRanges))
	for _, cr := range r.CtcRanges {
		rows = append(rows, []string{cr.Range, fmt.Sprint(cr.Count)})
	}
	table(&b, []string{"Range", "Students"}, rows)

	if len(r.Companies) > 0 {
		b.WriteString("## Companies\n\n")
		rows := make([][]string, 0, len(r.Companies))
		for _, c := range r.Companies {
			ctc := "-"
			if c.HasCTC {
				ctc = lpa(c.CTC)
			}
			first := "-"
			if c.FirstPlacementDate != nil {
				first = c.FirstPlacementDate.Format("02 Jan 2006")
			}
			rows = append(rows, []string{
				escape(c.Company), fmt.Sprint(c.TotalSelections), escape(branchList(c.Branches)), ctc, first,
			})
		}
		table(&b, []string{"Company", "Selections", "Branches", "CTC (LPA)", "First Placement"}, rows)
	}

	return b.String()
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func ctcCells(s models.CtcStats) []string {
	return []string{lpa(s.Min), lpa(s.Max), lpa(s.Avg), lpa(s.Median)}
}

func lpa(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func branchList(branches []models.BranchCount) string {
	parts := make([]string, 0, len(branches))
	for _, bc := range branches {
		parts = append(parts, fmt.Sprintf("%s (%d)", bc.Branch, bc.Count))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func periodTitle(g models.Granularity) string {
	switch g {
	case models.GranularityDay:
		return "Day"
	case models.GranularityYear:
		return "Year"
	default:
		return "Month"
	}
}

// escape keeps user text from breaking table cells.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
