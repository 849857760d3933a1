package stats

import "placement-stats/models"

// RecordSelections is the number of students selected in one placement, all branches included.
func RecordSelections(p models.Placement) int {
	total := 0
	for _, bc := range p.BranchCounts {
		total += bc.Count
	}
	return total
}

// TotalSelections is the number of students placed across all records.
func TotalSelections(records []models.Placement) int {
	total := 0
	for _, p := range records {
		total += RecordSelections(p)
	}
	return total
}

// BuildCompanyBranchMapping groups selections by company, then by branch.
//
// Companies are keyed by their exact name, so names that differ only in case
// stay separate. Entries keep the order in which companies and branches first
// appear, and repeated (company, branch) pairs are summed.
func BuildCompanyBranchMapping(records []models.Placement) []models.CompanyBranchMapping {
	out := []models.CompanyBranchMapping{}
	companyIdx := make(map[string]int)
	branchIdx := make(map[string]map[string]int)

	for _, p := range records {
		ci, ok := companyIdx[p.Company]
		if !ok {
			ci = len(out)
			companyIdx[p.Company] = ci
			branchIdx[p.Company] = make(map[string]int)
			out = append(out, models.CompanyBranchMapping{
				Company:  p.Company,
				Branches: []models.BranchCount{},
			})
		}

		seen := branchIdx[p.Company]
		for _, bc := range p.BranchCounts {
			bi, ok := seen[bc.Branch]
			if !ok {
				seen[bc.Branch] = len(out[ci].Branches)
				out[ci].Branches = append(out[ci].Branches, models.BranchCount{Branch: bc.Branch, Count: bc.Count})
				continue
			}
			out[ci].Branches[bi].Count += bc.Count
		}
	}
	return out
}

// BuildBranchCompanyMapping is the transpose of BuildCompanyBranchMapping:
// selections grouped by branch, then by company, in first-appearance order.
func BuildBranchCompanyMapping(records []models.Placement) []models.BranchCompanyMapping {
	out := []models.BranchCompanyMapping{}
	branchIdx := make(map[string]int)
	companyIdx := make(map[string]map[string]int)

	for _, p := range records {
		for _, bc := range p.BranchCounts {
			bi, ok := branchIdx[bc.Branch]
			if !ok {
				bi = len(out)
				branchIdx[bc.Branch] = bi
				companyIdx[bc.Branch] = make(map[string]int)
				out = append(out, models.BranchCompanyMapping{
					Branch:    bc.Branch,
					Companies: []models.CompanyCount{},
				})
			}

			seen := companyIdx[bc.Branch]
			ci, ok := seen[p.Company]
			if !ok {
				seen[p.Company] = len(out[bi].Companies)
				out[bi].Companies = append(out[bi].Companies, models.CompanyCount{Company: p.Company, Count: bc.Count})
				continue
			}
			out[bi].Companies[ci].Count += bc.Count
		}
	}
	return out
}

// BranchShares totals each branch of the mapping and attaches its chart colour.
func BranchShares(branchCompany []models.BranchCompanyMapping) []models.BranchShare {
	out := make([]models.BranchShare, 0, len(branchCompany))
	for _, b := range branchCompany {
		total := 0
		for _, c := range b.Companies {
			total += c.Count
		}
		out = append(out, models.BranchShare{
			Branch:     b.Branch,
			Selections: total,
			Color:      BranchToColor(b.Branch),
		})
	}
	return out
}
