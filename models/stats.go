package models

import "time"

// CtcStats summarises a set of CTC values in LPA. An empty set yields all zeros.
type CtcStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

// CompanyBranchMapping lists, for one company, the selections per branch.
type CompanyBranchMapping struct {
	Company  string        `json:"company"`
	Branches []BranchCount `json:"branches"`
}

// CompanyCount is the number of students of a branch selected by one company.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// BranchCompanyMapping lists, for one branch, the selections per company.
type BranchCompanyMapping struct {
	Branch    string         `json:"branch"`
	Companies []CompanyCount `json:"companies"`
}

// Granularity is the width of a time bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// TimeBucket holds the total selections that fall in one time bucket.
type TimeBucket struct {
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	Selections int       `json:"selections"`
}

// CtcTrendPoint is the CTC summary of the offers made within one time bucket.
type CtcTrendPoint struct {
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	Median float64   `json:"median"`
	Avg    float64   `json:"avg"`
	Max    float64   `json:"max"`
}

// CtcRangeCount is the number of students placed with a CTC inside [Min, Max).
// Max is nil for the open-ended top band.
type CtcRangeCount struct {
	Range string   `json:"range"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max"`
	Count int      `json:"count"`
}

// BranchShare is one slice of the branch selections chart.
type BranchShare struct {
	Branch     string `json:"branch"`
	Selections int    `json:"selections"`
	Color      string `json:"color"`
}

// BranchCtcStat is the per-offer CTC summary restricted to one branch.
type BranchCtcStat struct {
	Branch string   `json:"branch"`
	Offers int      `json:"offers"`
	Stats  CtcStats `json:"stats"`
}

// CompanySummary is one row of the company table.
type CompanySummary struct {
	Company            string        `json:"company"`
	TotalSelections    int           `json:"total_selections"`
	Branches           []BranchCount `json:"branches"`
	FirstPlacementDate *time.Time    `json:"first_placement_date"`
	CTC                float64       `json:"ctc"`
	HasCTC             bool          `json:"has_ctc"`
}

// StatsReport holds every aggregate derived from one placement list.
type StatsReport struct {
	TotalPlacements int                    `json:"total_placements"`
	TotalOffers     int                    `json:"total_offers"`
	TotalSelections int                    `json:"total_selections"`
	Ctc             CtcStats               `json:"ctc"`
	Granularity     Granularity            `json:"granularity,omitempty"`
	Timeline        []TimeBucket           `json:"timeline"`
	CtcTrend        []CtcTrendPoint        `json:"ctc_trend"`
	CtcRanges       []CtcRangeCount        `json:"ctc_ranges"`
	CompanyBranch   []CompanyBranchMapping `json:"company_branch"`
	BranchCompany   []BranchCompanyMapping `json:"branch_company"`
	BranchShares    []BranchShare          `json:"branch_shares"`
	BranchCtc       []BranchCtcStat        `json:"branch_ctc"`
	Companies       []CompanySummary       `json:"companies"`
	GeneratedAt     time.Time              `json:"generated_at"`
}
