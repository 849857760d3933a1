package models

import (
	"encoding/json"
	"math"
	"time"
)

// BranchCount is the number of students of one academic branch selected in a placement.
type BranchCount struct {
	Branch string `json:"branch"`
	Count  int    `json:"count"`
}

// RawBranchCount is one branch_counts entry as received. Count stays raw JSON
// because the backend sometimes sends it as a string or a float.
type RawBranchCount struct {
	Branch string          `json:"branch"`
	Count  json.RawMessage `json:"count"`
}

// RawPlacement is a placement exactly as the upstream API returns it.
// CTC is kept as raw JSON because the backend is not strict about its type.
// It is dumped to CSV before any cleaning or transformation.
type RawPlacement struct {
	ID            *int64           `json:"id,omitempty"`
	Company       string           `json:"company"`
	CTC           json.RawMessage  `json:"ctc"`
	PlacementDate string           `json:"placement_date"`
	CreatedAt     string           `json:"created_at,omitempty"`
	BranchCounts  []RawBranchCount `json:"branch_counts"`
	FetchedAt     time.Time        `json:"-"`
}

// Placement is the validated record the aggregation engine works on.
// CTC is NaN when the upstream value was missing or invalid; PlacementDate is
// the zero time when the record is undated.
type Placement struct {
	ID            int64
	Company       string
	CTC           float64
	PlacementDate time.Time
	BranchCounts  []BranchCount
}

// HasDate reports whether the placement carries a usable date.
func (p Placement) HasDate() bool {
	return !p.PlacementDate.IsZero()
}

type placementJSON struct {
	ID            int64         `json:"id,omitempty"`
	Company       string        `json:"company"`
	CTC           *float64      `json:"ctc"`
	PlacementDate string        `json:"placement_date"`
	BranchCounts  []BranchCount `json:"branch_counts"`
}

// MarshalJSON writes the placement in the upstream shape; an invalid CTC becomes null.
func (p Placement) MarshalJSON() ([]byte, error) {
	out := placementJSON{
		ID:           p.ID,
		Company:      p.Company,
		BranchCounts: p.BranchCounts,
	}
	if !math.IsNaN(p.CTC) && !math.IsInf(p.CTC, 0) {
		ctc := p.CTC
		out.CTC = &ctc
	}
	if p.HasDate() {
		out.PlacementDate = p.PlacementDate.Format("2006-01-02")
	}
	if out.BranchCounts == nil {
		out.BranchCounts = []BranchCount{}
	}
	return json.Marshal(out)
}
