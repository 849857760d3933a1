package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"placement-stats/models"
)

func TestBuildCompanyBranchMappingSumsRepeatedPairs(t *testing.T) {
	records := []models.Placement{
		{Company: "Google", CTC: 20, BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 3}}},
		{Company: "Google", CTC: 22, BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 2}}},
	}
	got := BuildCompanyBranchMapping(records)
	want := []models.CompanyBranchMapping{
		{Company: "Google", Branches: []models.BranchCount{{Branch: "CSE", Count: 5}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCompanyBranchMappingOrderAndCase(t *testing.T) {
	records := []models.Placement{
		{Company: "Zomato", BranchCounts: []models.BranchCount{{Branch: "ECE", Count: 1}, {Branch: "CSE", Count: 1}}},
		{Company: "amazon", BranchCounts: []models.BranchCount{{Branch: "IT", Count: 2}}},
		{Company: "Amazon", BranchCounts: []models.BranchCount{{Branch: "IT", Count: 4}}},
		// same branch twice inside one record is summed, not overwritten
		{Company: "Zomato", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 2}, {Branch: "CSE", Count: 1}}},
		{Company: "Startup", CTC: math.NaN()},
	}
	got := BuildCompanyBranchMapping(records)
	want := []models.CompanyBranchMapping{
		{Company: "Zomato", Branches: []models.BranchCount{{Branch: "ECE", Count: 1}, {Branch: "CSE", Count: 4}}},
		{Company: "amazon", Branches: []models.BranchCount{{Branch: "IT", Count: 2}}},
		{Company: "Amazon", Branches: []models.BranchCount{{Branch: "IT", Count: 4}}},
		{Company: "Startup", Branches: []models.BranchCount{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBranchCompanyMappingIsTranspose(t *testing.T) {
	records := []models.Placement{
		{Company: "Google", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 2}}},
		{Company: "Google", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 1}, {Branch: "ECE", Count: 1}}},
		{Company: "Amazon", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 3}}},
		{Company: "Nobody"},
	}
	got := BuildBranchCompanyMapping(records)
	want := []models.BranchCompanyMapping{
		{Branch: "CSE", Companies: []models.CompanyCount{{Company: "Google", Count: 3}, {Company: "Amazon", Count: 3}}},
		{Branch: "ECE", Companies: []models.CompanyCount{{Company: "Google", Count: 1}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestMappingsEmptyInput(t *testing.T) {
	if got := BuildCompanyBranchMapping(nil); got == nil || len(got) != 0 {
		t.Errorf("company mapping: expected empty non-nil slice, got %#v", got)
	}
	if got := BuildBranchCompanyMapping(nil); got == nil || len(got) != 0 {
		t.Errorf("branch mapping: expected empty non-nil slice, got %#v", got)
	}
}

func TestMappingsDoNotMutateInput(t *testing.T) {
	records := []models.Placement{
		{Company: "Google", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 2}}},
		{Company: "Google", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 3}}},
	}
	BuildCompanyBranchMapping(records)
	BuildBranchCompanyMapping(records)
	if records[0].BranchCounts[0].Count != 2 || records[1].BranchCounts[0].Count != 3 {
		t.Errorf("input branch counts were modified: %+v", records)
	}
}

func TestTotalSelections(t *testing.T) {
	records := []models.Placement{
		{BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 2}, {Branch: "ECE", Count: 1}}},
		{BranchCounts: nil},
		{BranchCounts: []models.BranchCount{{Branch: "ME", Count: 4}}},
	}
	if got := TotalSelections(records); got != 7 {
		t.Errorf("TotalSelections: got %d, want 7", got)
	}
}

func TestBranchShares(t *testing.T) {
	mapping := []models.BranchCompanyMapping{
		{Branch: "CSE", Companies: []models.CompanyCount{{Company: "A", Count: 3}, {Company: "B", Count: 2}}},
		{Branch: "ECE", Companies: []models.CompanyCount{}},
	}
	got := BranchShares(mapping)
	want := []models.BranchShare{
		{Branch: "CSE", Selections: 5, Color: BranchToColor("CSE")},
		{Branch: "ECE", Selections: 0, Color: BranchToColor("ECE")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shares mismatch (-want +got):\n%s", diff)
	}
}
