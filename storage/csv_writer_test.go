package storage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"placement-stats/models"
)

func TestCSVWriterWritesRawRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "raw.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	id := int64(7)
	fetched := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := []*models.RawPlacement{
		{
			ID:            &id,
			Company:       " Google ",
			CTC:           json.RawMessage(`"12 LPA"`),
			PlacementDate: "2024-01-10",
			BranchCounts: []models.RawBranchCount{
				{Branch: "CSE", Count: json.RawMessage(`3`)},
				{Branch: "ECE", Count: json.RawMessage(`"1"`)},
			},
			FetchedAt: fetched,
		},
		nil,
		{Company: "TCS", CTC: json.RawMessage(`null`)},
	}
	if err := w.WriteRaw(raw); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	want := [][]string{
		csvHeader,
		{"7", " Google ", "12 LPA", "2024-01-10", "", "CSE:3;ECE:1", "2024-03-01T10:00:00Z"},
		{"", "TCS", "", "", "", "", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRawValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`12.5`, "12.5"},
		{`"8 LPA"`, "8 LPA"},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := rawValue([]byte(tt.in)); got != tt.want {
			t.Errorf("rawValue(%s): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
