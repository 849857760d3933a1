package storage

import (
	"database/sql"
	"math"
	"strings"
	"testing"
	"time"

	"placement-stats/models"
)

func TestCtcValueRoundTrip(t *testing.T) {
	tests := []struct {
		in    float64
		valid bool
	}{
		{12.5, true},
		{0, true},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		v := ctcValue(tt.in)
		if v.Valid != tt.valid {
			t.Errorf("ctcValue(%v).Valid: got %v, want %v", tt.in, v.Valid, tt.valid)
			continue
		}
		back := ctcFromDB(v)
		if tt.valid && back != tt.in {
			t.Errorf("ctc round trip: got %v, want %v", back, tt.in)
		}
		if !tt.valid && !math.IsNaN(back) {
			t.Errorf("NULL ctc should read back as NaN, got %v", back)
		}
	}
}

func TestDateValueRoundTrip(t *testing.T) {
	if v := dateValue(time.Time{}); v.Valid {
		t.Error("undated record should store NULL")
	}
	if got := dateFromDB(sql.NullTime{}); !got.IsZero() {
		t.Errorf("NULL date: got %v, want zero time", got)
	}

	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	back := dateFromDB(dateValue(d))
	if !back.Equal(d) || back.Location() != time.UTC {
		t.Errorf("date round trip: got %v, want %v", back, d)
	}
}

func TestIdValue(t *testing.T) {
	if idValue(0).Valid {
		t.Error("missing id should store NULL")
	}
	if v := idValue(42); !v.Valid || v.Int64 != 42 {
		t.Errorf("idValue(42): got %+v", v)
	}
}

func TestPlacementInsertPlaceholders(t *testing.T) {
	batch := []models.Placement{
		{ID: 1, Company: "Google", CTC: 20},
		{ID: 2, Company: "TCS", CTC: math.NaN()},
	}
	query, args := placementInsert(50, batch)

	if !strings.Contains(query, "($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)") {
		t.Errorf("unexpected placeholders in %q", query)
	}
	if len(args) != 10 {
		t.Fatalf("args: got %d, want 10", len(args))
	}
	if args[0] != 50 || args[5] != 51 {
		t.Errorf("positions: got %v and %v, want 50 and 51", args[0], args[5])
	}
	if ctc := args[8].(sql.NullFloat64); ctc.Valid {
		t.Error("NaN CTC should be inserted as NULL")
	}
}

func TestBranchRowsKeepOrder(t *testing.T) {
	placements := []models.Placement{
		{Company: "A", BranchCounts: []models.BranchCount{{Branch: "CSE", Count: 2}, {Branch: "ECE", Count: 1}}},
		{Company: "B"},
		{Company: "C", BranchCounts: []models.BranchCount{{Branch: "ME", Count: 4}}},
	}
	rows := branchRows(placements)
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	last := rows[2]
	if last.position != 2 || last.idx != 0 || last.bc.Branch != "ME" {
		t.Errorf("last row: got %+v", last)
	}

	query, args := branchInsert(rows)
	if !strings.Contains(query, "($9,$10,$11,$12)") || len(args) != 12 {
		t.Errorf("branch insert: %d args, query %q", len(args), query)
	}
}
