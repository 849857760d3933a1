package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"placement-stats/config"
	"placement-stats/models"
	"placement-stats/services"
	"placement-stats/utils"
)

const placementsBody = `{"err":false,"data":[
 {"id":1,"company":"Google","ctc":20,"placement_date":"2024-01-10","created_at":"2024-01-11T09:00:00Z","branch_counts":[{"branch":"CSE","count":2}]},
 {"id":2,"company":"TCS","ctc":"3.6 LPA","placement_date":null,"branch_counts":[{"branch":"ME","count":6}]}
]}`

const companyBranchBody = `{"err":false,"data":[{"company":"Google","branches":[{"branch":"CSE","count":2}]}]}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	cfg := &config.Config{
		APIBaseURL:         srv.URL + "/",
		HTTPTimeoutSeconds: 5,
		MaxRetries:         3,
		RetryBaseDelayMs:   1,
		MaxConcurrency:     3,
	}
	return New(cfg, utils.NewLoggerTo(&buf, &buf))
}

func TestPlacementsDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/placements" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(placementsBody))
	}))

	got, err := c.Placements(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("placements: got %d, want 2", len(got))
	}
	if got[0].Company != "Google" || *got[0].ID != 1 {
		t.Errorf("first placement: got %+v", got[0])
	}
	if string(got[1].CTC) != `"3.6 LPA"` {
		t.Errorf("raw ctc: got %s, want \"3.6 LPA\"", got[1].CTC)
	}
	if got[0].FetchedAt.IsZero() {
		t.Error("FetchedAt should be stamped")
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(companyBranchBody))
	}))

	got, err := c.CompanyBranch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.CompanyBranchMapping{{Company: "Google", Branches: []models.BranchCount{{Branch: "CSE", Count: 2}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 3 {
		t.Errorf("calls: got %d, want 3", calls.Load())
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.BranchCompany(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", statusErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1", calls.Load())
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err":true,"data":"database unavailable"}`))
	}))

	_, err := c.Placements(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "database unavailable" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestFetchAllToleratesMappingFailures(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/placements":
			w.Write([]byte(placementsBody))
		case "/placements/company-branch":
			w.Write([]byte(companyBranchBody))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	snap, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Placements) != 2 {
		t.Errorf("placements: got %d, want 2", len(snap.Placements))
	}
	if len(snap.CompanyBranch) != 1 {
		t.Errorf("company-branch: got %d entries, want 1", len(snap.CompanyBranch))
	}
	if snap.BranchCompany != nil {
		t.Errorf("branch-company should be nil, got %+v", snap.BranchCompany)
	}
}

func TestFetchAllFailsWithoutPlacements(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/placements") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"err":false,"data":[]}`))
	}))

	if _, err := c.FetchAll(context.Background()); err == nil {
		t.Fatal("expected an error when placements cannot be fetched")
	}
}

func TestPlacementsToleratesLooseCounts(t *testing.T) {
	body := `{"err":false,"data":[
	 {"id":1,"company":"Google","ctc":20,"branch_counts":[{"branch":"CSE","count":"3"},{"branch":"ECE","count":2.0}]},
	 {"id":2,"company":"TCS","ctc":4,"branch_counts":[{"branch":"ME","count":"many"},{"branch":"IT","count":1}]}
	]}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	raw, err := c.Placements(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("placements: got %d, want 2", len(raw))
	}

	var buf bytes.Buffer
	cleaned := services.NewCleaner(utils.NewLoggerTo(&buf, &buf)).Clean(raw)
	want := [][]models.BranchCount{
		{{Branch: "CSE", Count: 3}, {Branch: "ECE", Count: 2}},
		{{Branch: "IT", Count: 1}},
	}
	got := [][]models.BranchCount{cleaned[0].BranchCounts, cleaned[1].BranchCounts}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("branch counts mismatch (-want +got):\n%s", diff)
	}
}
