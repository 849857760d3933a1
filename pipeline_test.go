package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"placement-stats/models"
	"placement-stats/utils"
)

type fakeStore struct {
	stored   []models.Placement
	writeErr error
	fetchErr error
	fetches  int
}

func (f *fakeStore) Write(ctx context.Context, placements []models.Placement) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.stored = placements
	return nil
}

func (f *fakeStore) FetchAll(ctx context.Context) ([]models.Placement, error) {
	f.fetches++
	return f.stored, f.fetchErr
}

func (f *fakeStore) Close() error { return nil }

func quietLogger() *utils.Logger {
	var buf bytes.Buffer
	return utils.NewLoggerTo(&buf, &buf)
}

func TestPersistReadsBackAfterWrite(t *testing.T) {
	store := &fakeStore{}
	fresh := []models.Placement{{ID: 1, Company: "Google", CTC: 20}}

	got := persist(context.Background(), store, fresh, quietLogger())
	if store.fetches != 1 {
		t.Errorf("fetches: got %d, want 1", store.fetches)
	}
	if len(got) != 1 || got[0].Company != "Google" {
		t.Errorf("placements: got %+v", got)
	}
}

func TestPersistKeepsFreshDataWhenWriteFails(t *testing.T) {
	previousRun := []models.Placement{{ID: 9, Company: "Stale Corp", CTC: 5}}
	store := &fakeStore{stored: previousRun, writeErr: errors.New("tx rolled back")}
	fresh := []models.Placement{{ID: 1, Company: "Google", CTC: 20}}

	got := persist(context.Background(), store, fresh, quietLogger())
	if store.fetches != 0 {
		t.Errorf("store must not be read after a failed write, got %d fetches", store.fetches)
	}
	if len(got) != 1 || got[0].Company != "Google" {
		t.Errorf("placements: got %+v, want the fresh fetch", got)
	}
}

func TestPersistFallsBackWhenReadFails(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("connection reset")}
	fresh := []models.Placement{{ID: 1, Company: "Google", CTC: 20}}

	got := persist(context.Background(), store, fresh, quietLogger())
	if len(got) != 1 || got[0].Company != "Google" {
		t.Errorf("placements: got %+v, want the fresh fetch", got)
	}
}
