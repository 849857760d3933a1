package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"placement-stats/models"
)

type fakeFetcher struct {
	raw []*models.RawPlacement
	err error
}

func (f *fakeFetcher) Placements(ctx context.Context) ([]*models.RawPlacement, error) {
	return f.raw, f.err
}

func TestUpstreamSourceCleans(t *testing.T) {
	f := &fakeFetcher{raw: []*models.RawPlacement{
		{ID: id(1), Company: " Google ", CTC: json.RawMessage(`"20 LPA"`)},
		{ID: id(2), Company: "   "},
	}}
	src := NewUpstreamSource(f, NewCleaner(newTestLogger()))

	got, err := src.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Company != "Google" || got[0].CTC != 20 {
		t.Errorf("cleaned placements: got %+v", got)
	}
}

func TestUpstreamSourceError(t *testing.T) {
	sentinel := errors.New("upstream down")
	src := NewUpstreamSource(&fakeFetcher{err: sentinel}, NewCleaner(newTestLogger()))

	if _, err := src.FetchAll(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}
