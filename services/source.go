package services

import (
	"context"
	"fmt"

	"placement-stats/models"
)

// RawFetcher is the part of the upstream client the API source needs.
type RawFetcher interface {
	Placements(ctx context.Context) ([]*models.RawPlacement, error)
}

// UpstreamSource reads placements straight from the placements API and
// cleans them on every call.
type UpstreamSource struct {
	fetcher RawFetcher
	cleaner *Cleaner
}

func NewUpstreamSource(fetcher RawFetcher, cleaner *Cleaner) *UpstreamSource {
	return &UpstreamSource{fetcher: fetcher, cleaner: cleaner}
}

// FetchAll fetches and cleans the current placement list.
func (s *UpstreamSource) FetchAll(ctx context.Context) ([]models.Placement, error) {
	raw, err := s.fetcher.Placements(ctx)
	if err != nil {
		return nil, fmt.Errorf("upstream source: %w", err)
	}
	return s.cleaner.Clean(raw), nil
}
