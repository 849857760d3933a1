package storage

import (
	"context"

	"placement-stats/models"
)

// PlacementWriter is the interface any storage backend must satisfy.
type PlacementWriter interface {
	Write(ctx context.Context, placements []models.Placement) error
	Close() error
}

// RawPlacementWriter is the interface for persisting unprocessed upstream data.
type RawPlacementWriter interface {
	WriteRaw(placements []*models.RawPlacement) error
	Close() error
}

// PlacementSource provides the cleaned placement list the statistics are derived from.
type PlacementSource interface {
	FetchAll(ctx context.Context) ([]models.Placement, error)
}

// PlacementStore persists placements and reads back what it stored.
type PlacementStore interface {
	PlacementWriter
	PlacementSource
}

var (
	_ PlacementStore     = (*PostgresStore)(nil)
	_ RawPlacementWriter = (*CSVWriter)(nil)
)
