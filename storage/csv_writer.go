package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"placement-stats/models"
)

var csvHeader = []string{
	"id", "company", "ctc", "placement_date", "created_at", "branch_counts", "fetched_at",
}

// CSVWriter writes raw (uncleaned) placements to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends one row per raw placement. Values are written as received.
func (c *CSVWriter) WriteRaw(placements []*models.RawPlacement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range placements {
		if p == nil {
			continue
		}
		if err := c.writer.Write(rawRow(p)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

func rawRow(p *models.RawPlacement) []string {
	id := ""
	if p.ID != nil {
		id = strconv.FormatInt(*p.ID, 10)
	}
	fetched := ""
	if !p.FetchedAt.IsZero() {
		fetched = p.FetchedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		id,
		p.Company,
		rawValue(p.CTC),
		p.PlacementDate,
		p.CreatedAt,
		formatBranchCounts(p.BranchCounts),
		fetched,
	}
}

// rawValue unquotes JSON strings and leaves numbers as written; null becomes empty.
func rawValue(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal([]byte(s), &str); err == nil {
		return str
	}
	return s
}

// formatBranchCounts serialises branch counts as "CSE:3;ECE:1".
func formatBranchCounts(counts []models.RawBranchCount) string {
	parts := make([]string, 0, len(counts))
	for _, bc := range counts {
		parts = append(parts, bc.Branch+":"+rawValue(bc.Count))
	}
	return strings.Join(parts, ";")
}
