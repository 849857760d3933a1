package services

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"placement-stats/models"
)

// Fingerprint hashes the length and content of a placement list. Two lists
// with the same records in the same order share a fingerprint.
func Fingerprint(placements []models.Placement) string {
	h := sha256.New()
	var buf [8]byte

	writeInt := func(n int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(int64(len(s)))
		h.Write([]byte(s))
	}

	writeInt(int64(len(placements)))
	for _, p := range placements {
		writeInt(p.ID)
		writeString(p.Company)
		ctc := p.CTC
		if math.IsNaN(ctc) {
			ctc = math.NaN() // all NaN payloads hash alike
		}
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(ctc))
		h.Write(buf[:])
		if p.HasDate() {
			writeInt(p.PlacementDate.UnixNano())
		} else {
			writeInt(math.MinInt64)
		}
		writeInt(int64(len(p.BranchCounts)))
		for _, bc := range p.BranchCounts {
			writeString(bc.Branch)
			writeInt(int64(bc.Count))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

type cachedReport struct {
	report *models.StatsReport
	exp    time.Time
}

// ReportCache memoises generated reports by input fingerprint. Any change to
// the placement list yields a new key, so a report is always recomputed as a
// whole. Expired entries are evicted on access. Safe for concurrent use.
type ReportCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedReport
	now     func() time.Time

	hits, misses int
}

// NewReportCache creates a cache whose entries live for ttl.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		ttl:     ttl,
		entries: make(map[string]cachedReport),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached report for placements, calling compute on a miss.
func (c *ReportCache) GetOrCompute(placements []models.Placement, compute func([]models.Placement) *models.StatsReport) *models.StatsReport {
	key := Fingerprint(placements)

	c.mu.Lock()
	now := c.now()
	if e, ok := c.entries[key]; ok {
		if now.Before(e.exp) {
			c.hits++
			c.mu.Unlock()
			return e.report
		}
		delete(c.entries, key)
	}
	c.misses++
	c.mu.Unlock()

	report := compute(placements)

	c.mu.Lock()
	c.evictExpired(now)
	c.entries[key] = cachedReport{report: report, exp: now.Add(c.ttl)}
	c.mu.Unlock()
	return report
}

// Clear drops every cached report.
func (c *ReportCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cachedReport)
	c.mu.Unlock()
}

// Stats returns the hit and miss counters.
func (c *ReportCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *ReportCache) evictExpired(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.exp) {
			delete(c.entries, k)
		}
	}
}
