package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"placement-stats/models"
	"placement-stats/stats"
	"placement-stats/utils"
)

var (
	// lpaSuffixRegexp strips a trailing unit from string CTCs such as "12.5 LPA"
	lpaSuffixRegexp = regexp.MustCompile(`(?i)\s*(lpa|lakhs?)\s*$`)

	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
)

// Cleaner transforms RawPlacements into validated Placements.
// It is the only place where upstream data is interpreted; the stats package
// assumes its output is well typed.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw placements and returns cleaned records in input order.
// Records without a company and repeated upstream IDs are dropped; an invalid
// CTC or date only removes the record from the statistics that need it.
func (c *Cleaner) Clean(raw []*models.RawPlacement) []models.Placement {
	seen := utils.NewKeySet()
	result := make([]models.Placement, 0, len(raw))

	for _, r := range raw {
		if r == nil {
			continue
		}

		company := strings.TrimSpace(r.Company)
		if company == "" {
			c.logger.Warn("[cleaner] Dropping placement with empty company (id=%s)", idString(r.ID))
			continue
		}

		if r.ID != nil && !seen.Add(strconv.FormatInt(*r.ID, 10)) {
			c.logger.Debug("[cleaner] Duplicate placement id skipped: %d", *r.ID)
			continue
		}

		p := models.Placement{
			Company:       company,
			CTC:           c.parseCTC(r.CTC),
			PlacementDate: c.parseDate(r.PlacementDate),
			BranchCounts:  c.cleanBranches(company, r.BranchCounts),
		}
		if r.ID != nil {
			p.ID = *r.ID
		}

		result = append(result, p)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d placements (dropped %d, %d distinct ids)",
		len(raw), len(result), len(raw)-len(result), seen.Size())
	return result
}

// parseCTC accepts a JSON number or a numeric string, optionally suffixed with
// "LPA". Anything else, including negative and non-finite values, is NaN.
func (c *Cleaner) parseCTC(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return math.NaN()
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			c.logger.Debug("[cleaner] Unreadable CTC %s", s)
			return math.NaN()
		}
		str = lpaSuffixRegexp.ReplaceAllString(strings.TrimSpace(str), "")
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(str, ",", ""), 64)
		if err != nil {
			c.logger.Debug("[cleaner] Non-numeric CTC %q", str)
			return math.NaN()
		}
		v = parsed
	}

	if !stats.ValidCTC(v) {
		c.logger.Debug("[cleaner] Out of range CTC %v", v)
		return math.NaN()
	}
	return v
}

// parseDate returns the zero time for empty or unparseable dates.
func (c *Cleaner) parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	c.logger.Debug("[cleaner] Unparseable placement date %q", raw)
	return time.Time{}
}

func (c *Cleaner) cleanBranches(company string, raw []models.RawBranchCount) []models.BranchCount {
	out := make([]models.BranchCount, 0, len(raw))
	for _, bc := range raw {
		branch := strings.TrimSpace(bc.Branch)
		if branch == "" {
			c.logger.Debug("[cleaner] %s: branch entry without a name dropped", company)
			continue
		}
		count, ok := parseCount(bc.Count)
		if !ok {
			c.logger.Warn("[cleaner] %s: unreadable count %s for %s dropped", company, string(bc.Count), branch)
			continue
		}
		if count < 0 {
			c.logger.Warn("[cleaner] %s: negative count %d for %s dropped", company, count, branch)
			continue
		}
		out = append(out, models.BranchCount{Branch: branch, Count: count})
	}
	return out
}

// parseCount accepts a whole JSON number or numeric string ("3", 2.0).
// A missing or null count is 0.
func parseCount(raw json.RawMessage) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, true
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func idString(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}
