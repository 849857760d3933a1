// Package fetcher reads placement data from the upstream placements REST API.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"placement-stats/config"
	"placement-stats/models"
	"placement-stats/utils"
)

const (
	placementsPath    = "/placements"
	companyBranchPath = "/placements/company-branch"
	branchCompanyPath = "/placements/branch-company"

	maxBodyBytes = 32 << 20
)

// APIError is returned when the upstream answers with {"err": true}.
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error from %s: %s", e.Endpoint, e.Message)
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.Endpoint)
}

type envelope struct {
	Err  bool            `json:"err"`
	Data json.RawMessage `json:"data"`
}

// Snapshot is everything fetched from the upstream in one run.
// The mappings are nil when the upstream could not provide them.
type Snapshot struct {
	Placements    []*models.RawPlacement
	CompanyBranch []models.CompanyBranchMapping
	BranchCompany []models.BranchCompanyMapping
}

// Client talks to the placements API.
type Client struct {
	baseURL        string
	http           *http.Client
	logger         *utils.Logger
	retry          *utils.RetryConfig
	maxConcurrency int
	rateLimitMs    int
}

// New creates a Client configured from cfg.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.HTTPTimeout()},
		logger:  logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay(),
			Logger:      logger,
		},
		maxConcurrency: cfg.MaxConcurrency,
		rateLimitMs:    cfg.RateLimitMs,
	}
}

// Placements fetches the full placement list.
func (c *Client) Placements(ctx context.Context) ([]*models.RawPlacement, error) {
	var out []*models.RawPlacement
	if err := c.get(ctx, placementsPath, &out); err != nil {
		return nil, err
	}
	now := time.Now()
	for _, p := range out {
		if p != nil {
			p.FetchedAt = now
		}
	}
	c.logger.Info("[fetcher] Fetched %d placements", len(out))
	return out, nil
}

// CompanyBranch fetches the company to branch mapping computed by the upstream.
func (c *Client) CompanyBranch(ctx context.Context) ([]models.CompanyBranchMapping, error) {
	var out []models.CompanyBranchMapping
	if err := c.get(ctx, companyBranchPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BranchCompany fetches the branch to company mapping computed by the upstream.
func (c *Client) BranchCompany(ctx context.Context) ([]models.BranchCompanyMapping, error) {
	var out []models.BranchCompanyMapping
	if err := c.get(ctx, branchCompanyPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAll fetches the placements and both mappings concurrently.
// Only a placements failure is returned; mapping failures are logged.
func (c *Client) FetchAll(ctx context.Context) (*Snapshot, error) {
	pool := utils.NewWorkerPool(c.maxConcurrency, c.rateLimitMs)
	snap := &Snapshot{}

	var mu sync.Mutex
	var placementsErr error

	pool.Submit(func() {
		p, err := c.Placements(ctx)
		mu.Lock()
		defer mu.Unlock()
		snap.Placements, placementsErr = p, err
	})
	pool.Submit(func() {
		m, err := c.CompanyBranch(ctx)
		if err != nil {
			c.logger.Warn("[fetcher] Company-branch mapping unavailable: %v", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		snap.CompanyBranch = m
	})
	pool.Submit(func() {
		m, err := c.BranchCompany(ctx)
		if err != nil {
			c.logger.Warn("[fetcher] Branch-company mapping unavailable: %v", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		snap.BranchCompany = m
	})
	pool.Wait()

	if placementsErr != nil {
		return nil, fmt.Errorf("fetcher: placements: %w", placementsErr)
	}
	return snap, nil
}

// get performs GET path with retries and decodes the envelope's data into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path
	return c.retry.Do(ctx, "GET "+path, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return utils.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read %s: %w", endpoint, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return statusErr
			}
			return utils.Permanent(statusErr)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return utils.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		if env.Err {
			return utils.Permanent(&APIError{Endpoint: path, Message: envelopeMessage(env.Data)})
		}
		if len(bytes.TrimSpace(env.Data)) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return utils.Permanent(fmt.Errorf("decode %s data: %w", path, err))
		}
		return nil
	})
}

func envelopeMessage(data json.RawMessage) string {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil && msg != "" {
		return msg
	}
	if len(data) == 0 {
		return "API error"
	}
	return string(data)
}
