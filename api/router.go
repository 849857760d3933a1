// Package api exposes the placement statistics over HTTP.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"placement-stats/models"
	"placement-stats/report"
	"placement-stats/services"
	"placement-stats/stats"
	"placement-stats/storage"
	"placement-stats/utils"
)

// Router wires HTTP handlers.
type Router struct {
	source  storage.PlacementSource
	insight *services.InsightService
	cache   *services.ReportCache
	logger  *utils.Logger
	origins string
}

func NewRouter(source storage.PlacementSource, insight *services.InsightService, cache *services.ReportCache, logger *utils.Logger, allowedOrigins string) *gin.Engine {
	r := &Router{
		source:  source,
		insight: insight,
		cache:   cache,
		logger:  logger,
		origins: allowedOrigins,
	}

	router := gin.New()
	router.Use(r.loggerMiddleware(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	placements := router.Group("/placements")
	{
		placements.GET("", r.listPlacements)
		placements.GET("/company-branch", r.withReport(r.companyBranch))
		placements.GET("/branch-company", r.withReport(r.branchCompany))
	}

	st := router.Group("/stats")
	{
		st.GET("", r.withReport(r.getStats))
		st.GET("/ctc", r.withReport(r.getCtc))
		st.GET("/timeline", r.withReport(r.getTimeline))
		st.GET("/ctc-trend", r.withReport(r.getCtcTrend))
		st.GET("/ctc-ranges", r.withReport(r.getCtcRanges))
		st.GET("/companies", r.withReport(r.getCompanies))
		st.GET("/branches", r.withReport(r.getBranches))
		st.GET("/report.md", r.withReport(r.getMarkdownReport))
		st.GET("/report.html", r.withReport(r.getHTMLReport))
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		for _, o := range trimmed {
			if o == "*" {
				allowed = "*"
				break
			}
			if o == origin {
				allowed = origin
				break
			}
		}
		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Router) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			r.logger.Warn("[api] %s %s → %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		r.logger.Debug("[api] %s %s → %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"err": false, "data": data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"err": true, "data": err.Error()})
}

// load reads the current placements and the report derived from them.
func (r *Router) load(ctx context.Context) ([]models.Placement, *models.StatsReport, error) {
	placements, err := r.source.FetchAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return placements, r.cache.GetOrCompute(placements, r.insight.Generate), nil
}

// withReport runs fn with the current report, answering 502 when the source fails.
func (r *Router) withReport(fn func(c *gin.Context, placements []models.Placement, rep *models.StatsReport)) gin.HandlerFunc {
	return func(c *gin.Context) {
		placements, rep, err := r.load(c.Request.Context())
		if err != nil {
			r.logger.Error("[api] Placement source failed: %v", err)
			fail(c, http.StatusBadGateway, err)
			return
		}
		fn(c, placements, rep)
	}
}

func (r *Router) listPlacements(c *gin.Context) {
	placements, err := r.source.FetchAll(c.Request.Context())
	if err != nil {
		r.logger.Error("[api] Placement source failed: %v", err)
		fail(c, http.StatusBadGateway, err)
		return
	}
	if placements == nil {
		placements = []models.Placement{}
	}
	ok(c, placements)
}

func (r *Router) companyBranch(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep.CompanyBranch)
}

func (r *Router) branchCompany(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep.BranchCompany)
}

func (r *Router) getStats(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep)
}

func (r *Router) getCtc(c *gin.Context, placements []models.Placement, rep *models.StatsReport) {
	branch := strings.TrimSpace(c.Query("branch"))
	if branch == "" {
		ok(c, rep.Ctc)
		return
	}
	ok(c, stats.BranchCtcStats(rep.BranchCompany, placements, branch))
}

func (r *Router) getTimeline(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, gin.H{"granularity": rep.Granularity, "buckets": rep.Timeline})
}

func (r *Router) getCtcTrend(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep.CtcTrend)
}

func (r *Router) getCtcRanges(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep.CtcRanges)
}

func (r *Router) getCompanies(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep.Companies)
}

func (r *Router) getBranches(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	ok(c, rep.BranchShares)
}

func (r *Router) getMarkdownReport(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	md := report.Markdown(rep, rep.GeneratedAt)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (r *Router) getHTMLReport(c *gin.Context, _ []models.Placement, rep *models.StatsReport) {
	page, err := report.ToHTML(report.Markdown(rep, rep.GeneratedAt))
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
