package api

import (
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/reviewpulse/internal/models"
	"github.com/spacesedan/reviewpulse/internal/processing"
)

type scrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

type scrapeQuery struct {
	Count int    `form:"count,default=100"`
	Sort  string `form:"sort"`
}

type reviewList struct {
	Reviews []string `json:"reviews" binding:"required"`
}

type aspectDetail struct {
	Aspect string                `json:"aspect"`
	Label  models.SentimentLabel `json:"label"`
	Score  float64               `json:"score"`
}

type aspectResult struct {
	Review  string         `json:"review"`
	Details []aspectDetail `json:"details"`
}

type generalResult struct {
	Review string                `json:"review"`
	Label  models.SentimentLabel `json:"label"`
	Score  float64               `json:"score"`
}

func (s *Server) scrape(c *gin.Context) {
	var body scrapeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, models.NewInputError("%v", err))
		return
	}
	if u, err := url.Parse(body.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fail(c, models.NewInputError("url must be an absolute http(s) URL"))
		return
	}

	query := scrapeQuery{Count: processing.DefaultReviewCount}
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, models.NewInputError("%v", err))
		return
	}
	sort, err := models.ParseSortOrder(query.Sort)
	if err != nil {
		fail(c, err)
		return
	}

	destination := filepath.Join(s.workDir, processing.DefaultReviewsFile)
	reviews, err := s.service.ScrapeToCSV(c.Request.Context(), body.URL, query.Count, sort, destination)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "reviews": reviews})
}

// analyze runs aspect analysis when aspects are given in the query and
// general analysis otherwise.
func (s *Server) analyze(c *gin.Context) {
	var body reviewList
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, models.NewInputError("%v", err))
		return
	}

	aspects := c.QueryArray("aspects")
	if len(aspects) == 0 {
		analysis, err := s.service.AnalyzeGeneral(c.Request.Context(), body.Reviews)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "success",
			"analysis_type": models.ModeGeneral,
			"run_id":        analysis.RunID,
			"report":        analysis.Report,
			"skipped":       analysis.Skipped,
			"results":       groupGeneral(analysis.Details),
		})
		return
	}

	analysis, err := s.service.AnalyzeAspects(c.Request.Context(), body.Reviews, aspects)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"analysis_type":    models.ModeAspect,
		"run_id":           analysis.RunID,
		"aspects_analyzed": analysis.Aspects,
		"report":           analysis.ReportMap(),
		"skipped":          analysis.Skipped,
		"results":          groupAspects(analysis.Details),
	})
}

func (s *Server) summarize(c *gin.Context) {
	var body reviewList
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, models.NewInputError("%v", err))
		return
	}

	summary, err := s.service.Summarize(c.Request.Context(), body.Reviews)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "summary": summary})
}

// groupAspects groups detail rows by review text, reviews in ascending order,
// rows in detail table order.
func groupAspects(rows []models.DetailRow) []aspectResult {
	index := make(map[string]int)
	results := []aspectResult{}
	for _, row := range rows {
		i, ok := index[row.Review]
		if !ok {
			i = len(results)
			index[row.Review] = i
			results = append(results, aspectResult{Review: row.Review})
		}
		results[i].Details = append(results[i].Details, aspectDetail{Aspect: row.Aspect, Label: row.Label, Score: row.Score})
	}

	slices.SortStableFunc(results, func(a, b aspectResult) int {
		return strings.Compare(a.Review, b.Review)
	})
	return results
}

// groupGeneral keeps the first row per distinct review text.
func groupGeneral(rows []models.DetailRow) []generalResult {
	seen := make(map[string]struct{})
	results := []generalResult{}
	for _, row := range rows {
		if _, ok := seen[row.Review]; ok {
			continue
		}
		seen[row.Review] = struct{}{}
		results = append(results, generalResult{Review: row.Review, Label: row.Label, Score: row.Score})
	}

	slices.SortStableFunc(results, func(a, b generalResult) int {
		return strings.Compare(a.Review, b.Review)
	})
	return results
}
