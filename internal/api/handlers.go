package api

import (
	"math"
	"net/http"
	"strconv"

	"go-job-extractor/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
	// MaxPage keeps page*limit inside an int.
	MaxPage = math.MaxInt / MaxLimit
)

// ListResponse is the body of GET /jobs.
type ListResponse struct {
	Results    []models.JobRecord `json:"results"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	HasNext    bool               `json:"has_next"`
	HasPrev    bool               `json:"has_prev"`
}

// Paginate fills the paging fields for total matches.
func Paginate(page, limit, total int) ListResponse {
	return ListResponse{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
		HasNext:    page*limit < total,
		HasPrev:    page > 1,
	}
}

type Handler struct {
	source JobSource
	log    *zap.SugaredLogger
}

// NewRouter wires the listing API on a gin engine.
func NewRouter(source JobSource, log *zap.SugaredLogger) *gin.Engine {
	h := &Handler{source: source, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", h.health)
	r.GET("/jobs", h.listJobs)
	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Job extractor API is running!",
		"status":  "healthy",
	})
}

func (h *Handler) listJobs(c *gin.Context) {
	page, ok := intQuery(c, "page", 1, 1, MaxPage)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", DefaultLimit, 1, MaxLimit)
	if !ok {
		return
	}

	results, total, err := h.source.ListJobs(c.Request.Context(), (page-1)*limit, limit, c.Query("search"))
	if err != nil {
		h.log.Errorf("❌ Failed to list jobs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	resp := Paginate(page, limit, total)
	resp.Results = results
	if resp.Results == nil {
		resp.Results = []models.JobRecord{}
	}
	c.JSON(http.StatusOK, resp)
}

// intQuery parses an optional integer parameter within [min, max]. It writes
// a 400 and returns false on bad input.
func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		msg := name + " must be an integer >= " + strconv.Itoa(min) + " and <= " + strconv.Itoa(max)
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return v, true
}
