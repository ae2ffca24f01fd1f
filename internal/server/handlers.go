package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crimson-sun/djenbridge/internal/breaker"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Response headers describing where an /intimations answer came from.
const (
	HeaderSource  = "X-Djen-Source"
	HeaderStale   = "X-Djen-Stale"
	HeaderFetchID = "X-Djen-Fetch-Id"
	HeaderAge     = "X-Djen-Age"
	// HeaderClientKey overrides the client IP as the admission key.
	HeaderClientKey = "X-Client-Key"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: code, Message: msg, Code: status})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "djenbridge - Brazilian court notifications for LLMs",
		"version": s.cfg.Version,
		"endpoints": gin.H{
			"intimations": "/intimations",
			"courts":      "/courts",
			"health":      "/health",
			"metrics":     "/metrics",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	state := s.svc.BreakerState()
	status := "healthy"
	if state != breaker.Closed {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"timestamp":     time.Now().Format(time.RFC3339),
		"service":       "djenbridge",
		"version":       s.cfg.Version,
		"breaker":       state,
		"cache_entries": s.svc.CacheEntries(),
	})
}

func (s *Server) handleCourts(c *gin.Context) {
	c.JSON(http.StatusOK, model.Courts())
}

func (s *Server) handleIntimations(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		name = c.Query("lawyer_name")
	}
	clientKey := c.GetHeader(HeaderClientKey)
	if clientKey == "" {
		clientKey = c.ClientIP()
	}
	q := model.Query{
		LawyerName: name,
		OAB:        c.Query("oab"),
		DateStart:  c.Query("date_start"),
		DateEnd:    c.Query("date_end"),
		Court:      c.Query("court"),
		ClientKey:  clientKey,
	}

	res, err := s.svc.Fetch(c.Request.Context(), q)
	if err != nil {
		s.writeFetchError(c, err)
		return
	}

	h := c.Writer.Header()
	h.Set(HeaderSource, string(res.Source))
	h.Set(HeaderStale, strconv.FormatBool(res.Stale))
	if res.FetchID != "" {
		h.Set(HeaderFetchID, res.FetchID)
	}
	if res.Age > 0 {
		h.Set(HeaderAge, strconv.Itoa(int(res.Age.Seconds())))
	}
	records := res.Records
	if records == nil {
		records = []model.NotificationRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) writeFetchError(c *gin.Context, err error) {
	var (
		invalid     *model.InvalidQueryError
		limited     *model.RateLimitedError
		unavailable *model.UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(c, http.StatusBadRequest, "INVALID_QUERY", invalid.Error())
	case errors.As(err, &limited):
		secs := int(math.Ceil(limited.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", limited.Error())
	case errors.As(err, &unavailable):
		writeError(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", unavailable.Error())
	case c.Request.Context().Err() != nil:
		// client went away; 499 mirrors the nginx convention
		writeError(c, 499, "CLIENT_CLOSED", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
