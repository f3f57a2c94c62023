package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DailyReport streams the daily summary PDF. Without a date param the
// report covers today (UTC).
func (s *Server) DailyReport(c *gin.Context) {
	date := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse(dateOnlyLayout, raw)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
			return
		}
		date = parsed
	}

	doc, err := s.reportSvc.DailySummary(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="scout-daily-`+date.Format(dateOnlyLayout)+`.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}
