package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// ReportHandlers serves /reports
type ReportHandlers struct {
	reportSvc domain.ReportService
	now       func() time.Time
}

// NewReportHandlers creates new report handlers
func NewReportHandlers(reportSvc domain.ReportService) *ReportHandlers {
	return &ReportHandlers{reportSvc: reportSvc, now: time.Now}
}

// Summary handles GET /reports/summary?from=&to=&userId=. The range
// defaults to the current calendar year up to today.
func (h *ReportHandlers) Summary(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	ownerID, valid := queryID(c, "userId")
	if !valid {
		return
	}
	from, valid := queryDate(c, "from")
	if !valid {
		return
	}
	to, valid := queryDate(c, "to")
	if !valid {
		return
	}

	if to == nil {
		now := h.now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		to = &today
	}
	if from == nil {
		start := time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		from = &start
	}

	summary, err := h.reportSvc.Summary(c.Request.Context(), actor, ownerID, *from, *to)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, summary)
}
