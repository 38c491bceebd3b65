package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/you/fintrack/domain"
)

// TransactionHandlers serves one transaction kind, mounted at /expenses or
// /incomes
type TransactionHandlers struct {
	svc     domain.TransactionService
	exports domain.ExportService
}

// NewTransactionHandlers creates handlers for svc's kind
func NewTransactionHandlers(svc domain.TransactionService, exports domain.ExportService) *TransactionHandlers {
	return &TransactionHandlers{svc: svc, exports: exports}
}

// TransactionRequest is the create and update payload. Amount accepts a
// JSON number or a numeric string.
type TransactionRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category" binding:"required,max=32"`
	Note     string          `json:"note" binding:"max=255"`
	Date     string          `json:"date" binding:"required"`
	Method   string          `json:"method" binding:"required,oneof=Bank Cash"`
}

func (r TransactionRequest) input() domain.TransactionInput {
	return domain.TransactionInput{
		Amount:   r.Amount,
		Category: r.Category,
		Note:     r.Note,
		Date:     r.Date,
		Method:   domain.PaymentMethod(r.Method),
	}
}

// TransactionPageView is one page of a listing
type TransactionPageView struct {
	Items    []TransactionView `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

func pageView(p *domain.TransactionPage) TransactionPageView {
	items := make([]TransactionView, 0, len(p.Items))
	for _, tx := range p.Items {
		items = append(items, transactionView(tx))
	}
	return TransactionPageView{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		fail(c, domain.NewValidationError(name, "must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

// parseFilter reads from, to, category, method, page and pageSize
func parseFilter(c *gin.Context) (domain.TransactionFilter, bool) {
	var f domain.TransactionFilter
	var valid bool

	if f.From, valid = queryDate(c, "from"); !valid {
		return f, false
	}
	if f.To, valid = queryDate(c, "to"); !valid {
		return f, false
	}
	if f.Page, valid = queryInt(c, "page"); !valid {
		return f, false
	}
	if f.PageSize, valid = queryInt(c, "pageSize"); !valid {
		return f, false
	}
	f.Category = c.Query("category")
	f.Method = domain.PaymentMethod(c.Query("method"))
	return f, true
}

// List handles GET /expenses. Admins and managers may pass userId to read
// another owner's records.
func (h *TransactionHandlers) List(c *gin.Context) {
	ownerID, valid := queryID(c, "userId")
	if !valid {
		return
	}
	h.list(c, ownerID)
}

// ListForUser handles GET /manager/users/:id/expenses
func (h *TransactionHandlers) ListForUser(c *gin.Context) {
	ownerID, valid := pathID(c, "id")
	if !valid {
		return
	}
	h.list(c, ownerID)
}

func (h *TransactionHandlers) list(c *gin.Context, ownerID uint) {
	actor, found := principal(c)
	if !found {
		return
	}
	f, valid := parseFilter(c)
	if !valid {
		return
	}

	page, err := h.svc.List(c.Request.Context(), actor, ownerID, f)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, pageView(page))
}

// Get handles GET /expenses/:id
func (h *TransactionHandlers) Get(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	tx, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, transactionView(tx))
}

// Create handles POST /expenses
func (h *TransactionHandlers) Create(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	var req TransactionRequest
	if !bind(c, &req) {
		return
	}

	tx, err := h.svc.Create(c.Request.Context(), actor, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionView(tx))
}

// Update handles PUT /expenses/:id
func (h *TransactionHandlers) Update(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req TransactionRequest
	if !bind(c, &req) {
		return
	}

	tx, err := h.svc.Update(c.Request.Context(), actor, id, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, transactionView(tx))
}

// Delete handles DELETE /expenses/:id
func (h *TransactionHandlers) Delete(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"message": fmt.Sprintf("%s deleted", h.svc.Kind())})
}

// Export handles GET /expenses/export?format=csv|xlsx. The file is rendered
// in memory so a failure still produces a JSON error.
func (h *TransactionHandlers) Export(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	ownerID, valid := queryID(c, "userId")
	if !valid {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "csv"))

	var buf bytes.Buffer
	if err := h.exports.Export(c.Request.Context(), actor, ownerID, h.svc.Kind(), format, &buf); err != nil {
		fail(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	filename := fmt.Sprintf("%ss-%s.%s", h.svc.Kind(), time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
