package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"eventmis/internal/audit"
	"eventmis/internal/reporting"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// --- Audit trail ---

func (h *Handlers) ListAudit(c *gin.Context) {
	list, err := h.Audit.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

type appendAuditRequest struct {
	Action   string          `json:"action"`
	Entity   string          `json:"entity"`
	EntityID string          `json:"entityId"`
	Details  string          `json:"details"`
	User     string          `json:"user"`
	Changes  json.RawMessage `json:"changes"`
}

// AppendAudit stores an entry supplied by an external caller.
func (h *Handlers) AppendAudit(c *gin.Context) {
	var req appendAuditRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	var changes datatypes.JSON
	if raw := bytes.TrimSpace(req.Changes); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		changes = datatypes.JSON(raw)
	}
	e, err := h.Audit.Append(c.Request.Context(), audit.Entry{
		Action:   audit.Action(req.Action),
		Entity:   req.Entity,
		EntityID: req.EntityID,
		Details:  req.Details,
		User:     req.User,
		Changes:  changes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, e, "Audit entry recorded")
}

// --- Reports ---

func (h *Handlers) Report(c *gin.Context) {
	r, err := h.Reports.Generate(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, r, "")
}

func (h *Handlers) filter(c *gin.Context) (reporting.Filter, error) {
	return reporting.ParseFilter(c.Query("action"), c.Query("entity"), c.Query("user"), c.Query("from"), c.Query("to"))
}

func (h *Handlers) ReportTransactions(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.Reports.Transactions(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

// ExportReport streams the filtered transactions as CSV.
func (h *Handlers) ExportReport(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.Reports.Transactions(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := reporting.WriteCSV(&buf, list); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reporting.ExportFilename(h.now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, d, "")
}
