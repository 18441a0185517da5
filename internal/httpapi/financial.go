package httpapi

import (
	"net/http"

	"eventmis/internal/financial"

	"github.com/gin-gonic/gin"
)

// --- Financial records ---

func (h *Handlers) ListFinancial(c *gin.Context) {
	list, err := h.Financial.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

func (h *Handlers) FinancialTotals(c *gin.Context) {
	t, err := h.Financial.Totals(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, "")
}

func (h *Handlers) CreateFinancial(c *gin.Context) {
	var req financial.CreateInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	r, err := h.Financial.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, r, "Financial record created successfully")
}

type updateFinancialRequest struct {
	ID string `json:"id"`
	financial.UpdateInput
}

func (h *Handlers) UpdateFinancial(c *gin.Context) {
	var req updateFinancialRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	id, err := idFrom(c, req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.Financial.Update(c.Request.Context(), actor(c), id, req.UpdateInput)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, r, "Financial record updated successfully")
}

func (h *Handlers) DeleteFinancial(c *gin.Context) {
	id, err := idFrom(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Financial.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Financial record deleted successfully")
}
