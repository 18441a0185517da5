package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"eventmis/internal/events"

	"github.com/gin-gonic/gin"
)

// --- Events ---

func (h *Handlers) ListEvents(c *gin.Context) {
	f := events.ListFilter{Status: strings.TrimSpace(c.Query("status"))}
	if v := c.Query("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, badRequest("approved must be true or false"))
			return
		}
		f.ApprovedOnly = approved
	}
	list, err := h.Events.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

func (h *Handlers) GetEvent(c *gin.Context) {
	ev, err := h.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, ev, "")
}

// EventOptions lists the suggested themes and packages. Both fields also
// accept free text.
func (h *Handlers) EventOptions(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"themes":          events.KnownThemes,
		"packages":        events.KnownPackages,
		"statuses":        events.Statuses,
		"paymentStatuses": events.PaymentStatuses,
	}, "")
}

func (h *Handlers) CreateEvent(c *gin.Context) {
	var req events.CreateInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ev, err := h.Events.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, ev, "Event created successfully")
}

type updateEventRequest struct {
	ID string `json:"id"`
	events.UpdateInput
}

func (h *Handlers) UpdateEvent(c *gin.Context) {
	var req updateEventRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	id, err := idFrom(c, req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ev, err := h.Events.Update(c.Request.Context(), actor(c), id, req.UpdateInput)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, ev, "Event updated successfully")
}

// DeleteEvent archives; active events are never hard-deleted.
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, err := idFrom(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	a, err := h.Events.Archive(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, a, "Event archived successfully")
}

// --- Archive ---

func (h *Handlers) ListArchive(c *gin.Context) {
	list, err := h.Events.ListArchived(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handlers) ArchiveEvent(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	a, err := h.Events.Archive(c.Request.Context(), actor(c), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, a, "Event archived successfully")
}

func (h *Handlers) RestoreEvent(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ev, err := h.Events.Restore(c.Request.Context(), actor(c), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, ev, "Event restored successfully")
}

func (h *Handlers) DeleteArchived(c *gin.Context) {
	id, err := idFrom(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	a, err := h.Events.PermanentDelete(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, a, "Archived event permanently deleted")
}
