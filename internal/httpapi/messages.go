package httpapi

import (
	"net/http"
	"strconv"

	"eventmis/internal/messaging"

	"github.com/gin-gonic/gin"
)

// --- Messages ---

// ListMessages returns a flat list, or threads when ?threads=true.
func (h *Handlers) ListMessages(c *gin.Context) {
	if v := c.Query("threads"); v != "" {
		threaded, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, badRequest("threads must be true or false"))
			return
		}
		if threaded {
			list, err := h.Messages.Threads(c.Request.Context())
			if err != nil {
				fail(c, err)
				return
			}
			respondList(c, list, len(list))
			return
		}
	}
	list, err := h.Messages.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

func (h *Handlers) SendMessage(c *gin.Context) {
	var req messaging.SendInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	m, err := h.Messages.Send(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, m, "Message sent successfully")
}

type replyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handlers) ReplyMessage(c *gin.Context) {
	var req replyRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	m, err := h.Messages.Reply(c.Request.Context(), actor(c), c.Param("id"), req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, m, "Reply sent successfully")
}

type updateMessageRequest struct {
	ID string `json:"id"`
	messaging.UpdateInput
}

func (h *Handlers) UpdateMessage(c *gin.Context) {
	var req updateMessageRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	id, err := idFrom(c, req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	m, err := h.Messages.Update(c.Request.Context(), actor(c), id, req.UpdateInput)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, m, "Message updated successfully")
}

func (h *Handlers) MarkMessageRead(c *gin.Context) {
	m, err := h.Messages.MarkRead(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, m, "")
}

func (h *Handlers) DeleteMessage(c *gin.Context) {
	id, err := idFrom(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Messages.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Message deleted successfully")
}
