package httpapi

import (
	"net/http"

	"eventmis/internal/users"

	"github.com/gin-gonic/gin"
)

// --- Users (Admin only) ---

func (h *Handlers) ListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var req users.CreateInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Users.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, u, "User created successfully")
}

type updateUserRequest struct {
	ID string `json:"id"`
	users.UpdateInput
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	id, err := idFrom(c, req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	u, err := h.Users.Update(c.Request.Context(), actor(c), id, req.UpdateInput)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, u, "User updated successfully")
}

func (h *Handlers) DeleteUser(c *gin.Context) {
	id, err := idFrom(c, "")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Users.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "User deleted successfully")
}

// --- Settings ---

func (h *Handlers) GetSettings(c *gin.Context) {
	s, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, s, "")
}

// SaveSettings merges the posted fields over the stored settings.
func (h *Handlers) SaveSettings(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, badRequest("invalid body"))
		return
	}
	s, err := h.Settings.Save(c.Request.Context(), actor(c), body)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, s, "Settings saved successfully")
}
