package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"eventmis/internal/events"
	"eventmis/internal/intake"
	"eventmis/internal/pricing"

	"github.com/gin-gonic/gin"
)

// --- Public website ---

// PublicEvents lists approved events only.
func (h *Handlers) PublicEvents(c *gin.Context) {
	list, err := h.Events.List(c.Request.Context(), events.ListFilter{ApprovedOnly: true})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, list, len(list))
}

func (h *Handlers) PublicSettings(c *gin.Context) {
	s, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, s.Public(), "")
}

func (h *Handlers) PublicQuote(c *gin.Context) {
	guests := 0
	if v := strings.TrimSpace(c.Query("guests")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(c, badRequest("guests must be a whole number"))
			return
		}
		guests = n
	}
	s, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	q, err := pricing.Quote(s.Rates(), c.Query("package"), guests)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, q, "")
}

func (h *Handlers) SubmitBooking(c *gin.Context) {
	var req intake.BookingForm
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	res, err := h.Intake.SubmitBooking(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, res.Event, "Thank you for your reservation! Your event booking is pending confirmation.")
}

func (h *Handlers) SubmitContact(c *gin.Context) {
	var req intake.ContactForm
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	m, err := h.Intake.SubmitContact(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"id": m.ID}, "Thank you for your message! We'll get back to you soon.")
}
