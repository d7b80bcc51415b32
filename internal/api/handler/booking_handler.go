package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tolkify/booking-be/internal/api/dto"
	"github.com/tolkify/booking-be/internal/booking"
	"github.com/tolkify/booking-be/internal/booking/domain"
)

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, effects, err := h.booking.CreateBooking(c.Request.Context(), userID, booking.CreateBookingInput{
		FromLanguageID:   req.FromLanguageID,
		Immediate:        req.Immediate,
		DueDate:          req.DueDate,
		DueTime:          req.DueTime,
		Duration:         req.Duration,
		PhoneDelivery:    req.PhoneDelivery,
		PhysicalDelivery: req.PhysicalDelivery,
		JobFor:           req.JobFor,
		ContactEmail:     req.ContactEmail,
		Reference:        req.Reference,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.applyEffects(c.Request.Context(), effects)
	c.JSON(http.StatusCreated, dto.NewBookingResponse(job))
}

// GetBooking handles GET /api/v1/bookings/:job_id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	job, err := h.booking.GetJob(c.Request.Context(), c.Param("job_id"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookingResponse(job))
}

// AcceptBooking handles POST /api/v1/bookings/:job_id/accept
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.runAccept(c, h.booking.AcceptJob)
}

// AcceptBookingWithID handles POST /api/v1/bookings/:job_id/accept-with-id,
// the accept variant where the translator confirmed their identity and the
// customer is pushed immediately.
func (h *BookingHandler) AcceptBookingWithID(c *gin.Context) {
	h.runAccept(c, h.booking.AcceptJobWithID)
}

// runAccept runs an acceptance and responds with the assigned booking plus
// the translator's refreshed potential listing.
func (h *BookingHandler) runAccept(c *gin.Context, op func(ctx context.Context, jobID, actorID string) (*booking.AcceptResult, booking.Effects, error)) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	res, effects, err := op(c.Request.Context(), c.Param("job_id"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.applyEffects(c.Request.Context(), effects)
	c.JSON(http.StatusOK, dto.NewAcceptBookingResponse(res.Job, res.Confirmation, res.PotentialJobs))
}

// CancelBooking handles POST /api/v1/bookings/:job_id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.runLifecycleOp(c, h.booking.CancelJob)
}

// EndBooking handles POST /api/v1/bookings/:job_id/end
func (h *BookingHandler) EndBooking(c *gin.Context) {
	h.runLifecycleOp(c, h.booking.EndJob)
}

// ReportNoShow handles POST /api/v1/bookings/:job_id/no-show
func (h *BookingHandler) ReportNoShow(c *gin.Context) {
	h.runLifecycleOp(c, h.booking.CustomerNotCall)
}

// ReopenBooking handles POST /api/v1/bookings/:job_id/reopen
func (h *BookingHandler) ReopenBooking(c *gin.Context) {
	h.runLifecycleOp(c, h.booking.Reopen)
}

// runLifecycleOp runs a (jobID, actorID) lifecycle operation and applies
// its effects. All single-job POST endpoints share this shape.
func (h *BookingHandler) runLifecycleOp(c *gin.Context, op func(ctx context.Context, jobID, actorID string) (*domain.Job, booking.Effects, error)) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	job, effects, err := op(c.Request.Context(), c.Param("job_id"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.applyEffects(c.Request.Context(), effects)
	c.JSON(http.StatusOK, dto.NewBookingResponse(job))
}

// UpdateBooking handles PUT /api/v1/bookings/:job_id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, effects, err := h.booking.UpdateJob(c.Request.Context(), userID, c.Param("job_id"), booking.AdminUpdate{
		Status:          domain.JobStatus(req.Status),
		DueDate:         req.DueDate,
		DueTime:         req.DueTime,
		FromLanguageID:  req.FromLanguageID,
		TranslatorID:    req.TranslatorID,
		TranslatorEmail: req.TranslatorEmail,
		AdminComments:   req.AdminComments,
		Reference:       req.Reference,
		SessionTime:     req.SessionTime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.applyEffects(c.Request.Context(), effects)
	c.JSON(http.StatusOK, dto.NewBookingResponse(job))
}

// PotentialBookings handles GET /api/v1/bookings/potential, the pending
// jobs the acting translator is eligible for.
func (h *BookingHandler) PotentialBookings(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	jobs, err := h.booking.PotentialJobs(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookingListResponse(jobs))
}

// SessionAlerts handles GET /api/v1/bookings/alerts: jobs whose recorded
// session time reached twice the booked duration.
func (h *BookingHandler) SessionAlerts(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	jobs, err := h.booking.SessionAlerts(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookingListResponse(jobs))
}

// ResendNotifications handles POST /api/v1/bookings/:job_id/resend-notifications,
// re-triggering the push fan-out for a pending booking.
func (h *BookingHandler) ResendNotifications(c *gin.Context) {
	h.resendEvent(c, booking.EventResendPush)
}

// ResendSMS handles POST /api/v1/bookings/:job_id/resend-sms,
// re-triggering the SMS fan-out for a pending booking.
func (h *BookingHandler) ResendSMS(c *gin.Context) {
	h.resendEvent(c, booking.EventResendSMS)
}

// resendEvent verifies the actor can see the job, then publishes a resend
// event for the notifier service to act on.
func (h *BookingHandler) resendEvent(c *gin.Context, eventType string) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	jobID := c.Param("job_id")

	job, err := h.booking.GetJob(c.Request.Context(), jobID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.applyEffects(c.Request.Context(), booking.Effects{
		Events: []booking.JobEvent{{Type: eventType, JobID: job.ID}},
	})

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"event":  eventType,
	})
}
