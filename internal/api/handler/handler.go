package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tolkify/booking-be/internal/booking"
	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
)

// BookingService is the slice of the lifecycle service the handlers use.
type BookingService interface {
	CreateBooking(ctx context.Context, customerID string, in booking.CreateBookingInput) (*domain.Job, booking.Effects, error)
	AcceptJob(ctx context.Context, jobID, translatorID string) (*booking.AcceptResult, booking.Effects, error)
	AcceptJobWithID(ctx context.Context, jobID, translatorID string) (*booking.AcceptResult, booking.Effects, error)
	CancelJob(ctx context.Context, jobID, userID string) (*domain.Job, booking.Effects, error)
	EndJob(ctx context.Context, jobID, actorID string) (*domain.Job, booking.Effects, error)
	CustomerNotCall(ctx context.Context, jobID, translatorID string) (*domain.Job, booking.Effects, error)
	UpdateJob(ctx context.Context, actorID, jobID string, upd booking.AdminUpdate) (*domain.Job, booking.Effects, error)
	Reopen(ctx context.Context, jobID, actorID string) (*domain.Job, booking.Effects, error)
	PotentialJobs(ctx context.Context, translatorID string) ([]domain.Job, error)
	GetJob(ctx context.Context, jobID, actorID string) (*domain.Job, error)
	SessionAlerts(ctx context.Context, actorID string) ([]domain.Job, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Booking      BookingService
	Dispatcher   notification.Dispatcher
	Publisher    notification.Publisher
	SupportPhone string
}

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	logger       *slog.Logger
	booking      BookingService
	dispatcher   notification.Dispatcher
	publisher    notification.Publisher
	supportPhone string
}

// NewBookingHandler creates a new BookingHandler instance
func NewBookingHandler(deps *Dependencies) *BookingHandler {
	return &BookingHandler{
		logger:       deps.Logger,
		booking:      deps.Booking,
		dispatcher:   deps.Dispatcher,
		publisher:    deps.Publisher,
		supportPhone: deps.SupportPhone,
	}
}

// actingUser extracts the authenticated user id placed in the X-User-ID
// header by the auth proxy. Aborts with 401 when missing.
func (h *BookingHandler) actingUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "X-User-ID header is required",
		})
		return "", false
	}
	return userID, true
}

// applyEffects executes the side effects of a committed lifecycle
// operation: dispatches outbox intents and publishes job events to the
// broker. Failures are logged, never surfaced; the state change already
// committed.
func (h *BookingHandler) applyEffects(ctx context.Context, effects booking.Effects) {
	h.dispatcher.Dispatch(ctx, effects.Intents)

	for _, ev := range effects.Events {
		body, err := json.Marshal(ev)
		if err != nil {
			h.logger.Error("Failed to encode job event",
				slog.String("type", ev.Type),
				slog.String("job_id", ev.JobID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := h.publisher.PublishTo(ctx, ev.Type, body, "application/json"); err != nil {
			h.logger.Error("Failed to publish job event",
				slog.String("type", ev.Type),
				slog.String("job_id", ev.JobID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// respondError maps lifecycle errors to HTTP status codes.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": vErr.Message,
			"field": vErr.Field,
		})

	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": err.Error(),
		})

	case errors.Is(err, domain.ErrJobNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})

	case errors.Is(err, domain.ErrTooLateToCancel):
		c.JSON(http.StatusConflict, gin.H{
			"error":         err.Error(),
			"support_phone": h.supportPhone,
		})

	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})

	default:
		h.logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
