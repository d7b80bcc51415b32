package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tolkify/booking-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "booking-api-service",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bookingHandler := handler.NewBookingHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		{
			// POST /api/v1/bookings - Create a new booking
			bookings.POST("", bookingHandler.CreateBooking)

			// GET /api/v1/bookings/potential - Pending jobs the acting
			// translator is eligible for
			bookings.GET("/potential", bookingHandler.PotentialBookings)

			// GET /api/v1/bookings/alerts - Overrun sessions (admin)
			bookings.GET("/alerts", bookingHandler.SessionAlerts)

			// GET /api/v1/bookings/:job_id - Get booking details
			bookings.GET("/:job_id", bookingHandler.GetBooking)

			// PUT /api/v1/bookings/:job_id - Admin edit
			bookings.PUT("/:job_id", bookingHandler.UpdateBooking)

			// POST /api/v1/bookings/:job_id/accept - Translator accepts
			bookings.POST("/:job_id/accept", bookingHandler.AcceptBooking)

			// POST /api/v1/bookings/:job_id/accept-with-id - Accept with
			// confirmed identity; customer is pushed immediately
			bookings.POST("/:job_id/accept-with-id", bookingHandler.AcceptBookingWithID)

			// POST /api/v1/bookings/:job_id/cancel - Customer or translator cancels
			bookings.POST("/:job_id/cancel", bookingHandler.CancelBooking)

			// POST /api/v1/bookings/:job_id/end - Session ended
			bookings.POST("/:job_id/end", bookingHandler.EndBooking)

			// POST /api/v1/bookings/:job_id/no-show - Customer never called
			bookings.POST("/:job_id/no-show", bookingHandler.ReportNoShow)

			// POST /api/v1/bookings/:job_id/reopen - Reopen a cancelled or
			// timed-out booking
			bookings.POST("/:job_id/reopen", bookingHandler.ReopenBooking)

			// POST /api/v1/bookings/:job_id/resend-notifications - Re-trigger push fan-out
			bookings.POST("/:job_id/resend-notifications", bookingHandler.ResendNotifications)

			// POST /api/v1/bookings/:job_id/resend-sms - Re-trigger SMS fan-out
			bookings.POST("/:job_id/resend-sms", bookingHandler.ResendSMS)
		}
	}

	return r
}
