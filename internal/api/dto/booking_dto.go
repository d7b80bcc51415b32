package dto

import (
	"time"

	"github.com/tolkify/booking-be/internal/booking/domain"
)

// CreateBookingRequest is the booking form payload. Field validation is
// done by the lifecycle service so the error names the offending field.
type CreateBookingRequest struct {
	FromLanguageID   string   `json:"from_language_id"`
	Immediate        bool     `json:"immediate"`
	DueDate          string   `json:"due_date"`
	DueTime          string   `json:"due_time"`
	Duration         int      `json:"duration"`
	PhoneDelivery    bool     `json:"phone_delivery"`
	PhysicalDelivery bool     `json:"physical_delivery"`
	JobFor           []string `json:"job_for"`
	ContactEmail     string   `json:"contact_email"`
	Reference        string   `json:"reference"`
}

// UpdateBookingRequest is the admin edit payload.
type UpdateBookingRequest struct {
	Status          string `json:"status"`
	DueDate         string `json:"due_date"`
	DueTime         string `json:"due_time"`
	FromLanguageID  string `json:"from_language_id"`
	TranslatorID    string `json:"translator_id"`
	TranslatorEmail string `json:"translator_email"`
	AdminComments   string `json:"admin_comments"`
	Reference       string `json:"reference"`
	SessionTime     string `json:"session_time"`
}

// BookingResponse is the wire form of a job.
type BookingResponse struct {
	ID               string `json:"id"`
	CustomerID       string `json:"customer_id"`
	Status           string `json:"status"`
	FromLanguageID   string `json:"from_language_id"`
	Immediate        bool   `json:"immediate"`
	Duration         int    `json:"duration"`
	JobType          string `json:"job_type"`
	Gender           string `json:"gender,omitempty"`
	CertifiedLevel   string `json:"certified_level,omitempty"`
	PhoneDelivery    bool   `json:"phone_delivery"`
	PhysicalDelivery bool   `json:"physical_delivery"`
	Town             string `json:"town,omitempty"`
	Due              string `json:"due"`
	CreatedAt        string `json:"created_at"`
	WillExpireAt     string `json:"will_expire_at"`
	EndAt            string `json:"end_at,omitempty"`
	WithdrawAt       string `json:"withdraw_at,omitempty"`
	SessionTime      string `json:"session_time,omitempty"`
	ContactEmail     string `json:"contact_email,omitempty"`
	AdminComments    string `json:"admin_comments,omitempty"`
	Reference        string `json:"reference,omitempty"`
	ByAdmin          bool   `json:"by_admin"`
}

// BookingListResponse wraps a set of jobs.
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// AcceptBookingResponse is the wire form of a successful acceptance: the
// assigned booking, the translator's refreshed potential listing and, for
// the deep-link variant, a confirmation text.
type AcceptBookingResponse struct {
	Booking           BookingResponse   `json:"booking"`
	Message           string            `json:"message,omitempty"`
	PotentialBookings []BookingResponse `json:"potential_bookings"`
}

// NewAcceptBookingResponse converts an acceptance outcome to its wire form.
func NewAcceptBookingResponse(job *domain.Job, message string, potential []domain.Job) AcceptBookingResponse {
	return AcceptBookingResponse{
		Booking:           NewBookingResponse(job),
		Message:           message,
		PotentialBookings: NewBookingListResponse(potential).Bookings,
	}
}

// NewBookingResponse converts a job to its wire form.
func NewBookingResponse(job *domain.Job) BookingResponse {
	resp := BookingResponse{
		ID:               job.ID,
		CustomerID:       job.CustomerID,
		Status:           string(job.Status),
		FromLanguageID:   job.FromLanguageID,
		Immediate:        job.Immediate,
		Duration:         job.Duration,
		JobType:          string(job.JobType),
		Gender:           string(job.Gender),
		CertifiedLevel:   string(job.CertifiedLevel),
		PhoneDelivery:    job.PhoneDelivery,
		PhysicalDelivery: job.PhysicalDelivery,
		Town:             job.Town,
		Due:              job.Due.Format(time.RFC3339),
		CreatedAt:        job.CreatedAt.Format(time.RFC3339),
		WillExpireAt:     job.WillExpireAt.Format(time.RFC3339),
		SessionTime:      job.SessionTime,
		ContactEmail:     job.ContactEmail,
		AdminComments:    job.AdminComments,
		Reference:        job.Reference,
		ByAdmin:          job.ByAdmin,
	}
	if job.EndAt != nil {
		resp.EndAt = job.EndAt.Format(time.RFC3339)
	}
	if job.WithdrawAt != nil {
		resp.WithdrawAt = job.WithdrawAt.Format(time.RFC3339)
	}
	return resp
}

// NewBookingListResponse converts a set of jobs to its wire form.
func NewBookingListResponse(jobs []domain.Job) BookingListResponse {
	resp := BookingListResponse{Bookings: make([]BookingResponse, len(jobs))}
	for i := range jobs {
		resp.Bookings[i] = NewBookingResponse(&jobs[i])
	}
	return resp
}
