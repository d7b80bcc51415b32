package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func professionalProfile(langs ...string) domain.TranslatorProfile {
	return domain.TranslatorProfile{
		Type:           domain.TranslatorProfessional,
		Languages:      langs,
		Certifications: []domain.Certification{domain.CertYes},
	}
}

func TestAudience(t *testing.T) {
	tests := []struct {
		name       string
		jobFor     []string
		wantGender domain.Gender
		wantLevel  domain.CertifiedLevel
	}{
		{"empty", nil, domain.GenderAny, domain.CertifiedNone},
		{"male only", []string{"male"}, domain.GenderMale, domain.CertifiedNone},
		{"female certified", []string{"female", "certified"}, domain.GenderFemale, domain.CertifiedYes},
		{"normal", []string{"normal"}, domain.GenderAny, domain.CertifiedNormal},
		{"normal and certified", []string{"normal", "certified"}, domain.GenderAny, domain.CertifiedBoth},
		{"normal and law", []string{"normal", "certified_in_law"}, domain.GenderAny, domain.CertifiedNLaw},
		{"normal and health", []string{"normal", "certified_in_health"}, domain.GenderAny, domain.CertifiedNHealth},
		{"legacy health spelling", []string{"certified_in_helth"}, domain.GenderAny, domain.CertifiedHealth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gender, level := Audience(tt.jobFor)
			assert.Equal(t, tt.wantGender, gender)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateBookingInput
		wantField string
	}{
		{
			name:      "missing language",
			input:     CreateBookingInput{Duration: 30},
			wantField: "from_language_id",
		},
		{
			name:      "scheduled missing due date",
			input:     CreateBookingInput{FromLanguageID: "lang-fr", DueTime: "10:00", Duration: 30, PhoneDelivery: true},
			wantField: "due_date",
		},
		{
			name:      "scheduled missing due time",
			input:     CreateBookingInput{FromLanguageID: "lang-fr", DueDate: "2026-04-01", Duration: 30, PhoneDelivery: true},
			wantField: "due_time",
		},
		{
			name:      "scheduled no delivery channel",
			input:     CreateBookingInput{FromLanguageID: "lang-fr", DueDate: "2026-04-01", DueTime: "10:00", Duration: 30},
			wantField: "delivery",
		},
		{
			name:      "scheduled missing duration",
			input:     CreateBookingInput{FromLanguageID: "lang-fr", DueDate: "2026-04-01", DueTime: "10:00", PhoneDelivery: true},
			wantField: "duration",
		},
		{
			name:      "immediate missing duration",
			input:     CreateBookingInput{FromLanguageID: "lang-fr", Immediate: true},
			wantField: "duration",
		},
		{
			name:      "due in the past",
			input:     CreateBookingInput{FromLanguageID: "lang-fr", DueDate: "2026-03-01", DueTime: "10:00", Duration: 30, PhoneDelivery: true},
			wantField: "due",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			dir := newFakeDirectory()
			addCustomer(dir, "c1", domain.ConsumerPaid)
			svc := newTestService(store, dir, testNow)

			_, _, err := svc.CreateBooking(context.Background(), "c1", tt.input)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Empty(t, store.jobs)
		})
	}
}

func TestCreateBookingForbiddenForTranslator(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.CreateBooking(context.Background(), "t1", CreateBookingInput{
		FromLanguageID: "lang-fr", Immediate: true, Duration: 30,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateBookingImmediate(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerRWS)
	svc := newTestService(store, dir, testNow)

	job, effects, err := svc.CreateBooking(context.Background(), "c1", CreateBookingInput{
		FromLanguageID:   "lang-fr",
		Immediate:        true,
		Duration:         30,
		PhysicalDelivery: true, // ignored for immediate bookings
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Equal(t, testNow.Add(5*time.Minute), job.Due)
	assert.True(t, job.PhoneDelivery)
	assert.False(t, job.PhysicalDelivery)
	assert.Equal(t, domain.JobTypeRWS, job.JobType)
	// A five minute lead keeps the expiry at the start time itself.
	assert.Equal(t, job.Due, job.WillExpireAt)

	require.Len(t, effects.Intents, 1)
	assert.Equal(t, notification.ChannelEmail, effects.Intents[0].Channel)
	assert.Equal(t, notification.TemplateJobCreated, effects.Intents[0].Template)
	require.Len(t, effects.Events, 1)
	assert.Equal(t, EventJobCreated, effects.Events[0].Type)
	assert.Equal(t, "French", effects.Events[0].Payload.Language)
}

func TestCreateBookingScheduled(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerNGO)
	svc := newTestService(store, dir, testNow)

	job, _, err := svc.CreateBooking(context.Background(), "c1", CreateBookingInput{
		FromLanguageID:   "lang-es",
		DueDate:          "2026-03-11",
		DueTime:          "14:30",
		Duration:         90,
		PhysicalDelivery: true,
		JobFor:           []string{"female", "normal", "certified"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobTypeUnpaid, job.JobType)
	assert.Equal(t, domain.GenderFemale, job.Gender)
	assert.Equal(t, domain.CertifiedBoth, job.CertifiedLevel)
	assert.Equal(t, "Uppsala", job.Town)
	// 26.5 hours out: the booking is offered up to its start time.
	assert.Equal(t, job.Due, job.WillExpireAt)
	assert.Equal(t, job, storeJob(t, store, job.ID))
}

func storeJob(t *testing.T, store *fakeStore, id string) *domain.Job {
	t.Helper()
	job, err := store.FindJob(context.Background(), id)
	require.NoError(t, err)
	return job
}

func TestAcceptJobConcurrent(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	addTranslator(dir, "t2", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []string{"t1", "t2"} {
		wg.Add(1)
		go func(translatorID string) {
			defer wg.Done()
			_, _, err := svc.AcceptJob(context.Background(), "j1", translatorID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyAccepted)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, domain.StatusAssigned, storeJob(t, store, "j1").Status)
}

func TestAcceptJobBusyTranslator(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	store.busy["t1"] = true
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.AcceptJob(context.Background(), "j1", "t1")
	assert.ErrorIs(t, err, domain.ErrTranslatorBooked)
	assert.Equal(t, domain.StatusPending, storeJob(t, store, "j1").Status)
}

func TestAcceptJobRefreshesPotentialList(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	pendingJob(store, "j2", "c1", testNow.Add(72*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	res, _, err := svc.AcceptJob(context.Background(), "j1", "t1")
	require.NoError(t, err)

	assert.Equal(t, "j1", res.Job.ID)
	assert.Equal(t, domain.StatusAssigned, res.Job.Status)
	// The accepted job is no longer in the refreshed listing.
	require.Len(t, res.PotentialJobs, 1)
	assert.Equal(t, "j2", res.PotentialJobs[0].ID)
	assert.Empty(t, res.Confirmation)
}

func TestAcceptJobWithIDPushesCustomer(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	res, effects, err := svc.AcceptJobWithID(context.Background(), "j1", "t1")
	require.NoError(t, err)

	require.Len(t, effects.Intents, 2)
	assert.Equal(t, notification.ChannelEmail, effects.Intents[0].Channel)
	assert.Equal(t, notification.ChannelPush, effects.Intents[1].Channel)
	assert.Equal(t, "c1", effects.Intents[1].UserID)
	assert.Equal(t, notification.KindJobAccepted, effects.Intents[1].Kind)
	assert.Contains(t, res.Confirmation, "You have accepted")
}

func TestAcceptJobWithIDLostRace(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	addTranslator(dir, "t2", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.AcceptJobWithID(context.Background(), "j1", "t1")
	require.NoError(t, err)

	_, _, err = svc.AcceptJobWithID(context.Background(), "j1", "t2")
	require.ErrorIs(t, err, domain.ErrAlreadyAccepted)

	// The loser gets the explanation text, not a bare sentinel.
	var conflict *AcceptConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "already been accepted by another translator")
}

func assignJob(store *fakeStore, jobID, translatorID string, at time.Time) {
	store.jobs[jobID].Status = domain.StatusAssigned
	store.assignments["a-"+jobID] = &domain.TranslatorAssignment{
		ID: "a-" + jobID, JobID: jobID, TranslatorID: translatorID, CreatedAt: at,
	}
}

func TestCancelJobByCustomer(t *testing.T) {
	tests := []struct {
		name       string
		dueIn      time.Duration
		wantStatus domain.JobStatus
	}{
		{"outside the window", 48 * time.Hour, domain.StatusWithdrawBefore24},
		{"inside the window", 23 * time.Hour, domain.StatusWithdrawAfter24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			dir := newFakeDirectory()
			addCustomer(dir, "c1", domain.ConsumerPaid)
			addTranslator(dir, "t1", professionalProfile("lang-fr"))
			pendingJob(store, "j1", "c1", testNow.Add(tt.dueIn), testNow.Add(-time.Hour))
			assignJob(store, "j1", "t1", testNow.Add(-time.Hour))
			svc := newTestService(store, dir, testNow)

			job, effects, err := svc.CancelJob(context.Background(), "j1", "c1")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, job.Status)
			require.NotNil(t, job.WithdrawAt)
			assert.Equal(t, testNow, *job.WithdrawAt)

			// The assignment is soft-cancelled and the translator told.
			assert.NotNil(t, store.assignments["a-j1"].CancelledAt)
			require.Len(t, effects.Intents, 1)
			assert.Equal(t, "t1", effects.Intents[0].UserID)
			assert.Equal(t, notification.KindJobCancelled, effects.Intents[0].Kind)
			require.Len(t, effects.Events, 1)
			assert.Equal(t, EventJobCancelled, effects.Events[0].Type)
		})
	}
}

func TestCancelJobByTranslator(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(72*time.Hour), testNow.Add(-time.Hour))
	assignJob(store, "j1", "t1", testNow.Add(-time.Hour))
	svc := newTestService(store, dir, testNow)

	job, effects, err := svc.CancelJob(context.Background(), "j1", "t1")
	require.NoError(t, err)

	// The booking goes back on offer with a fresh expiry window.
	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Equal(t, testNow, job.CreatedAt)
	assert.Equal(t, job.Due, job.WillExpireAt) // 72h out -> offered until start
	assert.NotNil(t, store.assignments["a-j1"].CancelledAt)

	require.Len(t, effects.Intents, 1)
	assert.Equal(t, "c1", effects.Intents[0].UserID)
	require.Len(t, effects.Events, 1)
	assert.Equal(t, EventJobReopened, effects.Events[0].Type)
	assert.Equal(t, "t1", effects.Events[0].ExcludeTranslator)
}

func TestCancelJobByTranslatorTooLate(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(12*time.Hour), testNow.Add(-time.Hour))
	assignJob(store, "j1", "t1", testNow.Add(-time.Hour))
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.CancelJob(context.Background(), "j1", "t1")
	assert.ErrorIs(t, err, domain.ErrTooLateToCancel)
	assert.Equal(t, domain.StatusAssigned, storeJob(t, store, "j1").Status)
	assert.Nil(t, store.assignments["a-j1"].CancelledAt)
}

func TestEndJob(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(-90*time.Minute), testNow.Add(-3*time.Hour))
	assignJob(store, "j1", "t1", testNow.Add(-2*time.Hour))
	store.jobs["j1"].Status = domain.StatusStarted
	svc := newTestService(store, dir, testNow)

	job, effects, err := svc.EndJob(context.Background(), "j1", "t1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, job.Status)
	assert.Equal(t, "01:30:00", job.SessionTime)
	require.NotNil(t, job.EndAt)

	a := store.assignments["a-j1"]
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, "t1", a.CompletedBy)

	// Invoice email for the customer, salary email for the translator.
	require.Len(t, effects.Intents, 2)
	assert.Equal(t, "c1", effects.Intents[0].UserID)
	assert.Equal(t, "invoice", effects.Intents[0].Data["for_text"])
	assert.Equal(t, "t1", effects.Intents[1].UserID)
	assert.Equal(t, "salary", effects.Intents[1].Data["for_text"])
	require.Len(t, effects.Events, 1)
	assert.Equal(t, EventSessionEnded, effects.Events[0].Type)
	assert.Equal(t, "t1", effects.Events[0].SessionWith)
}

func TestEndJobNotStartedIsNoop(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	pendingJob(store, "j1", "c1", testNow.Add(time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	job, effects, err := svc.EndJob(context.Background(), "j1", "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Empty(t, effects.Intents)
	assert.Empty(t, effects.Events)
}

func TestCustomerNotCall(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(-10*time.Minute), testNow.Add(-2*time.Hour))
	assignJob(store, "j1", "t1", testNow.Add(-time.Hour))
	svc := newTestService(store, dir, testNow)

	job, _, err := svc.CustomerNotCall(context.Background(), "j1", "t1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNotCarriedOutCustomer, job.Status)
	require.NotNil(t, job.EndAt)

	// The translator is still paid for the slot.
	a := store.assignments["a-j1"]
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, "t1", a.CompletedBy)
}

func TestCustomerNotCallOnFinishedJobIsNoop(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	pendingJob(store, "j1", "c1", testNow.Add(-time.Hour), testNow.Add(-2*time.Hour))
	store.jobs["j1"].Status = domain.StatusCompleted
	svc := newTestService(store, dir, testNow)

	job, effects, err := svc.CustomerNotCall(context.Background(), "j1", "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, job.Status)
	assert.Empty(t, effects.Intents)
}

func TestExpireOverdue(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	expired := pendingJob(store, "j1", "c1", testNow.Add(time.Hour), testNow.Add(-3*time.Hour))
	expired.WillExpireAt = testNow.Add(-time.Minute)
	fresh := pendingJob(store, "j2", "c1", testNow.Add(time.Hour), testNow)
	fresh.WillExpireAt = testNow.Add(time.Hour)
	svc := newTestService(store, dir, testNow)

	count, effects, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, domain.StatusTimedOut, storeJob(t, store, "j1").Status)
	assert.Equal(t, domain.StatusPending, storeJob(t, store, "j2").Status)
	require.Len(t, effects.Intents, 1)
	assert.Equal(t, "c1", effects.Intents[0].UserID)
	assert.Equal(t, notification.KindJobExpired, effects.Intents[0].Kind)
}

func TestUpdateJobForbiddenForNonAdmin(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.UpdateJob(context.Background(), "c1", "j1", AdminUpdate{Status: domain.StatusTimedOut})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateJobIgnoresTransitionOutsideTable(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	job := pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	job.Status = domain.StatusCompleted
	svc := newTestService(store, dir, testNow)

	updated, effects, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{
		Status:        domain.StatusPending,
		AdminComments: "customer called in",
	})
	require.NoError(t, err)

	// The status edit is dropped; the metadata still lands.
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "customer called in", updated.AdminComments)
	assert.Empty(t, effects.Intents)
	assert.Empty(t, effects.Events)
}

func TestUpdateJobSameStatusIsNoOp(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	updated, effects, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{
		Status:        domain.StatusPending,
		AdminComments: "verified with the customer",
		Reference:     "case-4711",
	})
	require.NoError(t, err)

	// Re-submitting the current status performs no transition and tells
	// nobody; only the metadata lands.
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, "verified with the customer", updated.AdminComments)
	assert.Equal(t, "case-4711", updated.Reference)
	assert.Empty(t, effects.Intents)
	assert.Empty(t, effects.Events)
	assert.Equal(t, domain.StatusPending, storeJob(t, store, "j1").Status)
}

func TestUpdateJobRequiresComment(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	job := pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	job.Status = domain.StatusCompleted
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{Status: domain.StatusTimedOut})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "admin_comments", verr.Field)
	assert.Equal(t, domain.StatusCompleted, storeJob(t, store, "j1").Status)
}

func TestUpdateJobReopensTimedOut(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	job := pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow.Add(-48*time.Hour))
	job.Status = domain.StatusTimedOut
	svc := newTestService(store, dir, testNow)

	updated, effects, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{
		Status:        domain.StatusPending,
		AdminComments: "reopening on customer request",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, testNow, updated.CreatedAt)
	assert.Equal(t, updated.Due, updated.WillExpireAt)

	require.Len(t, effects.Intents, 1)
	assert.Equal(t, notification.TemplateJobReopenedCustomer, effects.Intents[0].Template)
	require.Len(t, effects.Events, 1)
	assert.Equal(t, EventJobReopened, effects.Events[0].Type)
}

func TestUpdateJobClosingStartedSessionNeedsSessionTime(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	job := pendingJob(store, "j1", "c1", testNow.Add(time.Hour), testNow.Add(-time.Hour))
	job.Status = domain.StatusStarted
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{
		Status:        domain.StatusCompleted,
		AdminComments: "closed manually",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "session_time", verr.Field)
}

func TestUpdateJobReassignsTranslator(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	addTranslator(dir, "t2", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	assignJob(store, "j1", "t1", testNow.Add(-time.Hour))
	svc := newTestService(store, dir, testNow)

	_, effects, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{
		TranslatorEmail: "t2@translators.test",
	})
	require.NoError(t, err)

	assert.NotNil(t, store.assignments["a-j1"].CancelledAt)
	current, err := store.ActiveAssignment(context.Background(), "j1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "t2", current.TranslatorID)

	// Old translator, customer and new translator are all mailed.
	templates := make([]string, 0, len(effects.Intents))
	for _, in := range effects.Intents {
		templates = append(templates, in.Template)
	}
	assert.ElementsMatch(t, []string{
		notification.TemplateChangedTranslatorOld,
		notification.TemplateChangedTranslatorCustomer,
		notification.TemplateChangedTranslatorNew,
	}, templates)
}

func TestUpdateJobLateEditSuppressesNotifications(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addAdmin(dir, "a1")
	pendingJob(store, "j1", "c1", testNow.Add(-time.Hour), testNow.Add(-3*time.Hour))
	svc := newTestService(store, dir, testNow)

	updated, effects, err := svc.UpdateJob(context.Background(), "a1", "j1", AdminUpdate{
		FromLanguageID: "lang-es",
	})
	require.NoError(t, err)

	assert.Equal(t, "lang-es", updated.FromLanguageID)
	assert.Equal(t, "lang-es", storeJob(t, store, "j1").FromLanguageID)
	assert.Empty(t, effects.Intents)
	assert.Empty(t, effects.Events)
}

func TestReopenTimedOutClonesJob(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	job := pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow.Add(-48*time.Hour))
	job.Status = domain.StatusTimedOut
	svc := newTestService(store, dir, testNow)

	reopened, effects, err := svc.Reopen(context.Background(), "j1", "c1")
	require.NoError(t, err)

	assert.NotEqual(t, "j1", reopened.ID)
	assert.Equal(t, domain.StatusPending, reopened.Status)
	assert.Contains(t, reopened.AdminComments, "reopening of booking #j1")
	// The timed-out original stays on record.
	assert.Equal(t, domain.StatusTimedOut, storeJob(t, store, "j1").Status)

	require.Len(t, effects.Events, 1)
	assert.Equal(t, EventJobReopened, effects.Events[0].Type)
	assert.Equal(t, reopened.ID, effects.Events[0].JobID)
}

func TestReopenResetsInPlace(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	job := pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow.Add(-time.Hour))
	job.Status = domain.StatusWithdrawBefore24
	withdraw := testNow.Add(-time.Minute)
	job.WithdrawAt = &withdraw
	svc := newTestService(store, dir, testNow)

	reopened, _, err := svc.Reopen(context.Background(), "j1", "c1")
	require.NoError(t, err)

	assert.Equal(t, "j1", reopened.ID)
	assert.Equal(t, domain.StatusPending, reopened.Status)
	assert.Nil(t, reopened.WithdrawAt)
	assert.Equal(t, testNow, reopened.CreatedAt)
}

func TestReopenForbiddenForStranger(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addCustomer(dir, "c2", domain.ConsumerPaid)
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	_, _, err := svc.Reopen(context.Background(), "j1", "c2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFanoutIntents(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	optedOut := professionalProfile("lang-fr")
	optedOut.OptOutAll = true
	addTranslator(dir, "t2", optedOut)
	addTranslator(dir, "t3", professionalProfile("lang-es")) // wrong language
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	intents, err := svc.FanoutIntents(context.Background(), JobEvent{Type: EventJobCreated, JobID: "j1"})
	require.NoError(t, err)

	require.Len(t, intents, 1)
	assert.Equal(t, "t1", intents[0].UserID)
	assert.Equal(t, notification.KindSuitableJob, intents[0].Kind)
	assert.Contains(t, intents[0].Message, "French")
}

func TestFanoutSkipsExcludedTranslator(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	intents, err := svc.FanoutIntents(context.Background(), JobEvent{
		Type: EventJobReopened, JobID: "j1", ExcludeTranslator: "t1",
	})
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestFanoutSkipsNonPendingJob(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	job := pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	job.Status = domain.StatusAssigned
	svc := newTestService(store, dir, testNow)

	intents, err := svc.FanoutIntents(context.Background(), JobEvent{Type: EventJobCreated, JobID: "j1"})
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestSMSFanout(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	addCustomer(dir, "c1", domain.ConsumerPaid)
	addTranslator(dir, "t1", professionalProfile("lang-fr"))
	pendingJob(store, "j1", "c1", testNow.Add(48*time.Hour), testNow)
	svc := newTestService(store, dir, testNow)

	intents, err := svc.SMSFanout(context.Background(), "j1")
	require.NoError(t, err)

	require.Len(t, intents, 1)
	assert.Equal(t, notification.ChannelSMS, intents[0].Channel)
	assert.NotEmpty(t, intents[0].Phone)
	assert.Contains(t, intents[0].Message, "phone interpretation")
}
