package booking

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
	"github.com/tolkify/booking-be/internal/schedule"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeStore is an in-memory JobStore. AcceptJob takes the mutex for the
// whole status check and flip, mirroring the transactional guard of the
// real store.
type fakeStore struct {
	mu          sync.Mutex
	jobs        map[string]*domain.Job
	assignments map[string]*domain.TranslatorAssignment
	blacklist   map[string]bool // customerID+"|"+translatorID
	townMatch   map[string]bool // customerID+"|"+translatorID
	busy        map[string]bool // translatorID
	overrun     []domain.Job
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:        map[string]*domain.Job{},
		assignments: map[string]*domain.TranslatorAssignment{},
		blacklist:   map[string]bool{},
		townMatch:   map[string]bool{},
		busy:        map[string]bool{},
	}
}

func (f *fakeStore) FindJob(_ context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) CreateJob(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateJob(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeStore) CloneJob(_ context.Context, src *domain.Job, newID string, now, expireAt time.Time, adminComments string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *src
	cp.ID = newID
	cp.Status = domain.StatusPending
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.WillExpireAt = expireAt
	cp.AdminComments = adminComments
	cp.EndAt = nil
	cp.WithdrawAt = nil
	cp.SessionTime = ""
	f.jobs[newID] = &cp
	return nil
}

func (f *fakeStore) AcceptJob(_ context.Context, jobID, translatorID, assignmentID string, now time.Time) (*domain.TranslatorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if job.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyAccepted
	}
	job.Status = domain.StatusAssigned
	job.UpdatedAt = now
	a := &domain.TranslatorAssignment{
		ID:           assignmentID,
		JobID:        jobID,
		TranslatorID: translatorID,
		CreatedAt:    now,
	}
	f.assignments[assignmentID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeStore) ActiveAssignment(_ context.Context, jobID string) (*domain.TranslatorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.JobID == jobID && a.CancelledAt == nil {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LatestCompletedAssignment(_ context.Context, jobID string) (*domain.TranslatorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.TranslatorAssignment
	for _, a := range f.assignments {
		if a.JobID != jobID || a.CompletedAt == nil {
			continue
		}
		if latest == nil || a.CompletedAt.After(*latest.CompletedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeStore) CreateAssignment(_ context.Context, a *domain.TranslatorAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.assignments[a.ID] = &cp
	return nil
}

func (f *fakeStore) CancelAssignment(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	a.CancelledAt = &at
	return nil
}

func (f *fakeStore) CompleteAssignment(_ context.Context, id, completedBy string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	a.CompletedAt = &at
	a.CompletedBy = completedBy
	return nil
}

func (f *fakeStore) PendingMatches(_ context.Context, filter MatchFilter) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Job
	for _, job := range f.jobs {
		if job.Status != domain.StatusPending || job.JobType != filter.JobType {
			continue
		}
		if f.blacklist[job.CustomerID+"|"+filter.TranslatorID] {
			continue
		}
		if !contains(filter.Languages, job.FromLanguageID) {
			continue
		}
		if job.Gender != domain.GenderAny && job.Gender != filter.Gender {
			continue
		}
		if !containsLevel(filter.Levels, job.CertifiedLevel) {
			continue
		}
		out = append(out, *job)
	}
	return out, nil
}

func (f *fakeStore) TranslatorBusyAt(_ context.Context, translatorID string, _ time.Time, _ int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy[translatorID], nil
}

func (f *fakeStore) TownMatch(_ context.Context, customerID, translatorID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.townMatch[customerID+"|"+translatorID], nil
}

func (f *fakeStore) ExpiredPending(_ context.Context, now time.Time) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Job
	for _, job := range f.jobs {
		if job.Status == domain.StatusPending && job.WillExpireAt.Before(now) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeStore) OverrunJobs(_ context.Context) ([]domain.Job, error) {
	return f.overrun, nil
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

func containsLevel(ls []domain.CertifiedLevel, want domain.CertifiedLevel) bool {
	for _, l := range ls {
		if l == want {
			return true
		}
	}
	return false
}

// fakeDirectory is an in-memory UserDirectory.
type fakeDirectory struct {
	users     map[string]*domain.User
	profiles  map[string]*domain.TranslatorProfile
	prefs     map[string]notification.Prefs
	blacklist map[string]bool // customerID+"|"+translatorID
	languages map[string]string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users:     map[string]*domain.User{},
		profiles:  map[string]*domain.TranslatorProfile{},
		prefs:     map[string]notification.Prefs{},
		blacklist: map[string]bool{},
		languages: map[string]string{"lang-fr": "French", "lang-es": "Spanish"},
	}
}

func (f *fakeDirectory) User(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDirectory) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeDirectory) TranslatorProfile(_ context.Context, id string) (*domain.TranslatorProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDirectory) NotificationPrefs(_ context.Context, userID string) (notification.Prefs, error) {
	return f.prefs[userID], nil
}

func (f *fakeDirectory) Blacklisted(_ context.Context, customerID, translatorID string) (bool, error) {
	return f.blacklist[customerID+"|"+translatorID], nil
}

func (f *fakeDirectory) LanguageName(_ context.Context, languageID string) (string, error) {
	if name, ok := f.languages[languageID]; ok {
		return name, nil
	}
	return languageID, nil
}

func (f *fakeDirectory) EachTranslator(_ context.Context, fn func(p *domain.TranslatorProfile) error) error {
	for _, p := range f.profiles {
		cp := *p
		if err := fn(&cp); err != nil {
			return err
		}
	}
	return nil
}

func newTestService(store *fakeStore, dir *fakeDirectory, now time.Time) *Service {
	return NewService(ServiceConfig{
		Store:  store,
		Users:  dir,
		Sched:  schedule.New(fixedClock{now}, schedule.DefaultHours),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func addCustomer(dir *fakeDirectory, id string, tier domain.ConsumerTier) {
	dir.users[id] = &domain.User{
		ID:           id,
		Type:         domain.UserCustomer,
		Name:         "Customer " + id,
		Email:        id + "@customers.test",
		ConsumerTier: tier,
		City:         "Uppsala",
		Enabled:      true,
	}
}

func addTranslator(dir *fakeDirectory, id string, p domain.TranslatorProfile) {
	dir.users[id] = &domain.User{
		ID:      id,
		Type:    domain.UserTranslator,
		Name:    "Translator " + id,
		Email:   id + "@translators.test",
		Phone:   "+4670000" + id,
		Enabled: true,
	}
	p.UserID = id
	if p.Phone == "" {
		p.Phone = "+4670000" + id
	}
	dir.profiles[id] = &p
}

func addAdmin(dir *fakeDirectory, id string) {
	dir.users[id] = &domain.User{
		ID:      id,
		Type:    domain.UserAdmin,
		Name:    "Admin " + id,
		Email:   id + "@office.test",
		Enabled: true,
	}
}

func pendingJob(store *fakeStore, id, customerID string, due, created time.Time) *domain.Job {
	job := &domain.Job{
		ID:             id,
		CustomerID:     customerID,
		Status:         domain.StatusPending,
		FromLanguageID: "lang-fr",
		Duration:       60,
		JobType:        domain.JobTypePaid,
		PhoneDelivery:  true,
		Due:            due,
		CreatedAt:      created,
		UpdatedAt:      created,
		WillExpireAt:   created.Add(90 * time.Minute),
	}
	store.jobs[id] = job
	return job
}
