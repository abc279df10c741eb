package service

import (
	"context"
	"sync"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

type fakeProfiles struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byID: make(map[uuid.UUID]*model.Profile)}
}

func (f *fakeProfiles) Create(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == p.Email {
			return repository.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfiles) List(_ context.Context, params datatable.Params) ([]model.Profile, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []model.Profile
	for _, p := range f.byID {
		list = append(list, *p)
	}
	return list, len(list), nil
}

func (f *fakeProfiles) Update(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.PasswordHash = hash
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	ttl     map[string]time.Duration
	cutoffs map[uuid.UUID]time.Time
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{
		ttl:     make(map[string]time.Duration),
		cutoffs: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeRevocations) RevokeUser(_ context.Context, userID uuid.UUID, at time.Time, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs[userID] = at
	return nil
}

func (f *fakeRevocations) RevokedBefore(_ context.Context, userID uuid.UUID) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cutoffs[userID], nil
}

func (f *fakeRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttl[jti] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ttl[jti]
	return ok, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeNotifier) Enqueue(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Template
	}
	return out
}

type fakeFeed struct {
	mu     sync.Mutex
	events []model.FeedEvent
}

func (f *fakeFeed) Publish(_ context.Context, ev model.FeedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) { f.calls++ }

type fakeIntakes struct {
	byID map[uuid.UUID]*model.Intake
	open []model.Intake
}

func newFakeIntakes(intakes ...*model.Intake) *fakeIntakes {
	f := &fakeIntakes{byID: make(map[uuid.UUID]*model.Intake)}
	for _, in := range intakes {
		f.byID[in.ID] = in
	}
	return f
}

func (f *fakeIntakes) GetByID(_ context.Context, id uuid.UUID) (*model.Intake, error) {
	in, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (f *fakeIntakes) List(context.Context, datatable.Params) ([]model.Intake, int, error) {
	return nil, 0, nil
}

func (f *fakeIntakes) ListOpenByCourse(context.Context, uuid.UUID, time.Time) ([]model.Intake, error) {
	return f.open, nil
}

func (f *fakeIntakes) Create(_ context.Context, in *model.Intake) error {
	in.ID = uuid.New()
	f.byID[in.ID] = in
	return nil
}

func (f *fakeIntakes) Update(_ context.Context, in *model.Intake) error {
	if _, ok := f.byID[in.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[in.ID] = in
	return nil
}

func (f *fakeIntakes) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

// fakeEnrollments keeps enrollment details in memory and applies the state
// machine on Transition without touching seats or payments.
type fakeEnrollments struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]*model.EnrollmentDetail
	completable []uuid.UUID
	reminders   []model.EnrollmentDetail
	reminded    []uuid.UUID
	lastParams  datatable.Params
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{byID: make(map[uuid.UUID]*model.EnrollmentDetail)}
}

func (f *fakeEnrollments) add(userID uuid.UUID, status model.EnrollmentStatus) *model.EnrollmentDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &model.EnrollmentDetail{
		Enrollment: model.Enrollment{
			ID:       uuid.New(),
			IntakeID: uuid.New(),
			UserID:   userID,
			Status:   status,
		},
		CourseTitle: "Dementia Care Essentials",
		UserName:    "Ada Learner",
		UserEmail:   "ada@example.com",
	}
	f.byID[d.ID] = d
	return d
}

func (f *fakeEnrollments) CreateOrReopen(_ context.Context, e *model.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.byID {
		if d.IntakeID == e.IntakeID && d.UserID == e.UserID {
			if d.Status != model.EnrollmentCancelled {
				return model.ErrAlreadyEnrolled
			}
			d.Status = model.EnrollmentRequested
			d.Note = e.Note
			e.ID = d.ID
			e.Status = d.Status
			return nil
		}
	}
	e.ID = uuid.New()
	e.Status = model.EnrollmentRequested
	f.byID[e.ID] = &model.EnrollmentDetail{
		Enrollment:  *e,
		CourseTitle: "Dementia Care Essentials",
		UserName:    "Ada Learner",
		UserEmail:   "ada@example.com",
	}
	return nil
}

func (f *fakeEnrollments) GetDetail(_ context.Context, id uuid.UUID) (*model.EnrollmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeEnrollments) List(_ context.Context, params datatable.Params) ([]model.EnrollmentDetail, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastParams = params
	return []model.EnrollmentDetail{}, 0, nil
}

func (f *fakeEnrollments) Transition(_ context.Context, in repository.TransitionInput) (*model.TransitionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[in.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Check != nil {
		e := d.Enrollment
		if err := in.Check(&e); err != nil {
			return nil, err
		}
	}
	if err := model.ValidateTransition(d.Status, in.To); err != nil {
		return nil, err
	}
	from := d.Status
	d.Status = in.To
	d.StatusChangedAt = in.At
	if in.AdminNote != "" {
		d.AdminNote = in.AdminNote
	}
	return &model.TransitionResult{Enrollment: *d, From: from, To: in.To}, nil
}

func (f *fakeEnrollments) ListCompletable(context.Context, time.Time) ([]uuid.UUID, error) {
	return f.completable, nil
}

func (f *fakeEnrollments) ListReminderDue(context.Context, time.Time, time.Time) ([]model.EnrollmentDetail, error) {
	return f.reminders, nil
}

func (f *fakeEnrollments) MarkReminderSent(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeContacts struct {
	byID map[uuid.UUID]*model.ContactMessage
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{byID: make(map[uuid.UUID]*model.ContactMessage)}
}

func (f *fakeContacts) Create(_ context.Context, m *model.ContactMessage) error {
	m.ID = uuid.New()
	m.Status = model.ContactNew
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeContacts) GetByID(_ context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeContacts) List(context.Context, datatable.Params) ([]model.ContactMessage, int, error) {
	return nil, 0, nil
}

func (f *fakeContacts) SaveReply(_ context.Context, id uuid.UUID, body string, by uuid.UUID, at time.Time) (*model.ContactMessage, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Reply = body
	m.RepliedBy = &by
	m.RepliedAt = &at
	m.Status = model.ContactReplied
	cp := *m
	return &cp, nil
}

func (f *fakeContacts) SetStatus(_ context.Context, id uuid.UUID, status model.ContactStatus) (*model.ContactMessage, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Status = status
	cp := *m
	return &cp, nil
}
