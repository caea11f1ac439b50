package usecases_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/domain/events"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// Mock InvitationRepository
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, inv *entities.RegistrationInvitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*entities.RegistrationInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RegistrationInvitation), args.Error(1)
}

func (m *MockInvitationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvitationRepository) List(ctx context.Context, limit, offset int) ([]*entities.RegistrationInvitation, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.RegistrationInvitation), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvitationRepository) GetExpiredUnused(ctx context.Context, limit int) ([]*entities.RegistrationInvitation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RegistrationInvitation), args.Error(1)
}

func (m *MockInvitationRepository) ExpireInvitations(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// Mock OnboardingRepository
type MockOnboardingRepository struct {
	mock.Mock
}

func (m *MockOnboardingRepository) GetByEmployee(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingApplication, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OnboardingApplication), args.Error(1)
}

func (m *MockOnboardingRepository) Status(ctx context.Context, employeeID uuid.UUID) (entities.OnboardingStatus, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).(entities.OnboardingStatus), args.Error(1)
}

func (m *MockOnboardingRepository) Save(ctx context.Context, app *entities.OnboardingApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockOnboardingRepository) ListByStatus(ctx context.Context, status entities.OnboardingStatus, limit, offset int) ([]*entities.OnboardingApplication, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.OnboardingApplication), args.Get(1).(int64), args.Error(2)
}

func (m *MockOnboardingRepository) StatusesByEmployees(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entities.OnboardingStatus, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]entities.OnboardingStatus), args.Error(1)
}

// memVisaDocuments keeps visa documents in memory with the same version
// check as the SQL repository.
type memVisaDocuments struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]map[entities.DocumentType]entities.VisaDocument
	upsertErr error
	upserts   int
}

func newMemVisaDocuments() *memVisaDocuments {
	return &memVisaDocuments{docs: map[uuid.UUID]map[entities.DocumentType]entities.VisaDocument{}}
}

func (r *memVisaDocuments) put(doc entities.VisaDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if r.docs[doc.EmployeeID] == nil {
		r.docs[doc.EmployeeID] = map[entities.DocumentType]entities.VisaDocument{}
	}
	r.docs[doc.EmployeeID][doc.Type] = doc
}

func (r *memVisaDocuments) stored(employeeID uuid.UUID, docType entities.DocumentType) (entities.VisaDocument, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[employeeID][docType]
	return d, ok
}

func (r *memVisaDocuments) ListByEmployee(_ context.Context, employeeID uuid.UUID) ([]*entities.VisaDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entities.VisaDocument{}
	for _, step := range entities.VisaSteps() {
		if d, ok := r.docs[employeeID][step.Type]; ok {
			cp := d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memVisaDocuments) GetByEmployeeAndType(_ context.Context, employeeID uuid.UUID, docType entities.DocumentType) (*entities.VisaDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[employeeID][docType]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &d, nil
}

func (r *memVisaDocuments) Upsert(_ context.Context, doc *entities.VisaDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	byType := r.docs[doc.EmployeeID]
	if byType == nil {
		byType = map[entities.DocumentType]entities.VisaDocument{}
		r.docs[doc.EmployeeID] = byType
	}
	current, exists := byType[doc.Type]
	if doc.ID == uuid.Nil {
		if exists {
			return domainerrors.ErrConflict
		}
		doc.ID = uuid.New()
		doc.Version = 1
	} else {
		if !exists || current.Version != doc.Version {
			return domainerrors.ErrConflict
		}
		doc.Version++
	}
	byType[doc.Type] = *doc
	return nil
}

func (r *memVisaDocuments) ListEmployeesWithDocuments(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.docs))
	for id, byType := range r.docs {
		if len(byType) > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}
