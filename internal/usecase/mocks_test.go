package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/cache"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// MockProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByManagerID(ctx context.Context, managerID string) ([]*entity.Profile, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Profile), args.Error(1)
}

// MockListingCache
type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) Get(ctx context.Context, key string) (*cache.Listing, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.Listing), args.Error(1)
}

func (m *MockListingCache) Set(ctx context.Context, key string, listing cache.Listing) error {
	args := m.Called(ctx, key, listing)
	return args.Error(0)
}

func (m *MockListingCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockAddressDirectory
type MockAddressDirectory struct {
	mock.Mock
}

func (m *MockAddressDirectory) Remember(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

// MockTracker
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(leads []*entity.Lead) {
	m.Called(leads)
}

var (
	fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	adminProfile   = entity.Profile{ID: "a1", Role: entity.RoleAdmin}
	managerProfile = entity.Profile{ID: "m1", Role: entity.RoleManager}
	salesProfile   = entity.Profile{ID: "s1", Role: entity.RoleSales, ManagerID: "m1"}
)

const leadID = "6f1c2a0e-3b7d-4c1e-9f2a-8d5e4b3c2a10"

func clock() time.Time { return fixedNow }

func reports() []*entity.Profile {
	return []*entity.Profile{
		{ID: "s1", Role: entity.RoleSales, ManagerID: "m1"},
		{ID: "s2", Role: entity.RoleSales, ManagerID: "m1"},
	}
}

func everyone() []*entity.Profile {
	return []*entity.Profile{
		{ID: "a1", Role: entity.RoleAdmin},
		{ID: "m1", Role: entity.RoleManager},
		{ID: "s1", Role: entity.RoleSales, ManagerID: "m1"},
		{ID: "s2", Role: entity.RoleSales, ManagerID: "m1"},
		{ID: "s3", Role: "SALES", ManagerID: "m2"},
	}
}

func validDraft() entity.LeadDraft {
	return entity.LeadDraft{
		InquiryDate:     "2024-05-09",
		ClientName:      "Acme Buyer",
		Phone:           "+971500000000",
		Source:          "Website",
		Channel:         "Inbound",
		ProductCategory: "Laptops",
		EnquiringAbout:  "Bulk order",
	}
}

func storedLead(status entity.LeadStatus, owner string) *entity.Lead {
	return &entity.Lead{
		ID:              leadID,
		CreatedAt:       fixedNow.Add(-48 * time.Hour),
		InquiryDate:     "2024-05-08",
		ClientName:      "Acme Buyer",
		Phone:           "+971500000000",
		Source:          "Website",
		Channel:         "Inbound",
		ProductCategory: "Laptops",
		EnquiringAbout:  "Bulk order",
		AssignedTo:      owner,
		Status:          status,
	}
}

func ptr[T any](v T) *T { return &v }
