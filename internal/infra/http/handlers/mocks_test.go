package handlers_test

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/handlers"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/middleware"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

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

var (
	fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	adminProfile   = entity.Profile{ID: "a1", Role: entity.RoleAdmin}
	managerProfile = entity.Profile{ID: "m1", Role: entity.RoleManager}
	salesProfile   = entity.Profile{ID: "s1", Role: entity.RoleSales, ManagerID: "m1"}
)

const leadID = "6f1c2a0e-3b7d-4c1e-9f2a-8d5e4b3c2a10"

func clock() time.Time { return fixedNow }

// server wires real use cases over mocked repositories and signs every
// request in as the given profile.
func server(leads *MockLeadRepository, profiles *MockProfileRepository, as *entity.Profile) http.Handler {
	create := usecase.NewCreateLeadUseCase(leads, profiles, nil, nil, nil)
	create.Now = clock
	update := usecase.NewUpdateLeadUseCase(leads, profiles, nil, nil, nil)
	update.Now = clock
	list := usecase.NewListLeadsUseCase(leads, profiles, nil, nil, 0, nil)
	list.Now = clock

	leadHandler := handlers.NewLeadHandler(create, update, list, nil)
	views := handlers.NewViewHandler(
		usecase.NewDashboardUseCase(list),
		usecase.NewTeamUseCase(leads, profiles),
		usecase.NewReportsUseCase(leads, profiles),
		nil,
	)
	views.Now = clock

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if as != nil {
				req = req.WithContext(middleware.WithProfile(req.Context(), *as))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/me", views.Me)
	r.Get("/dashboard", views.HandleDashboard)
	r.Get("/team", views.HandleTeam)
	r.Get("/reports", views.HandleReports)
	r.Get("/reports/export", views.HandleExport)
	r.Route("/leads", leadHandler.Routes)
	return r
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
