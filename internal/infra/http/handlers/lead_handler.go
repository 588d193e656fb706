package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/middleware"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type LeadHandler struct {
	CreateUseCase *usecase.CreateLeadUseCase
	UpdateUseCase *usecase.UpdateLeadUseCase
	ListUseCase   *usecase.ListLeadsUseCase
	Logger        *zap.Logger
}

func NewLeadHandler(
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	list *usecase.ListLeadsUseCase,
	logger *zap.Logger,
) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		CreateUseCase: create,
		UpdateUseCase: update,
		ListUseCase:   list,
		Logger:        logger,
	}
}

// Routes mounts the lead endpoints under the caller's router.
func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
}

// Create handles POST /leads.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	var draft entity.LeadDraft
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "Invalid JSON payload"})
		return
	}

	lead, err := h.CreateUseCase.Execute(r.Context(), usecase.CreateLeadInput{Profile: profile, Draft: draft})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	middleware.RecordLeadCreated(string(lead.Status))
	writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /leads?status=&q=.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	out, err := h.ListUseCase.Execute(r.Context(), usecase.ListLeadsInput{
		Profile: profile,
		Status:  r.URL.Query().Get("status"),
		Search:  r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if out.Stale {
		w.Header().Set("Warning", `110 - "Response is Stale"`)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /leads/{id}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	view, err := h.ListUseCase.GetLead(r.Context(), profile, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update handles PATCH /leads/{id}. Only submitted fields change.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	var changes usecase.LeadChanges
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&changes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "Invalid JSON payload"})
		return
	}

	lead, err := h.UpdateUseCase.Execute(r.Context(), usecase.UpdateLeadInput{
		Profile: profile,
		LeadID:  chi.URLParam(r, "id"),
		Changes: changes,
	})

	if changes.Status != nil {
		outcome := "accepted"
		switch {
		case entity.IsIncompleteTransition(err):
			outcome = "incomplete"
		case err != nil:
			outcome = "failed"
		}
		to := "invalid"
		if status, ok := entity.ParseLeadStatus(*changes.Status); ok {
			to = string(status)
		}
		middleware.RecordTransition(to, outcome)
	}

	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
