package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xavierca1/lead-pipeline/internal/infra/report"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
	"go.uber.org/zap"
)

// ViewHandler serves the read-only screens built on top of the lead list.
type ViewHandler struct {
	Dashboard *usecase.DashboardUseCase
	Team      *usecase.TeamUseCase
	Reports   *usecase.ReportsUseCase
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewViewHandler(
	dashboard *usecase.DashboardUseCase,
	team *usecase.TeamUseCase,
	reports *usecase.ReportsUseCase,
	logger *zap.Logger,
) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler{
		Dashboard: dashboard,
		Team:      team,
		Reports:   reports,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Me handles GET /me.
func (h *ViewHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleDashboard handles GET /dashboard.
func (h *ViewHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	out, err := h.Dashboard.Execute(r.Context(), profile)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTeam handles GET /team. Sales users get {"access": false}.
func (h *ViewHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	out, err := h.Team.Execute(r.Context(), profile)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleReports handles GET /reports.
func (h *ViewHandler) HandleReports(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	out, err := h.Reports.Execute(r.Context(), profile)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleExport handles GET /reports/export and streams the report as xlsx.
func (h *ViewHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	profile, ok := actingProfile(w, r)
	if !ok {
		return
	}

	out, err := h.Reports.Execute(r.Context(), profile)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if !out.Access {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "access_denied", Message: "access denied: export reports"})
		return
	}

	now := h.Now()
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, out, now); err != nil {
		h.Logger.Error("failed to render report", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Could not render report"})
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leads-report-%s.xlsx"`, now.Format("2006-01-02")))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
