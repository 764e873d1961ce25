package api

import (
	"net/http"

	"github.com/sxroads/hypertrophy/internal/domain/weeklyreport"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/service"
)

// ReportHandler exposes generated weekly narrative reports.
type ReportHandler struct {
	reports *service.WeeklyReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *service.WeeklyReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type weeklyReportResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	WeekStart   string `json:"week_start"`
	ReportText  string `json:"report_text"`
	GeneratedAt string `json:"generated_at"`
}

// Weekly handles GET /reports/weekly?user_id=&week_start=.
func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id is required"))
		return
	}
	weekStart, err := parseRequiredWeekStart(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report, err := h.reports.GetOrCreate(r.Context(), userID, *weekStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toWeeklyReportResponse(report))
}

// RegenerateWeekly handles POST /reports/weekly/regenerate?user_id=&week_start=.
func (h *ReportHandler) RegenerateWeekly(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id is required"))
		return
	}
	weekStart, err := parseRequiredWeekStart(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report, err := h.reports.Regenerate(r.Context(), userID, *weekStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toWeeklyReportResponse(report))
}

func toWeeklyReportResponse(report *weeklyreport.WeeklyReport) weeklyReportResponse {
	return weeklyReportResponse{
		ID:          report.ID,
		UserID:      report.UserID,
		WeekStart:   report.WeekStart.UTC().Format("2006-01-02"),
		ReportText:  report.ReportText,
		GeneratedAt: report.GeneratedAt.UTC().Format(timeFormat),
	}
}
