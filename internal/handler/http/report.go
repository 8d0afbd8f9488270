package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// ExportMonthlyAttendance downloads the month's attendance workbook
	ExportMonthlyAttendance(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportMonthlyAttendance handles GET /reports/attendance/export
func (h *reportHandlerImpl) ExportMonthlyAttendance(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, r, "invalid month parameter", nil)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, r, "invalid year parameter", nil)
		return
	}

	export, err := h.reportService.ExportMonthly(r.Context(), report.MonthlyExportRequest{
		Year:  year,
		Month: month,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.WorkbookContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	if export.ArchiveURL != "" {
		w.Header().Set("X-Archive-URL", export.ArchiveURL)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Content); err != nil {
		slog.Error("Failed to write export", "error", err)
	}
}
