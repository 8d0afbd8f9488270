package report

import "context"

type ReportService interface {
	// ExportMonthly builds the attendance workbook of every active non-admin employee.
	ExportMonthly(ctx context.Context, req MonthlyExportRequest) (MonthlyExport, error)
}
