package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/report"
	attsvc "github.com/cmlabs-hris/siteops-backend-go/internal/service/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/storage"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	maxSheetName   = 31
	firstDayColumn = 3
)

// letterFills are the cell fills of the export letters.
var letterFills = map[string]string{
	"P": "C6EFCE",
	"A": "FFC7CE",
	"I": "FFEB9C",
	"L": "BDD7EE",
	"W": "E4DFEC",
	"—": "EDEDED",
}

type ReportServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	classifier   *attsvc.MonthClassifier
	storage      storage.FileStorage
}

func NewReportService(
	employeeRepo employee.EmployeeRepository,
	classifier *attsvc.MonthClassifier,
	fileStorage storage.FileStorage,
) report.ReportService {
	return &ReportServiceImpl{
		employeeRepo: employeeRepo,
		classifier:   classifier,
		storage:      fileStorage,
	}
}

type employeeMonth struct {
	emp  employee.Employee
	days []attendance.DayStatus
}

// ExportMonthly implements report.ReportService. Employees are fetched one at a time.
func (s *ReportServiceImpl) ExportMonthly(ctx context.Context, req report.MonthlyExportRequest) (report.MonthlyExport, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyExport{}, err
	}
	month := time.Month(req.Month)

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return report.MonthlyExport{}, fmt.Errorf("failed to list employees: %w", err)
	}

	var months []employeeMonth
	for _, emp := range employees {
		if emp.Role == employee.RoleAdmin {
			continue
		}
		days, err := s.classifier.Classify(ctx, emp.ID, emp.Role, req.Year, month)
		if err != nil {
			return report.MonthlyExport{}, fmt.Errorf("failed to classify %s: %w", emp.Username, err)
		}
		months = append(months, employeeMonth{emp: emp, days: days})
	}
	if len(months) == 0 {
		return report.MonthlyExport{}, report.ErrNoEmployees
	}

	content, err := buildWorkbook(req.Year, month, months)
	if err != nil {
		return report.MonthlyExport{}, fmt.Errorf("failed to build workbook: %w", err)
	}

	export := report.MonthlyExport{
		FileName:  fmt.Sprintf("attendance-%04d-%02d.xlsx", req.Year, req.Month),
		Content:   content,
		Employees: len(months),
	}

	if s.storage != nil {
		archivePath := fmt.Sprintf("reports/attendance/%04d/%s", req.Year, export.FileName)
		export.ArchivePath, err = s.storage.Upload(ctx, bytes.NewReader(content), archivePath)
		if err != nil {
			return report.MonthlyExport{}, fmt.Errorf("failed to archive workbook: %w", err)
		}
		export.ArchiveURL = s.storage.URL(export.ArchivePath)
	}

	slog.Info("Monthly attendance exported", "year", req.Year, "month", req.Month, "employees", len(months), "archive", export.ArchivePath)
	return export, nil
}

func buildWorkbook(year int, month time.Month, months []employeeMonth) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, err
	}

	styles, err := newLetterStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, year, month, months, styles); err != nil {
		return nil, err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for _, m := range months {
		name := uniqueSheetName(m.emp.FullName, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeEmployeeSheet(f, name, m.days, styles); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newLetterStyles(f *excelize.File) (map[string]int, error) {
	styles := make(map[string]int, len(letterFills))
	for letter, color := range letterFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return nil, err
		}
		styles[letter] = id
	}
	return styles, nil
}

func writeSummary(f *excelize.File, year int, month time.Month, months []employeeMonth, styles map[string]int) error {
	n := attsvc.DaysInMonth(year, month)

	header := []any{"Employee", "Role"}
	for d := 1; d <= n; d++ {
		header = append(header, d)
	}
	header = append(header, "Total P", "Total A", "Total I", "Total L", "Hours")
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	for i, m := range months {
		rowNum := i + 2
		letters := attsvc.ExportLetters(m.days)
		totals := attsvc.ToExportTotals(m.days)

		row := []any{m.emp.FullName, string(m.emp.Role)}
		for _, l := range letters {
			row = append(row, l)
		}
		row = append(row, totals.Present, totals.Absent, totals.Incomplete, totals.Leave, totals.Hours)

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}

		for d, l := range letters {
			cell, err := excelize.CoordinatesToCellName(firstDayColumn+d, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(summarySheet, cell, cell, styles[l]); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(summarySheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	})
}

func writeEmployeeSheet(f *excelize.File, sheet string, days []attendance.DayStatus, styles map[string]int) error {
	header := []any{"Date", "Day", "Status", "Clock In", "Clock Out", "Hours"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, d := range days {
		letter := d.Status.ExportLetter()
		row := []any{
			d.Date.Format("2006-01-02"),
			d.Date.Weekday().String(),
			letter,
			clockCell(d.ClockIn),
			clockCell(d.ClockOut),
			roundHours(d.HoursWorked),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}

		statusCell, err := excelize.CoordinatesToCellName(3, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, statusCell, statusCell, styles[letter]); err != nil {
			return err
		}
	}
	return nil
}

func clockCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// uniqueSheetName derives a worksheet name that excel accepts and that is not yet used.
// Excel compares sheet names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Employee"
	}
	base = truncateRunes(base, maxSheetName)

	candidate := base
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
