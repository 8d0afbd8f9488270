package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
)

const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MonthlyExportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *MonthlyExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthlyExport is a generated attendance workbook.
type MonthlyExport struct {
	FileName    string
	Content     []byte
	ArchivePath string
	ArchiveURL  string
	Employees   int
}
