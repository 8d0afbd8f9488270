package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
)

// monthQuery reads ?year=&month=, defaulting each to the current month in loc.
func monthQuery(r *http.Request, loc *time.Location) (int, int, error) {
	now := time.Now().In(loc)
	year, month := now.Year(), int(now.Month())

	var errs validator.ValidationErrors
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be a number"})
		}
		month = n
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return year, month, nil
}

func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
