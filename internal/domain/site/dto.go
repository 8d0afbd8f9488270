package site

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
)

type CreateSiteRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

func (r *CreateSiteRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if r.Address != nil {
		trimmed := strings.TrimSpace(*r.Address)
		if trimmed == "" {
			r.Address = nil
		} else {
			r.Address = &trimmed
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SiteResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	QRToken   string  `json:"qr_token"`
	CreatedAt string  `json:"created_at"`
}

func ToResponse(s Site) SiteResponse {
	return SiteResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		QRToken:   s.QRToken,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
