package site

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type SiteServiceImpl struct {
	siteRepo site.SiteRepository
	newToken func() string
}

func NewSiteService(siteRepo site.SiteRepository) site.SiteService {
	return &SiteServiceImpl{
		siteRepo: siteRepo,
		newToken: uuid.NewString,
	}
}

// Create implements site.SiteService.
func (s *SiteServiceImpl) Create(ctx context.Context, req site.CreateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	exists, err := s.siteRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return site.SiteResponse{}, fmt.Errorf("failed to check site name: %w", err)
	}
	if exists {
		return site.SiteResponse{}, site.ErrSiteNameExists
	}

	created, err := s.siteRepo.Create(ctx, site.Site{
		Name:    req.Name,
		Address: req.Address,
		QRToken: s.newToken(),
	})
	if err != nil {
		return site.SiteResponse{}, err
	}

	slog.Info("Site created", "site_id", created.ID, "name", created.Name)
	return site.ToResponse(created), nil
}

// List implements site.SiteService.
func (s *SiteServiceImpl) List(ctx context.Context) ([]site.SiteResponse, error) {
	sites, err := s.siteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}

	responses := make([]site.SiteResponse, 0, len(sites))
	for _, st := range sites {
		responses = append(responses, site.ToResponse(st))
	}
	return responses, nil
}

// Delete implements site.SiteService. Clock events recorded at the site are kept.
func (s *SiteServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return site.ErrSiteNotFound
	}
	if _, err := s.siteRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.siteRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	slog.Info("Site deleted", "site_id", id)
	return nil
}

// RotateQRToken implements site.SiteService.
func (s *SiteServiceImpl) RotateQRToken(ctx context.Context, id string) (site.SiteResponse, error) {
	if !validator.IsValidUUID(id) {
		return site.SiteResponse{}, site.ErrSiteNotFound
	}

	current, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		return site.SiteResponse{}, err
	}

	token := s.newToken()
	if err := s.siteRepo.UpdateQRToken(ctx, id, token); err != nil {
		return site.SiteResponse{}, fmt.Errorf("failed to rotate qr token: %w", err)
	}
	current.QRToken = token

	slog.Info("Site QR token rotated", "site_id", id)
	return site.ToResponse(current), nil
}
