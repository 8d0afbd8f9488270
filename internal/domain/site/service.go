package site

import "context"

type SiteService interface {
	Create(ctx context.Context, req CreateSiteRequest) (SiteResponse, error)
	List(ctx context.Context) ([]SiteResponse, error)
	Delete(ctx context.Context, id string) error

	// RotateQRToken invalidates printed posters of the site.
	RotateQRToken(ctx context.Context, id string) (SiteResponse, error)
}
