package site

import "context"

type SiteRepository interface {
	Create(ctx context.Context, s Site) (Site, error)
	GetByID(ctx context.Context, id string) (Site, error)
	GetByQRToken(ctx context.Context, token string) (Site, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]Site, error)
	UpdateQRToken(ctx context.Context, id, token string) error
	SoftDelete(ctx context.Context, id string) error
}
