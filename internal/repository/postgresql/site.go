package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const siteColumns = `id, name, address, qr_token, created_at, updated_at, deleted_at`

type siteRepositoryImpl struct {
	db *database.DB
}

func NewSiteRepository(db *database.DB) site.SiteRepository {
	return &siteRepositoryImpl{db: db}
}

func scanSite(row pgx.Row) (site.Site, error) {
	var s site.Site
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.QRToken, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	return s, err
}

// Create implements site.SiteRepository.
func (r *siteRepositoryImpl) Create(ctx context.Context, s site.Site) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sites (name, address, qr_token)
		VALUES ($1, $2, $3)
		RETURNING ` + siteColumns

	created, err := scanSite(q.QueryRow(ctx, query, s.Name, s.Address, s.QRToken))
	if uniqueConstraint(err) == "sites_name_key" {
		return site.Site{}, site.ErrSiteNameExists
	}
	if err != nil {
		return site.Site{}, fmt.Errorf("failed to create site: %w", err)
	}
	return created, nil
}

// GetByID implements site.SiteRepository.
func (r *siteRepositoryImpl) GetByID(ctx context.Context, id string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1 AND deleted_at IS NULL`
	s, err := scanSite(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return site.Site{}, site.ErrSiteNotFound
	}
	if err != nil {
		return site.Site{}, fmt.Errorf("failed to get site: %w", err)
	}
	return s, nil
}

// GetByQRToken implements site.SiteRepository.
func (r *siteRepositoryImpl) GetByQRToken(ctx context.Context, token string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE qr_token = $1 AND deleted_at IS NULL`
	s, err := scanSite(q.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return site.Site{}, site.ErrSiteNotFound
	}
	if err != nil {
		return site.Site{}, fmt.Errorf("failed to get site by qr token: %w", err)
	}
	return s, nil
}

// ExistsByName implements site.SiteRepository. Names compare case-insensitively.
func (r *siteRepositoryImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM sites WHERE lower(name) = lower($1) AND deleted_at IS NULL)`
	var exists bool
	if err := q.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check site name: %w", err)
	}
	return exists, nil
}

// List implements site.SiteRepository.
func (r *siteRepositoryImpl) List(ctx context.Context) ([]site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE deleted_at IS NULL ORDER BY name`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	sites := []site.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// UpdateQRToken implements site.SiteRepository.
func (r *siteRepositoryImpl) UpdateQRToken(ctx context.Context, id, token string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE sites SET qr_token = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	tag, err := q.Exec(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("failed to update qr token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}
	return nil
}

// SoftDelete implements site.SiteRepository.
func (r *siteRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE sites SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}
	return nil
}
