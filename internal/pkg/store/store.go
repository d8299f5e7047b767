package store

import (
	"context"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	Records() Repository[domain.Record]
	Media() Repository[domain.Media]
	UserRoles() Repository[domain.UserRole]

	ListRecords(ctx context.Context, opts ListRecordsOpts) ([]*domain.Record, error)
	ReplaceImported(ctx context.Context, dataset, origin string, records []*domain.Record) (int, error)

	GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error)
	UpsertSiteConfig(ctx context.Context, cfg *domain.SiteConfig) (*domain.SiteConfig, error)
	GetSystemSettings(ctx context.Context) (*domain.SystemSettings, error)
	UpsertSystemSettings(ctx context.Context, settings *domain.SystemSettings) (*domain.SystemSettings, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}

type store struct {
	pool      Pool
	records   *tableRepository[domain.Record, *domain.Record]
	media     *tableRepository[domain.Media, *domain.Media]
	userRoles *tableRepository[domain.UserRole, *domain.UserRole]
}

func NewStore(pool Pool) Store {
	return &store{
		pool: pool,
		records: newTableRepository[domain.Record, *domain.Record](
			pool, tableRecords, recordColumns, "dataset, year, region, category", recordValues,
			recordFilterColumns...,
		),
		media: newTableRepository[domain.Media, *domain.Media](
			pool, tableMedia, mediaColumns, "created_at desc", mediaValues,
			"user_id", "file_type",
		),
		userRoles: newTableRepository[domain.UserRole, *domain.UserRole](
			pool, tableUserRoles, userRoleColumns, "created_at", userRoleValues,
			"user_id", "role",
		),
	}
}

func (s *store) Records() Repository[domain.Record]     { return s.records }
func (s *store) Media() Repository[domain.Media]         { return s.media }
func (s *store) UserRoles() Repository[domain.UserRole] { return s.userRoles }
