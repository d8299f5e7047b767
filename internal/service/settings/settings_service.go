package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store"
)

const defaultCacheTTL = 30 * time.Second

type Service struct {
	store    store.Store
	validate *validator.Validate
	ttl      time.Duration
	now      func() time.Time

	mx       sync.Mutex
	cached   *domain.SystemSettings
	cachedAt time.Time
}

func NewService(st store.Store, validate *validator.Validate) *Service {
	return &Service{
		store:    st,
		validate: validate,
		ttl:      defaultCacheTTL,
		now:      time.Now,
	}
}

// SystemSettings returns the current settings, served from memory for a short
// while so per-request checks do not hit the database.
func (s *Service) SystemSettings(ctx context.Context) (*domain.SystemSettings, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.cached != nil && s.now().Sub(s.cachedAt) < s.ttl {
		out := *s.cached
		return &out, nil
	}

	settings, err := s.store.GetSystemSettings(ctx)
	if err != nil {
		logger.Errorf(ctx, "store.GetSystemSettings: %s", err.Error())
		return nil, fmt.Errorf("%w: system settings", constants.ErrFetchFailed)
	}

	s.cached = settings
	s.cachedAt = s.now()

	out := *settings
	return &out, nil
}

func (s *Service) UpdateSystemSettings(ctx context.Context, settings *domain.SystemSettings) (*domain.MutationResponse[domain.SystemSettings], error) {
	if err := s.check(ctx, settings); err != nil {
		return nil, err
	}

	saved, err := s.store.UpsertSystemSettings(ctx, settings)
	if err != nil {
		logger.Errorf(ctx, "store.UpsertSystemSettings: %s", err.Error())
		return nil, fmt.Errorf("%w: system settings", constants.ErrMutationFailed)
	}

	s.mx.Lock()
	s.cached = nil
	s.mx.Unlock()

	return &domain.MutationResponse[domain.SystemSettings]{
		Notice: domain.Notice{Message: "Settings saved"},
		Item:   saved,
	}, nil
}

// MaintenanceMode reports whether non-admin traffic should be turned away.
// Errors read as "not in maintenance".
func (s *Service) MaintenanceMode(ctx context.Context) bool {
	settings, err := s.SystemSettings(ctx)
	if err != nil {
		logger.Warnf(ctx, "maintenance check: %s", err.Error())
		return false
	}
	return settings.Features.MaintenanceMode
}

// MaxUploadSize returns the upload limit in bytes, 0 meaning unlimited.
func (s *Service) MaxUploadSize(ctx context.Context) (int64, error) {
	settings, err := s.SystemSettings(ctx)
	if err != nil {
		return 0, err
	}
	return int64(settings.Performance.MaxUploadSizeMB) << 20, nil
}

func (s *Service) SiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	cfg, err := s.store.GetSiteConfig(ctx)
	if err != nil {
		logger.Errorf(ctx, "store.GetSiteConfig: %s", err.Error())
		return nil, fmt.Errorf("%w: site config", constants.ErrFetchFailed)
	}
	return cfg, nil
}

func (s *Service) UpdateSiteConfig(ctx context.Context, cfg *domain.SiteConfig) (*domain.MutationResponse[domain.SiteConfig], error) {
	if err := s.check(ctx, cfg); err != nil {
		return nil, err
	}

	saved, err := s.store.UpsertSiteConfig(ctx, cfg)
	if err != nil {
		logger.Errorf(ctx, "store.UpsertSiteConfig: %s", err.Error())
		return nil, fmt.Errorf("%w: site config", constants.ErrMutationFailed)
	}

	return &domain.MutationResponse[domain.SiteConfig]{
		Notice: domain.Notice{Message: "Site configuration saved"},
		Item:   saved,
	}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		logger.Errorf(ctx, "store.GetProfile, user-%s: %s", userID, err.Error())
		return nil, fmt.Errorf("%w: profile", constants.ErrFetchFailed)
	}
	return profile, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, prefs *domain.UserPreferences) (*domain.MutationResponse[domain.Profile], error) {
	if err := s.check(ctx, prefs); err != nil {
		return nil, err
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Preferences = *prefs

	saved, err := s.store.UpsertProfile(ctx, profile)
	if err != nil {
		logger.Errorf(ctx, "store.UpsertProfile, user-%s: %s", userID, err.Error())
		return nil, fmt.Errorf("%w: preferences", constants.ErrMutationFailed)
	}

	return &domain.MutationResponse[domain.Profile]{
		Notice: domain.Notice{Message: "Preferences saved"},
		Item:   saved,
	}, nil
}

func (s *Service) check(ctx context.Context, v interface{}) error {
	if err := s.validate.StructCtx(ctx, v); err != nil {
		return fmt.Errorf("%w: %s", constants.ErrValidation, err.Error())
	}
	return nil
}
