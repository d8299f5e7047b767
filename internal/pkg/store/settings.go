package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store/xpgx"
)

var (
	siteConfigColumns = []string{
		"id", "site_name", "site_tagline", "site_description", "logo_url", "favicon_url",
		"primary_color", "secondary_color", "contact_email", "contact_phone", "updated_at",
	}
	systemSettingsColumns = []string{"id", "features", "email", "security", "performance", "updated_at"}
	profileColumns        = []string{"id", "full_name", "preferences", "updated_at"}
)

func (s *store) GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	query := builder().Select(siteConfigColumns...).
		From(tableSiteConfig).
		Limit(1)

	cfg, err := xpgx.Getx[domain.SiteConfig](ctx, s.pool, query)
	if err != nil {
		err = wrapErr(err)
		if errors.Is(err, constants.ErrDBNotFound) {
			def := domain.DefaultSiteConfig()
			return &def, nil
		}
		logger.Errorf(ctx, "GetSiteConfig: %s", err.Error())
		return nil, err
	}

	return cfg, nil
}

func (s *store) UpsertSiteConfig(ctx context.Context, cfg *domain.SiteConfig) (*domain.SiteConfig, error) {
	cfg.ID = singletonID

	query := upsertSingleton(tableSiteConfig, siteConfigColumns, map[string]interface{}{
		"id":               cfg.ID,
		"site_name":        cfg.SiteName,
		"site_tagline":     cfg.SiteTagline,
		"site_description": cfg.Description,
		"logo_url":         cfg.LogoURL,
		"favicon_url":      cfg.FaviconURL,
		"primary_color":    cfg.PrimaryColor,
		"secondary_color":  cfg.SecondaryColor,
		"contact_email":    cfg.ContactEmail,
		"contact_phone":    cfg.ContactPhone,
	})

	saved, err := xpgx.Getx[domain.SiteConfig](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "UpsertSiteConfig: %s", err.Error())
		return nil, wrapErr(err)
	}

	return saved, nil
}

func (s *store) GetSystemSettings(ctx context.Context) (*domain.SystemSettings, error) {
	query := builder().Select(systemSettingsColumns...).
		From(tableSystemSettings).
		Limit(1)

	settings, err := xpgx.Getx[domain.SystemSettings](ctx, s.pool, query)
	if err != nil {
		err = wrapErr(err)
		if errors.Is(err, constants.ErrDBNotFound) {
			def := domain.DefaultSystemSettings()
			return &def, nil
		}
		logger.Errorf(ctx, "GetSystemSettings: %s", err.Error())
		return nil, err
	}

	return settings, nil
}

func (s *store) UpsertSystemSettings(ctx context.Context, settings *domain.SystemSettings) (*domain.SystemSettings, error) {
	settings.ID = singletonID

	values := map[string]interface{}{"id": settings.ID}
	for column, v := range map[string]interface{}{
		"features":    settings.Features,
		"email":       settings.Email,
		"security":    settings.Security,
		"performance": settings.Performance,
	} {
		b, err := jsonb(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", column, err)
		}
		values[column] = b
	}

	saved, err := xpgx.Getx[domain.SystemSettings](ctx, s.pool,
		upsertSingleton(tableSystemSettings, systemSettingsColumns, values))
	if err != nil {
		logger.Errorf(ctx, "UpsertSystemSettings: %s", err.Error())
		return nil, wrapErr(err)
	}

	return saved, nil
}

func (s *store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := builder().Select(profileColumns...).
		From(tableProfiles).
		Where(sq.Eq{"id": userID})

	profile, err := xpgx.Getx[domain.Profile](ctx, s.pool, query)
	if err != nil {
		err = wrapErr(err)
		if errors.Is(err, constants.ErrDBNotFound) {
			return &domain.Profile{ID: userID, Preferences: domain.DefaultUserPreferences()}, nil
		}
		logger.Errorf(ctx, "GetProfile, user-%s: %s", userID, err.Error())
		return nil, err
	}

	return profile, nil
}

func (s *store) UpsertProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	preferences, err := jsonb(profile.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferences: %w", err)
	}

	saved, err := xpgx.Getx[domain.Profile](ctx, s.pool, upsertSingleton(tableProfiles, profileColumns, map[string]interface{}{
		"id":          profile.ID,
		"full_name":   profile.FullName,
		"preferences": preferences,
	}))
	if err != nil {
		logger.Errorf(ctx, "UpsertProfile, user-%s: %s", profile.ID, err.Error())
		return nil, wrapErr(err)
	}

	return saved, nil
}

// upsertSingleton пишет строку по id, обновляя все переданные колонки.
func upsertSingleton(table string, columns []string, values map[string]interface{}) sq.InsertBuilder {
	set := ""
	for _, c := range columns {
		if _, ok := values[c]; !ok || c == "id" {
			continue
		}
		set += fmt.Sprintf("%s=excluded.%s, ", c, c)
	}
	set += "updated_at=now()"

	return builder().Insert(table).
		SetMap(values).
		Suffix(fmt.Sprintf("on conflict (id) do update set %s returning %s", set, strings.Join(columns, ", ")))
}
