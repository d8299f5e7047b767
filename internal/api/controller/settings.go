package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/domain"
)

func (c *Controller) GetSiteConfig(ctx echo.Context) error {
	cfg, err := c.settings.SiteConfig(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (c *Controller) AdminUpdateSiteConfig(ctx echo.Context) error {
	cfg := new(domain.SiteConfig)
	if err := ctx.Bind(cfg); err != nil {
		return err
	}

	resp, err := c.settings.UpdateSiteConfig(ctx.Request().Context(), cfg)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) AdminGetSettings(ctx echo.Context) error {
	settings, err := c.settings.SystemSettings(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (c *Controller) AdminUpdateSettings(ctx echo.Context) error {
	settings := new(domain.SystemSettings)
	if err := ctx.Bind(settings); err != nil {
		return err
	}

	resp, err := c.settings.UpdateSystemSettings(ctx.Request().Context(), settings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetProfile(ctx echo.Context) error {
	profile, err := c.settings.Profile(ctx.Request().Context(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (c *Controller) UpdatePreferences(ctx echo.Context) error {
	prefs := new(domain.UserPreferences)
	if err := ctx.Bind(prefs); err != nil {
		return err
	}

	resp, err := c.settings.UpdatePreferences(ctx.Request().Context(), userID(ctx), prefs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}
