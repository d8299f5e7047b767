package controller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/export"
)

func (c *Controller) ExportDataset(ctx echo.Context) error {
	dataset, err := datasetParam(ctx)
	if err != nil {
		return err
	}

	settings, err := c.settings.SystemSettings(ctx.Request().Context())
	if err != nil {
		return err
	}
	if !settings.Features.Export {
		return fmt.Errorf("%w: export is disabled", constants.ErrForbidden)
	}

	format, err := export.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return err
	}

	var criteria domain.FilterCriteria
	if err = ctx.Bind(&criteria); err != nil {
		return err
	}

	records, err := c.dashboard.Select(ctx.Request().Context(), dataset, criteria)
	if err != nil {
		return err
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, format.ContentType())
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", format.FileName(dataset)))
	resp.WriteHeader(http.StatusOK)

	return export.Write(resp, format, records)
}
