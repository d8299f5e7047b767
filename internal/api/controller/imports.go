package controller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/service/importer"
)

func (c *Controller) BackfillAll(ctx echo.Context) error {
	results, err := c.importer.ImportAll(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, results)
}

// BackfillDataset re-imports one dataset, optionally from a ?url= override.
func (c *Controller) BackfillDataset(ctx echo.Context) error {
	dataset, err := datasetParam(ctx)
	if err != nil {
		return err
	}

	url := ctx.QueryParam("url")
	var result *importer.ImportResult
	switch dataset {
	case constants.DatasetCDF:
		if url == "" {
			url = c.importer.Config().CDFURL
		}
		result, err = c.importer.ImportCDF(ctx.Request().Context(), url)
	case constants.DatasetCropProduction:
		if url == "" {
			url = c.importer.Config().CropRankingURL
		}
		result, err = c.importer.ImportCropRanking(ctx.Request().Context(), url)
	default:
		return fmt.Errorf("%w: no importer for %s", constants.ErrBadRequest, dataset)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}
