package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/service/dashboard"
)

func (c *Controller) ListDatasets(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, constants.Datasets)
}

func (c *Controller) ListRecords(ctx echo.Context) error {
	dataset, err := datasetParam(ctx)
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

	return ctx.JSON(http.StatusOK, records)
}

func (c *Controller) QueryDataset(ctx echo.Context) error {
	if _, err := datasetParam(ctx); err != nil {
		return err
	}

	var req dashboard.QueryRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	resp, err := c.dashboard.Query(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetOverview(ctx echo.Context) error {
	datasets := ctx.QueryParams()["dataset"]
	if len(datasets) == 0 {
		datasets = constants.Datasets
	}
	for _, d := range datasets {
		if !constants.IsDataset(d) {
			return constants.ErrUnknownDataset
		}
	}

	summaries, err := c.dashboard.Overview(ctx.Request().Context(), datasets...)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, summaries)
}

type cropChartRequest struct {
	domain.FilterCriteria
	Measure string `query:"measure"`
}

func (r *cropChartRequest) measure() string {
	if r.Measure == "" {
		return "production"
	}
	return r.Measure
}

func (c *Controller) GetCropTrend(ctx echo.Context) error {
	var req cropChartRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	chart, err := c.dashboard.YearlyTrend(ctx.Request().Context(), req.FilterCriteria, req.measure())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, chart)
}

func (c *Controller) GetCropRegions(ctx echo.Context) error {
	var req cropChartRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	chart, err := c.dashboard.RegionalBreakdown(ctx.Request().Context(), req.FilterCriteria, req.measure())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, chart)
}
