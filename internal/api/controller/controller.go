package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/storage"
	"github.com/ougirez/zstats/internal/service/admin"
	"github.com/ougirez/zstats/internal/service/dashboard"
	"github.com/ougirez/zstats/internal/service/importer"
	"github.com/ougirez/zstats/internal/service/settings"
)

type Controller struct {
	dashboard *dashboard.Service
	admin     *admin.Service
	settings  *settings.Service
	importer  *importer.Service
	files     storage.Storage
}

func NewController(
	dashboardService *dashboard.Service,
	adminService *admin.Service,
	settingsService *settings.Service,
	importerService *importer.Service,
	files storage.Storage,
) *Controller {
	return &Controller{
		dashboard: dashboardService,
		admin:     adminService,
		settings:  settingsService,
		importer:  importerService,
		files:     files,
	}
}

func datasetParam(ctx echo.Context) (string, error) {
	dataset := ctx.Param("dataset")
	if !constants.IsDataset(dataset) {
		return "", constants.ErrUnknownDataset
	}
	return dataset, nil
}

func userID(ctx echo.Context) string {
	id, _ := ctx.Get(constants.CtxKeyUserID).(string)
	return id
}
