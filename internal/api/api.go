package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/zstats/internal/api/controller"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/config"
	"github.com/ougirez/zstats/internal/pkg/storage"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/ougirez/zstats/internal/service/admin"
	"github.com/ougirez/zstats/internal/service/dashboard"
	"github.com/ougirez/zstats/internal/service/importer"
	"github.com/ougirez/zstats/internal/service/settings"
)

type Config struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	LogLevel       string
	Domains        config.Domains
}

// roleResolver looks up the granted role of a user.
type roleResolver interface {
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}

type APIService struct {
	router   *echo.Echo
	settings *settings.Service
	roles    roleResolver
}

func (svc *APIService) Serve(addr string) error {
	return svc.router.Start(addr)
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router for tests and embedding.
func (svc *APIService) Handler() *echo.Echo {
	return svc.router
}

func NewAPIService(cfg Config, st store.Store, files storage.Storage, imports *importer.Service) (*APIService, error) {
	validate := validator.New()

	settingsService := settings.NewService(st, validate)
	adminService := admin.NewService(st, files, settingsService, validate)
	svc := &APIService{router: echo.New(), settings: settingsService, roles: adminService}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(logLevel(cfg.LogLevel))
	svc.router.Validator = NewValidator(validate)
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = JSONSerializer{}
	svc.router.HTTPErrorHandler = httpErrorHandler

	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.RequestID())
	svc.router.Use(svc.RequestContextMiddleware)
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if cfg.RequestTimeout > 0 {
		svc.router.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}
	svc.router.Use(svc.IdentifyMiddleware)

	cntrl := controller.NewController(
		dashboard.NewService(st, cfg.Domains),
		adminService,
		settingsService,
		imports,
		files,
	)

	svc.router.GET("/storage/:area/:name", cntrl.ServeFile)

	api := svc.router.Group("/api/v1")
	api.GET("/site-config", cntrl.GetSiteConfig)

	public := api.Group("", svc.MaintenanceMiddleware)

	datasets := public.Group("/datasets")
	datasets.GET("", cntrl.ListDatasets)
	datasets.GET("/:dataset/records", cntrl.ListRecords)
	datasets.GET("/:dataset/query", cntrl.QueryDataset)
	datasets.GET("/:dataset/export", cntrl.ExportDataset)

	dashboards := public.Group("/dashboards")
	dashboards.GET("/overview", cntrl.GetOverview)
	dashboards.GET("/crops/trend", cntrl.GetCropTrend)
	dashboards.GET("/crops/regions", cntrl.GetCropRegions)

	profile := public.Group("/profile", svc.AuthMiddleware)
	profile.GET("", cntrl.GetProfile)
	profile.PUT("/preferences", cntrl.UpdatePreferences)

	adm := api.Group("/admin", svc.AuthMiddleware, svc.AdminMiddleware)

	records := adm.Group("/records")
	records.GET("", cntrl.AdminListRecords)
	records.POST("", cntrl.AdminUpsertRecord)
	records.DELETE("/:id", cntrl.AdminDeleteRecord)

	media := adm.Group("/media")
	media.GET("", cntrl.AdminListMedia)
	media.POST("", cntrl.AdminUploadMedia)
	media.PUT("/:id", cntrl.AdminUpdateMedia)
	media.DELETE("/:id", cntrl.AdminDeleteMedia)

	roles := adm.Group("/roles")
	roles.GET("", cntrl.AdminListRoles)
	roles.POST("", cntrl.AdminGrantRole)
	roles.DELETE("/:id", cntrl.AdminDeleteRole)

	adm.GET("/settings", cntrl.AdminGetSettings)
	adm.PUT("/settings", cntrl.AdminUpdateSettings)
	adm.PUT("/site-config", cntrl.AdminUpdateSiteConfig)

	adm.POST("/imports", cntrl.BackfillAll)
	adm.POST("/imports/:dataset", cntrl.BackfillDataset)

	return svc, nil
}

func logLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
