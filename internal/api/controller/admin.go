package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/ougirez/zstats/internal/service/admin"
)

func listOpts(ctx echo.Context) store.ListOpts {
	column := ctx.QueryParam("column")
	if column == "" {
		return store.ListOpts{}
	}
	return store.ListOpts{Column: column, Value: ctx.QueryParam("value")}
}

func confirmed(ctx echo.Context) bool {
	ok, _ := strconv.ParseBool(ctx.QueryParam("confirm"))
	return ok
}

func list[T any](ctx echo.Context, panel *admin.Panel[T]) error {
	opts := listOpts(ctx)

	var (
		items []*T
		err   error
	)
	if refresh, _ := strconv.ParseBool(ctx.QueryParam("refresh")); refresh {
		items, err = panel.Refresh(ctx.Request().Context(), opts)
	} else {
		items, err = panel.List(ctx.Request().Context(), opts)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, items)
}

func remove[T any](ctx echo.Context, panel *admin.Panel[T]) error {
	resp, err := panel.Delete(ctx.Request().Context(), ctx.Param("id"), confirmed(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) AdminListRecords(ctx echo.Context) error {
	return list(ctx, c.admin.Records)
}

func (c *Controller) AdminUpsertRecord(ctx echo.Context) error {
	record := new(domain.Record)
	if err := ctx.Bind(record); err != nil {
		return err
	}
	if !constants.IsDataset(record.Dataset) {
		return constants.ErrUnknownDataset
	}

	resp, err := c.admin.Records.Upsert(ctx.Request().Context(), record)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) AdminDeleteRecord(ctx echo.Context) error {
	return remove(ctx, c.admin.Records)
}

func (c *Controller) AdminListMedia(ctx echo.Context) error {
	return list(ctx, c.admin.Media)
}

func (c *Controller) AdminUploadMedia(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file is required", constants.ErrBadRequest)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}
	defer file.Close()

	resp, err := c.admin.UploadMedia(ctx.Request().Context(), admin.UploadMediaRequest{
		UserID:      userID(ctx),
		FileName:    header.Filename,
		FileType:    header.Header.Get(echo.HeaderContentType),
		AltText:     ctx.FormValue("alt_text"),
		Description: ctx.FormValue("description"),
	}, file)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, resp)
}

type updateMediaRequest struct {
	AltText     string `json:"alt_text" validate:"max=255"`
	Description string `json:"description"`
}

// AdminUpdateMedia edits the descriptive fields of a media item.
func (c *Controller) AdminUpdateMedia(ctx echo.Context) error {
	var req updateMediaRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	items, err := c.admin.Media.List(ctx.Request().Context(), store.ListOpts{})
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	for _, m := range items {
		if m.ID != id {
			continue
		}

		updated := *m
		updated.AltText = req.AltText
		updated.Description = req.Description

		resp, err := c.admin.Media.Upsert(ctx.Request().Context(), &updated)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, resp)
	}

	return constants.ErrDBNotFound
}

func (c *Controller) AdminDeleteMedia(ctx echo.Context) error {
	resp, err := c.admin.DeleteMedia(ctx.Request().Context(), ctx.Param("id"), confirmed(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) AdminListRoles(ctx echo.Context) error {
	return list(ctx, c.admin.UserRoles)
}

type grantRoleRequest struct {
	UserID string      `json:"user_id" validate:"required,uuid"`
	Role   domain.Role `json:"role" validate:"required,oneof=admin user"`
}

func (c *Controller) AdminGrantRole(ctx echo.Context) error {
	var req grantRoleRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	resp, err := c.admin.GrantRole(ctx.Request().Context(), req.UserID, req.Role)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) AdminDeleteRole(ctx echo.Context) error {
	return remove(ctx, c.admin.UserRoles)
}
