package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/utils"
)

// RequestContextMiddleware puts the request id on the request's logger.
func (svc *APIService) RequestContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Response().Header().Get(echo.HeaderXRequestID)
		if id != "" {
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(logger.ToContext(req.Context(), "request_id", id)))
		}
		return next(ctx)
	}
}

func authToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(constants.CookieKeyAuthToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := ctx.Request().Header.Get(constants.HeaderAuthorization)
	if token := strings.TrimPrefix(header, "Bearer "); token != header {
		return strings.TrimSpace(token)
	}

	return ""
}

// IdentifyMiddleware reads an optional auth token. Invalid tokens are ignored
// here and rejected by AuthMiddleware on protected routes. The role comes
// from the user's grant, not from the token, so a demotion applies at once.
func (svc *APIService) IdentifyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		raw := authToken(ctx)
		if raw == "" {
			return next(ctx)
		}

		token, err := utils.ParseAuthToken(raw)
		if err != nil {
			return next(ctx)
		}

		req := ctx.Request()
		reqCtx := logger.ToContext(req.Context(), "user_id", token.UserID)

		role, err := svc.roles.RoleOf(reqCtx, token.UserID)
		if err != nil {
			logger.Warnf(reqCtx, "roles.RoleOf, user-%s: %s", token.UserID, err.Error())
			role = domain.RoleUser
		}

		ctx.Set(constants.CtxKeyUserID, token.UserID)
		ctx.Set(constants.CtxKeyRole, role)
		ctx.SetRequest(req.WithContext(reqCtx))

		return next(ctx)
	}
}

func (svc *APIService) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := ctx.Get(constants.CtxKeyUserID).(string); !ok {
			if authToken(ctx) == "" {
				return constants.ErrMissingAuthCookie
			}
			return constants.ErrUnauthorized
		}
		return next(ctx)
	}
}

func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if role, _ := ctx.Get(constants.CtxKeyRole).(domain.Role); role != domain.RoleAdmin {
			return constants.ErrForbidden
		}
		return next(ctx)
	}
}

// MaintenanceMiddleware turns away everyone but admins while maintenance mode is on.
func (svc *APIService) MaintenanceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if role, _ := ctx.Get(constants.CtxKeyRole).(domain.Role); role == domain.RoleAdmin {
			return next(ctx)
		}
		if svc.settings.MaintenanceMode(ctx.Request().Context()) {
			return constants.ErrMaintenance
		}
		return next(ctx)
	}
}
