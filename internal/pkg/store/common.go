package store

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/zstats/internal/pkg/constants"
)

const (
	tableRecords        = "records"
	tableMedia          = "media"
	tableUserRoles      = "user_roles"
	tableProfiles       = "profiles"
	tableSiteConfig     = "site_config"
	tableSystemSettings = "system_settings"
)

const singletonID = "default"

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// jsonb кодирует значение для колонки jsonb.
func jsonb(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}
