package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/storage"
	"github.com/ougirez/zstats/internal/pkg/utils"
	"github.com/ougirez/zstats/internal/service/admin"
	"github.com/ougirez/zstats/internal/service/settings"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenRole string
)

// tokenCmd grants a role and prints a signed token for it. Users are
// authenticated elsewhere; this is how the first admin gets in.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Grant a role to a user and print an auth token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if tokenUser == "" {
			tokenUser = uuid.NewString()
		}

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		validate := validator.New()
		svc := admin.NewService(st, storage.New(afero.NewMemMapFs(), "", nil), settings.NewService(st, validate), validate)
		if _, err = svc.GrantRole(ctx, tokenUser, domain.Role(tokenRole)); err != nil {
			return err
		}

		raw, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{UserID: tokenUser, Role: domain.Role(tokenRole)})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), raw)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (uuid), generated when empty")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleAdmin), "role: admin or user")
}
