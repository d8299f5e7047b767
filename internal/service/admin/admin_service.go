package admin

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/storage"
	"github.com/ougirez/zstats/internal/pkg/store"
)

type uploadLimiter interface {
	MaxUploadSize(ctx context.Context) (int64, error)
}

// Service bundles the admin panels and the flows spanning more than one of them.
type Service struct {
	Records   *Panel[domain.Record]
	Media     *Panel[domain.Media]
	UserRoles *Panel[domain.UserRole]

	files  storage.Storage
	limits uploadLimiter
}

func NewService(st store.Store, files storage.Storage, limits uploadLimiter, validate *validator.Validate) *Service {
	return &Service{
		Records:   NewPanel[domain.Record]("Record", st.Records(), validate),
		Media:     NewPanel[domain.Media]("Media", st.Media(), validate),
		UserRoles: NewPanel[domain.UserRole]("Role", st.UserRoles(), validate),
		files:     files,
		limits:    limits,
	}
}

type UploadMediaRequest struct {
	UserID      string
	FileName    string
	FileType    string
	AltText     string
	Description string
}

// UploadMedia stores the file and records it in the media library. The file
// is removed again when the media row cannot be saved.
func (s *Service) UploadMedia(ctx context.Context, req UploadMediaRequest, payload io.Reader) (*domain.MutationResponse[domain.Media], error) {
	if req.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", constants.ErrValidation)
	}

	limit, err := s.limits.MaxUploadSize(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := s.files.Upload(ctx, constants.StorageAreaMedia, req.FileName, payload, storage.WithMaxSize(limit))
	if err != nil {
		logger.Errorf(ctx, "storage.Upload, file-%s: %s", req.FileName, err.Error())
		return nil, coded(err, constants.ErrMutationFailed)
	}

	media := &domain.Media{
		UserID:      req.UserID,
		FileName:    filepath.Base(req.FileName),
		FilePath:    obj.Path,
		FileType:    req.FileType,
		FileSize:    obj.Size,
		PublicURL:   obj.PublicURL,
		AltText:     req.AltText,
		Description: req.Description,
	}

	resp, err := s.Media.Upsert(ctx, media)
	if err != nil {
		if rmErr := s.files.Remove(ctx, constants.StorageAreaMedia, obj.Path); rmErr != nil {
			logger.Warnf(ctx, "failed to remove orphaned upload %s: %s", obj.Path, rmErr.Error())
		}
		return nil, err
	}

	resp.Notice.Message = fmt.Sprintf("%s uploaded", media.FileName)
	return resp, nil
}

// DeleteMedia deletes the media row and then its file.
func (s *Service) DeleteMedia(ctx context.Context, id string, confirmed bool) (*domain.MutationResponse[domain.Media], error) {
	items, err := s.Media.List(ctx, store.ListOpts{})
	if err != nil {
		return nil, err
	}

	var target *domain.Media
	for _, m := range items {
		if m.ID == id {
			target = m
			break
		}
	}
	if target == nil {
		return nil, constants.ErrDBNotFound
	}

	resp, err := s.Media.Delete(ctx, id, confirmed)
	if err != nil {
		return nil, err
	}

	if rmErr := s.files.Remove(ctx, constants.StorageAreaMedia, target.FilePath); rmErr != nil {
		logger.Warnf(ctx, "failed to remove file of media %s: %s", id, rmErr.Error())
	}

	return resp, nil
}

// GrantRole sets the role of a user, updating the existing grant if any.
func (s *Service) GrantRole(ctx context.Context, userID string, role domain.Role) (*domain.MutationResponse[domain.UserRole], error) {
	existing, err := s.UserRoles.List(ctx, store.ListOpts{Column: "user_id", Value: userID})
	if err != nil {
		return nil, err
	}

	grant := &domain.UserRole{UserID: userID, Role: role}
	if len(existing) > 0 {
		grant.ID = existing[0].ID
	}

	return s.UserRoles.Upsert(ctx, grant)
}

// RoleOf returns the granted role of a user, RoleUser when none.
func (s *Service) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	// мимо кэша панели: гранты меняются и из CLI
	existing, err := s.UserRoles.repo.List(ctx, store.ListOpts{Column: "user_id", Value: userID})
	if err != nil {
		return "", err
	}
	if len(existing) == 0 {
		return domain.RoleUser, nil
	}
	return existing[0].Role, nil
}
