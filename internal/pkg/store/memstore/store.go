package memstore

import (
	"context"
	"sync"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/store"
)

// Store is an in-memory store.Store.
type Store struct {
	RecordsRepo   *Repository[domain.Record, *domain.Record]
	MediaRepo     *Repository[domain.Media, *domain.Media]
	UserRolesRepo *Repository[domain.UserRole, *domain.UserRole]

	mu       sync.Mutex
	site     *domain.SiteConfig
	settings *domain.SystemSettings
	profiles map[string]domain.Profile
}

var _ store.Store = (*Store)(nil)

func NewStore(records ...*domain.Record) *Store {
	return &Store{
		RecordsRepo:   NewRepository[domain.Record, *domain.Record](records...),
		MediaRepo:     NewRepository[domain.Media, *domain.Media](),
		UserRolesRepo: NewRepository[domain.UserRole, *domain.UserRole](),
		profiles:      make(map[string]domain.Profile),
	}
}

func (s *Store) Records() store.Repository[domain.Record]     { return s.RecordsRepo }
func (s *Store) Media() store.Repository[domain.Media]         { return s.MediaRepo }
func (s *Store) UserRoles() store.Repository[domain.UserRole] { return s.UserRolesRepo }

func (s *Store) ListRecords(ctx context.Context, opts store.ListRecordsOpts) ([]*domain.Record, error) {
	all, err := s.RecordsRepo.List(ctx, opts.ListOpts)
	if err != nil {
		return nil, err
	}
	if opts.Dataset == "" {
		return all, nil
	}

	out := make([]*domain.Record, 0, len(all))
	for _, r := range all {
		if r.Dataset == opts.Dataset {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ReplaceImported(_ context.Context, dataset, origin string, records []*domain.Record) (int, error) {
	r := s.RecordsRepo
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.begin(OpUpsert); err != nil {
		return 0, err
	}

	kept := r.ids[:0:0]
	for _, id := range r.ids {
		item := r.items[id]
		if item.Dataset == dataset && item.Origin == origin {
			delete(r.items, id)
			continue
		}
		kept = append(kept, id)
	}
	r.ids = kept

	for _, rec := range records {
		rec.Dataset = dataset
		rec.Origin = origin
		r.put(rec)
	}

	return len(records), nil
}

func (s *Store) GetSiteConfig(_ context.Context) (*domain.SiteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.site == nil {
		def := domain.DefaultSiteConfig()
		return &def, nil
	}
	cfg := *s.site
	return &cfg, nil
}

func (s *Store) UpsertSiteConfig(_ context.Context, cfg *domain.SiteConfig) (*domain.SiteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *cfg
	saved.ID = "default"
	s.site = &saved
	out := saved
	return &out, nil
}

func (s *Store) GetSystemSettings(_ context.Context) (*domain.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		def := domain.DefaultSystemSettings()
		return &def, nil
	}
	settings := *s.settings
	return &settings, nil
}

func (s *Store) UpsertSystemSettings(_ context.Context, settings *domain.SystemSettings) (*domain.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *settings
	saved.ID = "default"
	s.settings = &saved
	out := saved
	return &out, nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return &domain.Profile{ID: userID, Preferences: domain.DefaultUserPreferences()}, nil
	}
	return &p, nil
}

func (s *Store) UpsertProfile(_ context.Context, profile *domain.Profile) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.ID] = *profile
	p := *profile
	return &p, nil
}
