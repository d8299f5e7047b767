package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	OriginCDF         = "cdf-import"
	OriginCropRanking = "crop-ranking-import"
)

type Config struct {
	CDFURL         string
	CropRankingURL string
	// CDFProvinces maps constituency name to its province.
	CDFProvinces map[string]string
	// CDFYear is the year CDF allocations are filed under.
	CDFYear    int
	MaxRetries uint64
}

type ImportResult struct {
	Dataset string          `json:"dataset"`
	Origin  string          `json:"origin"`
	Records int             `json:"records"`
	Total   decimal.Decimal `json:"total"`
}

type Option func(*Service)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

func WithRetryInterval(d time.Duration) Option {
	return func(s *Service) {
		s.retryInterval = d
	}
}

type Service struct {
	store         store.Store
	cfg           Config
	client        *http.Client
	retryInterval time.Duration

	// сериализует запись импортов в store
	mx sync.Mutex
}

func NewService(st store.Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:         st,
		cfg:           cfg,
		client:        &http.Client{Timeout: 30 * time.Second},
		retryInterval: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Config() Config {
	return s.cfg
}

// ImportAll runs every configured importer concurrently.
func (s *Service) ImportAll(ctx context.Context) ([]*ImportResult, error) {
	type job struct {
		url string
		run func(ctx context.Context, url string) (*ImportResult, error)
	}

	jobs := make([]job, 0, 2)
	if s.cfg.CDFURL != "" {
		jobs = append(jobs, job{url: s.cfg.CDFURL, run: s.ImportCDF})
	}
	if s.cfg.CropRankingURL != "" {
		jobs = append(jobs, job{url: s.cfg.CropRankingURL, run: s.ImportCropRanking})
	}

	results := make([]*ImportResult, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		i, j := i, j
		eg.Go(func() error {
			res, err := j.run(egCtx, j.url)
			if err != nil {
				return fmt.Errorf("import %s: %w", j.url, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// fetch downloads url, retrying transient failures.
func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := backoff.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(err)
			}

			resp, err := s.client.Do(req)
			if err != nil {
				return fmt.Errorf("client.Do: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				statusErr := fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return backoff.Permanent(statusErr)
				}
				return statusErr
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryInterval), s.cfg.MaxRetries),
			ctx,
		),
	)
	if err != nil {
		logger.Errorf(ctx, "fetch %s: %s", url, err.Error())
		return nil, fmt.Errorf("%w: %s", constants.ErrFetchFailed, err.Error())
	}

	return body, nil
}
