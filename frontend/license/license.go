package license

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"scangate/infrastructure/cache"
	"scangate/infrastructure/wms"
)

const cacheKey = "license-status"

// Fetcher is the backend licensing call.
type Fetcher interface {
	FetchLicenseStatus(ctx context.Context) (*wms.LicenseStatus, error)
}

// Service caches the backend licensing decision so the admin screen does not
// hit the backend on every load.
type Service struct {
	fetcher Fetcher
	store   cache.Store
	ttl     time.Duration
}

func NewService(fetcher Fetcher, store cache.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{fetcher: fetcher, store: store, ttl: ttl}
}

// Status returns the cached license status, refreshing from the backend on a
// cache miss. A stale-but-cached status is preferred over a backend error.
func (s *Service) Status(ctx context.Context) (*wms.LicenseStatus, error) {
	if raw, err := s.store.Get(ctx, cacheKey); err == nil {
		var status wms.LicenseStatus
		if err := json.Unmarshal(raw, &status); err == nil {
			return &status, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	status, err := s.fetcher.FetchLicenseStatus(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(status); err == nil {
		_ = s.store.Set(ctx, cacheKey, raw, s.ttl)
	}
	return status, nil
}

// Refresh drops the cached status and refetches.
func (s *Service) Refresh(ctx context.Context) (*wms.LicenseStatus, error) {
	if err := s.store.Delete(ctx, cacheKey); err != nil {
		return nil, err
	}
	return s.Status(ctx)
}
