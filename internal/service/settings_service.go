package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

const (
	settingsCachePrefix = "setting:"
	settingsCacheTTL    = 5 * time.Minute

	defaultRatioMaintenance  = 4
	defaultRatioInstallation = 2
	defaultStaleThresholdHrs = 24
)

// SettingsService provides typed access to key/value configuration with a
// redis read-through cache. Unknown keys are rejected instead of silently
// falling back to zero.
type SettingsService struct {
	repo   repository.SettingRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewSettingsService constructs the service. cache may be nil.
func NewSettingsService(repo repository.SettingRepository, cache *redis.Client, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// Get returns the stored value for key. Missing keys return "" with found=false.
func (s *SettingsService) Get(ctx context.Context, key domain.SettingKey) (string, bool, error) {
	if !domain.IsKnownSettingKey(key) {
		return "", false, apperrors.NewValidationError("unknown setting key", map[string]any{"key": string(key)})
	}
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, settingsCachePrefix+string(key)).Result(); err == nil {
			return cached, true, nil
		}
	}
	value, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return "", false, nil
		}
		return "", false, apperrors.MapError(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCachePrefix+string(key), value, settingsCacheTTL).Err(); err != nil {
			s.logger.Warn("settings cache set failed", zap.Error(err))
		}
	}
	return value, true, nil
}

// Put stores a value and invalidates the cache entry.
func (s *SettingsService) Put(ctx context.Context, key domain.SettingKey, value string) error {
	if !domain.IsKnownSettingKey(key) {
		return apperrors.NewValidationError("unknown setting key", map[string]any{"key": string(key)})
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return apperrors.MapError(err)
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, settingsCachePrefix+string(key)).Err(); err != nil {
			s.logger.Warn("settings cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

// List returns every stored setting.
func (s *SettingsService) List(ctx context.Context) ([]domain.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return settings, nil
}

// FeesFor resolves the per-type ticket and transport fee. Per-type keys win;
// a legacy combined bonus_<type> key maps to the ticket fee alone; anything
// unset resolves to 0.
func (s *SettingsService) FeesFor(ctx context.Context, ticketType domain.TicketType) (ticketFee, transportFee int64, err error) {
	ticketFee, found, err := s.getInt(ctx, domain.TicketFeeKey(ticketType))
	if err != nil {
		return 0, 0, err
	}
	if !found {
		ticketFee, _, err = s.getInt(ctx, domain.LegacyBonusKey(ticketType))
		if err != nil {
			return 0, 0, err
		}
	}
	transportFee, _, err = s.getInt(ctx, domain.TransportFeeKey(ticketType))
	if err != nil {
		return 0, 0, err
	}
	return ticketFee, transportFee, nil
}

// Ratio returns the auto-assign interleave ratio, defaulting to 4:2.
func (s *SettingsService) Ratio(ctx context.Context) (maintenance, installation int64, err error) {
	maintenance, found, err := s.getInt(ctx, domain.SettingRatioMaintenance)
	if err != nil {
		return 0, 0, err
	}
	if !found || maintenance < 0 {
		maintenance = defaultRatioMaintenance
	}
	installation, found, err = s.getInt(ctx, domain.SettingRatioInstallation)
	if err != nil {
		return 0, 0, err
	}
	if !found || installation < 0 {
		installation = defaultRatioInstallation
	}
	if maintenance+installation == 0 {
		maintenance, installation = defaultRatioMaintenance, defaultRatioInstallation
	}
	return maintenance, installation, nil
}

// StaleThreshold returns the stale assignment cutoff duration.
func (s *SettingsService) StaleThreshold(ctx context.Context) (time.Duration, error) {
	hours, found, err := s.getInt(ctx, domain.SettingStaleThresholdHrs)
	if err != nil {
		return 0, err
	}
	if !found || hours <= 0 {
		hours = defaultStaleThresholdHrs
	}
	return time.Duration(hours) * time.Hour, nil
}

// CycleCounter reads the rolling auto-assign counter straight from the store.
// Never cached: the caller reads it inside the assignment transaction.
func (s *SettingsService) CycleCounter(ctx context.Context) (int64, error) {
	value, err := s.repo.Get(ctx, domain.SettingAutoAssignCycle)
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return 0, nil
		}
		return 0, apperrors.MapError(err)
	}
	counter, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	return counter, nil
}

// StoreCycleCounter persists the counter after a successful auto-assign.
func (s *SettingsService) StoreCycleCounter(ctx context.Context, counter int64) error {
	if err := s.repo.Upsert(ctx, domain.SettingAutoAssignCycle, strconv.FormatInt(counter, 10)); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *SettingsService) getInt(ctx context.Context, key domain.SettingKey) (int64, bool, error) {
	value, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return 0, found, err
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		s.logger.Warn("non-numeric setting value", zap.String("key", string(key)), zap.String("value", value))
		return 0, false, nil
	}
	return parsed, true, nil
}
