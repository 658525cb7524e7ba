package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

func TestSettingsGetUnknownKeyRejected(t *testing.T) {
	t.Parallel()
	svc := newSettings(newFakeSettingRepo())

	_, _, err := svc.Get(context.Background(), domain.SettingKey("not_a_real_key"))
	require.Error(t, err)
	assertCode(t, err, "VALIDATION_FAILED")
}

func TestSettingsGetMissingKeyNotFound(t *testing.T) {
	t.Parallel()
	svc := newSettings(newFakeSettingRepo())

	value, found, err := svc.Get(context.Background(), domain.SettingRatioMaintenance)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestSettingsPutAndGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newSettings(newFakeSettingRepo())

	require.NoError(t, svc.Put(ctx, domain.SettingRatioMaintenance, "6"))

	value, found, err := svc.Get(ctx, domain.SettingRatioMaintenance)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "6", value)
}

func TestSettingsRatio(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("defaults to 4:2 when unset", func(t *testing.T) {
		t.Parallel()
		svc := newSettings(newFakeSettingRepo())
		maintenance, installation, err := svc.Ratio(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), maintenance)
		assert.Equal(t, int64(2), installation)
	})

	t.Run("uses configured values", func(t *testing.T) {
		t.Parallel()
		repo := newFakeSettingRepo()
		repo.values[domain.SettingRatioMaintenance] = "3"
		repo.values[domain.SettingRatioInstallation] = "1"
		maintenance, installation, err := newSettings(repo).Ratio(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), maintenance)
		assert.Equal(t, int64(1), installation)
	})

	t.Run("zero window falls back to defaults", func(t *testing.T) {
		t.Parallel()
		repo := newFakeSettingRepo()
		repo.values[domain.SettingRatioMaintenance] = "0"
		repo.values[domain.SettingRatioInstallation] = "0"
		maintenance, installation, err := newSettings(repo).Ratio(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), maintenance)
		assert.Equal(t, int64(2), installation)
	})

	t.Run("non-numeric value treated as unset", func(t *testing.T) {
		t.Parallel()
		repo := newFakeSettingRepo()
		repo.values[domain.SettingRatioMaintenance] = "many"
		maintenance, _, err := newSettings(repo).Ratio(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), maintenance)
	})
}

func TestSettingsStaleThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newSettings(newFakeSettingRepo())
	threshold, err := svc.StaleThreshold(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, threshold)

	repo := newFakeSettingRepo()
	repo.values[domain.SettingStaleThresholdHrs] = "48"
	threshold, err = newSettings(repo).StaleThreshold(ctx)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, threshold)
}

func TestSettingsCycleCounter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newSettings(newFakeSettingRepo())

	counter, err := svc.CycleCounter(ctx)
	require.NoError(t, err)
	assert.Zero(t, counter)

	require.NoError(t, svc.StoreCycleCounter(ctx, 5))
	counter, err = svc.CycleCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counter)
}
