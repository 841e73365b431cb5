package cmd

import (
	"fmt"
	"testing"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/database/repo/accounts"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedRepos(t *testing.T) (*accounts.Repository, *tiersrepo.Repository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tier{}, &models.ThumbnailSize{}, &models.User{}))
	return accounts.NewRepository(db), tiersrepo.NewRepository(db)
}

func TestSeedDefaults(t *testing.T) {
	accountsRepo, tiersRepo := newSeedRepos(t)

	require.NoError(t, SeedDefaults(accountsRepo, tiersRepo))

	// Basic 只有 200，Premium 和 Enterprise 有 200/400
	for _, tt := range []struct {
		name    string
		heights []int
	}{
		{"Basic", []int{200}},
		{"Premium", []int{200, 400}},
		{"Enterprise", []int{200, 400}},
	} {
		tier, err := tiersRepo.GetTierByName(tt.name)
		require.NoError(t, err)
		heights, err := tiersRepo.HeightsForTier(tier.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.heights, heights, "tier %q", tt.name)
	}

	basic, err := tiersRepo.GetTierByName("Basic")
	require.NoError(t, err)
	assert.False(t, basic.AllowsOriginalSize)
	assert.False(t, basic.AllowsExpiringLink)
	enterprise, err := tiersRepo.GetTierByName("Enterprise")
	require.NoError(t, err)
	assert.True(t, enterprise.AllowsOriginalSize)
	assert.True(t, enterprise.AllowsExpiringLink)

	count, err := accountsRepo.CountSuperusers()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// 重复执行不报错也不重复建
	require.NoError(t, SeedDefaults(accountsRepo, tiersRepo))
	tiers, err := tiersRepo.ListTiers()
	require.NoError(t, err)
	assert.Len(t, tiers, 3)
	basic, err = tiersRepo.GetTierByName("Basic")
	require.NoError(t, err)
	heights, err := tiersRepo.HeightsForTier(basic.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{200}, heights)
}
