package accounts

import (
	"fmt"
	"testing"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/internal/apperrors"
	cryptopackage "github.com/anoixa/tierbed/utils/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) (*Repository, *models.Tier) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tier{}, &models.ThumbnailSize{}, &models.User{}))

	tier := &models.Tier{Name: "Basic", AllowsThumbnails: true}
	require.NoError(t, db.Create(tier).Error)
	return NewRepository(db), tier
}

func TestCreateUser(t *testing.T) {
	repo, tier := newTestRepo(t)

	user, err := repo.CreateUser("alice", "password123", tier.ID)
	require.NoError(t, err)
	assert.False(t, user.IsPrivileged())
	assert.Equal(t, tier.ID, *user.TierID)

	// 密码以 argon2id 哈希存储
	ok, err := cryptopackage.ComparePasswordAndHash("password123", user.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	// 用户名必填且唯一
	_, err = repo.CreateUser("", "x", tier.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = repo.CreateUser("alice", "x", tier.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// 普通用户必须关联层级
	_, err = repo.CreateUser("bob", "x", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreatePrivilegedUser(t *testing.T) {
	repo, _ := newTestRepo(t)

	// 特权用户不需要层级
	user, err := repo.CreatePrivilegedUser("admin", "password123")
	require.NoError(t, err)
	assert.True(t, user.IsPrivileged())
	assert.Nil(t, user.TierID)
}

func TestCreateDefaultAdminUserIsIdempotent(t *testing.T) {
	repo, _ := newTestRepo(t)

	password, err := repo.CreateDefaultAdminUser()
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	// 已有 superuser 时不再创建
	password, err = repo.CreateDefaultAdminUser()
	require.NoError(t, err)
	assert.Empty(t, password)

	count, err := repo.CountSuperusers()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
