package accounts

import (
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/internal/apperrors"
	"github.com/anoixa/tierbed/utils"
	cryptopackage "github.com/anoixa/tierbed/utils/crypto"
	"gorm.io/gorm"
)

// ErrUserNotFound 用户不存在错误
var ErrUserNotFound = errors.New("user not found")

// Repository 账户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的账户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateUser 创建普通用户，必须关联 tier
func (r *Repository) CreateUser(username, password string, tierID uint) (*models.User, error) {
	if username == "" {
		return nil, apperrors.Validationf("user must have a username")
	}
	if tierID == 0 {
		return nil, apperrors.Validationf("tier is required when user is not staff or superuser")
	}

	hashed, err := cryptopackage.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: hashed,
		TierID:   &tierID,
		IsActive: true,
	}
	if err := r.create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePrivilegedUser 创建 staff/superuser 用户，tier 可以为空
func (r *Repository) CreatePrivilegedUser(username, password string) (*models.User, error) {
	if username == "" {
		return nil, apperrors.Validationf("user must have a username")
	}

	hashed, err := cryptopackage.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:    username,
		Password:    hashed,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := r.create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) create(user *models.User) error {
	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username existence: %w", err)
	}
	if count > 0 {
		return apperrors.Validationf("username %q already taken", user.Username)
	}
	return r.db.Create(user).Error
}

// GetUserByUsername 通过用户名获取用户，预加载 tier
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Tier").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID 通过 ID 获取用户，预加载 tier
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Tier").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CountUsers 统计用户总数
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountSuperusers 统计 superuser 数量，bootstrap 用
func (r *Repository) CountSuperusers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("is_superuser = ?", true).Count(&count).Error
	return count, err
}

// CreateDefaultAdminUser 创建默认管理员用户
// 已存在 superuser 时不做任何事，返回生成的随机密码
func (r *Repository) CreateDefaultAdminUser() (string, error) {
	count, err := r.CountSuperusers()
	if err != nil {
		return "", fmt.Errorf("failed to check superuser existence: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	randomPassword, err := utils.GenerateRandomToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}

	if _, err := r.CreatePrivilegedUser("admin", randomPassword); err != nil {
		return "", fmt.Errorf("failed to create default admin user: %w", err)
	}

	log.Println("[Accounts] Default admin user created")
	return randomPassword, nil
}
