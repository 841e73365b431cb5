package tiers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/database/models"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	tiersSvc "github.com/anoixa/tierbed/internal/tiers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTierRouter(t *testing.T, user *models.User) (*gin.Engine, *tiersrepo.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tier{}, &models.ThumbnailSize{}, &models.User{}))

	repo := tiersrepo.NewRepository(db)
	handler := NewHandler(tiersSvc.NewService(repo, nil, time.Minute), repo)

	router := gin.New()
	group := router.Group("/api/v1/tiers")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, user)
		c.Next()
	})
	group.Use(middleware.RequirePrivileged())
	group.GET("", handler.ListTiers)
	group.POST("", handler.CreateTier)
	group.POST("/:name/sizes", handler.AddThumbnailSize)
	return router, repo
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestTierRoutesRequirePrivilege(t *testing.T) {
	regular := &models.User{Username: "user", IsActive: true}
	router, _ := newTierRouter(t, regular)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tiers", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "/api/v1/tiers", `{"name":"Basic"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateTierAndSizes(t *testing.T) {
	admin := &models.User{Username: "admin", IsActive: true, IsSuperuser: true}
	router, repo := newTierRouter(t, admin)

	w := postJSON(router, "/api/v1/tiers", `{"name":"Basic","allows_original_size":true}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// 重复名称
	w = postJSON(router, "/api/v1/tiers", `{"name":"Basic"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 缺名称
	w = postJSON(router, "/api/v1/tiers", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/v1/tiers/Basic/sizes", `{"height":200}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// (tier, height) 重复
	w = postJSON(router, "/api/v1/tiers/Basic/sizes", `{"height":200}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不存在的层级
	w = postJSON(router, "/api/v1/tiers/Missing/sizes", `{"height":200}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	tier, err := repo.GetTierByName("Basic")
	require.NoError(t, err)
	heights, err := repo.HeightsForTier(tier.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{200}, heights)
}

func TestCreateTierDisallowingThumbnailsRejectsSizes(t *testing.T) {
	admin := &models.User{Username: "admin", IsActive: true, IsStaff: true}
	router, _ := newTierRouter(t, admin)

	w := postJSON(router, "/api/v1/tiers", `{"name":"NoThumbs","allows_thumbnails":false}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/v1/tiers/NoThumbs/sizes", `{"height":200}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
