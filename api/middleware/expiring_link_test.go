package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/tierbed/internal/link"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkRouter(codec *link.Codec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ExpiringLink(codec))
	router.GET("/plain", func(c *gin.Context) {
		c.String(http.StatusOK, "plain")
	})
	return router
}

func TestExpiringLinkRedirectsValidToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := link.NewCodecWithClock(func() time.Time { return now })
	router := newLinkRouter(codec)

	token, err := codec.Encode("http://example.com/images/2024/01/15/abc.jpg", 600)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/"+token+"?exp=1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://example.com/images/2024/01/15/abc.jpg", w.Header().Get("Location"))
}

func TestExpiringLinkInvalidTokenIs404(t *testing.T) {
	router := newLinkRouter(link.NewCodec())

	for _, path := range []string{"/garbage?exp=1", "/?exp=1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
	}
}

func TestExpiringLinkExpiredTokenIs404(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	issueCodec := link.NewCodecWithClock(func() time.Time { return issued })
	token, err := issueCodec.Encode("http://example.com/images/abc.jpg", 300)
	require.NoError(t, err)

	lateCodec := link.NewCodecWithClock(func() time.Time { return issued.Add(time.Hour) })
	router := newLinkRouter(lateCodec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/"+token+"?exp=1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpiringLinkIgnoresRequestsWithoutMarker(t *testing.T) {
	router := newLinkRouter(link.NewCodec())

	// 没有标记的路径按字面量处理
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 标记值不是 1 也原样放行
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/plain?exp=0", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
