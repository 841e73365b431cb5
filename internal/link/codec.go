// Package link 实现无状态过期链接的编解码
//
// token 是 "<资源URL>?expires=<unix时间戳>" 的 URL-safe base64，合法性完全由
// token 自带的时间戳证明，服务端不存任何 token 状态。base64 不是加密：拿到
// token 的人可以自行解码甚至重新编码伪造新的过期时间，这里提供的是便利级的
// 混淆和过期控制，不是访问控制。若要加固，HMAC 签名可以在不改变 URL 形状的
// 前提下替换本方案。
package link

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anoixa/tierbed/internal/apperrors"
)

// ttl 边界，闭区间
const (
	MinTTLSeconds = 300
	MaxTTLSeconds = 30000
)

// ErrInvalidLink 解码失败、时间戳非法与已过期统一返回同一个错误，
// 避免向调用方泄露 token 是否格式合法
var ErrInvalidLink = fmt.Errorf("%w: invalid or expired link", apperrors.ErrNotFound)

// ExpMarker 查询参数标记，提示解析层路径段是一个编码 token
const ExpMarker = "exp"

// Codec 过期链接编解码器
type Codec struct {
	now func() time.Time
}

// NewCodec 创建使用系统时钟的编解码器
func NewCodec() *Codec {
	return &Codec{now: time.Now}
}

// NewCodecWithClock 创建使用注入时钟的编解码器，测试用
func NewCodecWithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

// Encode 将资源 URL 和 ttl 编码为 token
// ttl 超出 [300, 30000] 时返回 InvalidParameter
func (c *Codec) Encode(resourceURL string, ttlSeconds int) (string, error) {
	if ttlSeconds < MinTTLSeconds || ttlSeconds > MaxTTLSeconds {
		return "", apperrors.InvalidParameterf("time must be between %d and %d seconds, got %d",
			MinTTLSeconds, MaxTTLSeconds, ttlSeconds)
	}

	expiry := c.now().Unix() + int64(ttlSeconds)
	plain := fmt.Sprintf("%s?expires=%d", resourceURL, expiry)
	return base64.URLEncoding.EncodeToString([]byte(plain)), nil
}

// BuildURL 拼出对外分享的完整链接
func (c *Codec) BuildURL(host, token string) string {
	return fmt.Sprintf("%s/%s?%s=1", strings.TrimSuffix(host, "/"), token, ExpMarker)
}

// Decode 解码 token 并校验过期时间，返回内部重定向目标
// 解码失败、非 UTF-8、时间戳缺失或非数字、已过期都返回 ErrInvalidLink
func (c *Codec) Decode(path string) (string, error) {
	token := strings.TrimPrefix(path, "/")

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidLink
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidLink
	}
	plain := string(raw)

	// 时间戳在最后一个 '=' 之后
	idx := strings.LastIndex(plain, "=")
	if idx < 0 || idx == len(plain)-1 {
		return "", ErrInvalidLink
	}
	expiry, err := strconv.ParseInt(plain[idx+1:], 10, 64)
	if err != nil {
		return "", ErrInvalidLink
	}

	if expiry < c.now().Unix() {
		return "", ErrInvalidLink
	}

	// '?' 之前的部分是真实资源路径
	target := plain
	if q := strings.Index(plain, "?"); q >= 0 {
		target = plain[:q]
	}
	return target, nil
}
