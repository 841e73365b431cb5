package link

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anoixa/tierbed/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := NewCodecWithClock(fixedClock(now))

	token, err := codec.Encode("http://localhost:8080/images/2024/01/15/abc123.jpg", 600)
	require.NoError(t, err)

	target, err := codec.Decode("/" + token)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/images/2024/01/15/abc123.jpg", target)
}

func TestEncodeTTLBounds(t *testing.T) {
	codec := NewCodec()

	tests := []struct {
		ttl    int
		wantOK bool
	}{
		{299, false},
		{300, true},
		{30000, true},
		{30001, false},
		{0, false},
		{-1, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("ttl=%d", tt.ttl), func(t *testing.T) {
			_, err := codec.Encode("http://example.com/images/x.jpg", tt.ttl)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
			}
		})
	}
}

func TestDecodeExpired(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	codec := NewCodecWithClock(fixedClock(issued))

	token, err := codec.Encode("http://example.com/images/x.jpg", 300)
	require.NoError(t, err)

	// 过期后同一个 token 变为不可用
	late := NewCodecWithClock(fixedClock(issued.Add(301 * time.Second)))
	_, err = late.Decode("/" + token)
	assert.ErrorIs(t, err, ErrInvalidLink)

	// 有效期内仍可解码
	early := NewCodecWithClock(fixedClock(issued.Add(100 * time.Second)))
	target, err := early.Decode("/" + token)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/images/x.jpg", target)
}

func TestDecodeMalformed(t *testing.T) {
	codec := NewCodec()

	tests := []struct {
		name string
		path string
	}{
		{"not base64", "/%%%not-base64%%%"},
		{"empty", "/"},
		{"no timestamp", "/" + base64.URLEncoding.EncodeToString([]byte("http://example.com/images/x.jpg"))},
		{"non-numeric timestamp", "/" + base64.URLEncoding.EncodeToString([]byte("http://example.com/x.jpg?expires=abc"))},
		{"trailing equals", "/" + base64.URLEncoding.EncodeToString([]byte("http://example.com/x.jpg?expires="))},
		{"binary payload", "/" + base64.URLEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, 0x3d})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.path)
			assert.ErrorIs(t, err, ErrInvalidLink)
		})
	}
}

func TestDecodeErrorIsUniform(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	codec := NewCodecWithClock(fixedClock(issued))
	token, err := codec.Encode("http://example.com/images/x.jpg", 300)
	require.NoError(t, err)

	late := NewCodecWithClock(fixedClock(issued.Add(time.Hour)))
	_, expiredErr := late.Decode("/" + token)
	_, malformedErr := late.Decode("/garbage!!!")

	// 过期和格式错误对调用方不可区分
	assert.Equal(t, expiredErr, malformedErr)
	assert.True(t, errors.Is(expiredErr, apperrors.ErrNotFound))
}

func TestBuildURL(t *testing.T) {
	codec := NewCodec()
	assert.Equal(t, "http://example.com/tok123?exp=1", codec.BuildURL("http://example.com", "tok123"))
	assert.Equal(t, "http://example.com/tok123?exp=1", codec.BuildURL("http://example.com/", "tok123"))
}
