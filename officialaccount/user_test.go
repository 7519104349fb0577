package officialaccount

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinyNito/officialwechat/core"
)

func TestGetUserInfo(t *testing.T) {
	fake := newFakeWechat(t)
	client := fake.newClient(t, nil)

	info, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{OpenID: "abc"})
	require.NoError(t, err)

	assert.Equal(t, &UserInfo{
		Subscribe:     1,
		OpenID:        "abc",
		Nickname:      "Band",
		Sex:           SexMale,
		Language:      "zh_CN",
		City:          "广州",
		Province:      "广东",
		Country:       "中国",
		SubscribeTime: 1382694957,
		UnionID:       "o6_bmasdasdsad6_2sgVt7hMZOPfL",
		HeadImg:       "http://thirdwx.qlogo.cn/mmopen/a/0",
	}, info)

	q := fake.lastQuery(userInfoPath)
	assert.Equal(t, "abc", q.Get("openid"))
	assert.Equal(t, DefaultLang, q.Get("lang"))
	assert.Equal(t, "T1", q.Get("access_token"))
}

func TestGetUserInfo_FieldNames(t *testing.T) {
	fake := newFakeWechat(t)
	fake.userInfo = func(int, *http.Request) any {
		return map[string]any{"openid": "abc", "sex": 1}
	}
	client := fake.newClient(t, nil)

	info, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{OpenID: "abc", Lang: "en"})
	require.NoError(t, err)
	assert.Equal(t, "en", fake.lastQuery(userInfoPath).Get("lang"))

	out, err := json.Marshal(info)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "abc", fields["openId"])
	assert.EqualValues(t, 1, fields["sex"])
	for _, key := range []string{"subscribe", "openId", "nickname", "sex", "language", "city", "province", "country", "subscribeTime", "unionId", "headImg"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "openid")
	assert.NotContains(t, fields, "headimgurl")
}

func TestGetUserInfo_InvalidTokenIsInvalidatedAndRetried(t *testing.T) {
	fake := newFakeWechat(t)
	fake.token = func(int, *http.Request) any {
		return map[string]any{"access_token": "fresh", "expires_in": 7200}
	}
	fake.userInfo = func(_ int, r *http.Request) any {
		if r.URL.Query().Get("access_token") != "fresh" {
			return wechatError(42001, "access_token expired")
		}
		return map[string]any{"openid": "abc", "subscribe": 1}
	}

	cache := newRecordingAdapter()
	ctx := context.Background()
	require.NoError(t, cache.SetAccessToken(ctx, accessTokenCacheKeyPrefix+"wx123", "expired", time.Hour))
	client := fake.newClient(t, func(c *Config) { c.CacheAdapter = cache })

	info, err := client.GetUserInfo(ctx, GetUserInfoRequest{OpenID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", info.OpenID)
	assert.Equal(t, 2, fake.count(userInfoPath))
	assert.Equal(t, 1, fake.count(accessTokenPath))
	assert.Equal(t, 1, cache.deleteCount())
}

func TestGetUserInfo_RetriesExhausted(t *testing.T) {
	fake := newFakeWechat(t)
	fake.userInfo = func(int, *http.Request) any { return wechatError(40003, "invalid openid") }
	cache := newRecordingAdapter()
	client := fake.newClient(t, func(c *Config) {
		c.RetryCount = RetryCount(2)
		c.CacheAdapter = cache
	})

	_, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{OpenID: "nobody"})
	require.ErrorIs(t, err, core.ErrUserInfo)

	var we *core.WechatError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, core.ErrCodeInvalidOpenID, we.ErrCode)
	assert.Equal(t, 3, fake.count(userInfoPath))
	assert.Zero(t, cache.deleteCount(), "only token errors invalidate")
	assert.Equal(t, 1, fake.count(accessTokenPath))
}

func TestGetUserInfo_EmptyResponse(t *testing.T) {
	tests := []struct {
		name      string
		response  any
		wantCalls int
	}{
		{name: "empty body", response: nil, wantCalls: 2},
		{name: "empty object", response: map[string]any{}, wantCalls: 2},
		{name: "missing openid", response: map[string]any{"subscribe": 0}, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeWechat(t)
			fake.userInfo = func(int, *http.Request) any { return tt.response }
			client := fake.newClient(t, nil)

			info, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{OpenID: "abc"})
			require.ErrorIs(t, err, core.ErrUserInfo)
			assert.Nil(t, info)
			assert.Contains(t, err.Error(), "empty user info")
			assert.Equal(t, tt.wantCalls, fake.count(userInfoPath))
		})
	}
}

func TestGetUserInfo_EmptyResponseRecovers(t *testing.T) {
	fake := newFakeWechat(t)
	full := fake.userInfo
	fake.userInfo = func(n int, r *http.Request) any {
		if n == 1 {
			return nil
		}
		return full(n, r)
	}
	client := fake.newClient(t, nil)

	info, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{OpenID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", info.OpenID)
	assert.Equal(t, 2, fake.count(userInfoPath))
}

func TestGetUserInfo_NotCached(t *testing.T) {
	fake := newFakeWechat(t)
	client := fake.newClient(t, func(c *Config) { c.Cache = core.NewMemoryCache() })

	for range 2 {
		_, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{OpenID: "abc"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fake.count(userInfoPath))
	assert.Equal(t, 1, fake.count(accessTokenPath))
}

func TestGetUserInfo_Validation(t *testing.T) {
	fake := newFakeWechat(t)
	client := fake.newClient(t, nil)

	_, err := client.GetUserInfo(context.Background(), GetUserInfoRequest{})
	require.ErrorIs(t, err, core.ErrUserInfo)
	assert.Zero(t, fake.count(accessTokenPath))
}

func TestGetUserInfo_ContextCanceled(t *testing.T) {
	fake := newFakeWechat(t)
	client := fake.newClient(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetUserInfo(ctx, GetUserInfoRequest{OpenID: "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fake.count(userInfoPath))
}
