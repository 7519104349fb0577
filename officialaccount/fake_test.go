package officialaccount

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/ShinyNito/officialwechat/core"
)

var pngBytes = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01}

// fakeWechat 模拟 api.weixin.qq.com 与 mp.weixin.qq.com
type fakeWechat struct {
	mu      sync.Mutex
	calls   map[string]int
	bodies  map[string][]string
	queries map[string]url.Values

	token    func(n int, r *http.Request) any
	ticket   func(n int, r *http.Request) any
	image    func(n int, w http.ResponseWriter, r *http.Request)
	userInfo func(n int, r *http.Request) any

	server *httptest.Server
}

func newFakeWechat(t *testing.T) *fakeWechat {
	t.Helper()

	f := &fakeWechat{
		calls:   make(map[string]int),
		bodies:  make(map[string][]string),
		queries: make(map[string]url.Values),
		token: func(int, *http.Request) any {
			return map[string]any{"access_token": "T1", "expires_in": 7200}
		},
		ticket: func(int, *http.Request) any {
			return map[string]any{"ticket": "tk1", "expire_seconds": 3600, "url": "http://weixin.qq.com/q/tk1"}
		},
		image: func(_ int, w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/jpg")
			_, _ = w.Write(pngBytes)
		},
		userInfo: func(int, *http.Request) any {
			return map[string]any{
				"subscribe":      1,
				"openid":         "abc",
				"nickname":       "Band",
				"sex":            1,
				"language":       "zh_CN",
				"city":           "广州",
				"province":       "广东",
				"country":        "中国",
				"headimgurl":     "http://thirdwx.qlogo.cn/mmopen/a/0",
				"subscribe_time": 1382694957,
				"unionid":        "o6_bmasdasdsad6_2sgVt7hMZOPfL",
				"remark":         "",
				"groupid":        0,
			}
		},
	}

	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeWechat) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[r.URL.Path]++
	n := f.calls[r.URL.Path]
	f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], string(body))
	f.queries[r.URL.Path] = r.URL.Query()
	f.mu.Unlock()

	var resp any
	switch r.URL.Path {
	case accessTokenPath:
		resp = f.token(n, r)
	case qrcodeCreatePath:
		resp = f.ticket(n, r)
	case showQRCodePath:
		f.image(n, w, r)
		return
	case userInfoPath:
		resp = f.userInfo(n, r)
	default:
		http.NotFound(w, r)
		return
	}
	if resp == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeWechat) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeWechat) lastBody(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := f.bodies[path]
	if len(bodies) == 0 {
		return ""
	}
	return bodies[len(bodies)-1]
}

func (f *fakeWechat) lastQuery(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func (f *fakeWechat) lastToken(path string) string {
	return f.lastQuery(path).Get("access_token")
}

func (f *fakeWechat) config() Config {
	return Config{
		AppID:        "wx123",
		AppSecret:    "secret",
		BaseURL:      f.server.URL,
		ImageBaseURL: f.server.URL,
	}
}

func (f *fakeWechat) newClient(t *testing.T, mutate func(*Config)) *Client {
	t.Helper()
	cfg := f.config()
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func wechatError(code int, msg string) map[string]any {
	return map[string]any{"errcode": code, "errmsg": msg}
}

// recordingAdapter 记录写入 TTL 与删除次数的缓存适配器
type recordingAdapter struct {
	mu      sync.Mutex
	store   core.CacheAdapter
	ttls    map[string]time.Duration
	deletes int
}

func newRecordingAdapter() *recordingAdapter {
	return &recordingAdapter{
		store: core.NewCacheAdapter(core.NewMemoryCache(), nil),
		ttls:  make(map[string]time.Duration),
	}
}

func (a *recordingAdapter) SetAccessToken(ctx context.Context, key, value string, ttl time.Duration) error {
	a.mu.Lock()
	a.ttls[key] = ttl
	a.mu.Unlock()
	return a.store.SetAccessToken(ctx, key, value, ttl)
}

func (a *recordingAdapter) GetAccessToken(ctx context.Context, key string) (string, bool) {
	return a.store.GetAccessToken(ctx, key)
}

func (a *recordingAdapter) DeleteAccessToken(ctx context.Context, key string) error {
	a.mu.Lock()
	a.deletes++
	a.mu.Unlock()
	return a.store.DeleteAccessToken(ctx, key)
}

func (a *recordingAdapter) SetQRCode(ctx context.Context, key, value string, ttl time.Duration) error {
	a.mu.Lock()
	a.ttls[key] = ttl
	a.mu.Unlock()
	return a.store.SetQRCode(ctx, key, value, ttl)
}

func (a *recordingAdapter) GetQRCode(ctx context.Context, key string) (string, bool) {
	return a.store.GetQRCode(ctx, key)
}

func (a *recordingAdapter) ttl(key string) (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ttl, ok := a.ttls[key]
	return ttl, ok
}

func (a *recordingAdapter) deleteCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deletes
}
