package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.weixin.qq.com"
	DefaultTimeout = 30 * time.Second

	// 调试日志中响应体最多输出的字节数
	maxLoggedBody = 512
)

type ClientConfig struct {
	BaseURL       string
	HTTPClient    *http.Client
	TokenProvider AccessTokenProvider
	Logger        *slog.Logger
}

// Client 微信 API 网关
// 只负责一次请求/响应往返，不做重试与缓存；errcode 的解释交给调用方。
type Client struct {
	httpClient    *http.Client
	baseURL       *url.URL
	tokenProvider AccessTokenProvider
	logger        *slog.Logger
}

// Response 原始响应
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess HTTP 状态码是否为 2xx
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       parsedBaseURL,
		tokenProvider: cfg.TokenProvider,
		logger:        logger,
	}, nil
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Request() *RequestBuilder {
	return newRequestBuilder(c)
}

// buildParams 合并查询参数，需要时附加 access_token
func (c *Client) buildParams(ctx context.Context, query map[string]string, withToken bool) (map[string]string, error) {
	params := make(map[string]string, len(query)+1)
	maps.Copy(params, query)

	if !withToken {
		return params, nil
	}
	if c.tokenProvider == nil {
		return nil, fmt.Errorf("get access token: token provider is not configured")
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}
	params["access_token"] = token
	return params, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, params map[string]string, body any) (*Response, error) {
	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	var (
		reader  io.Reader
		payload []byte
	)
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logRequest(ctx, method, reqURL, payload)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logResponse(ctx, resp.StatusCode, resp.Header.Get("Content-Type"), respBody)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}

	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		values := u.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

func (c *Client) logRequest(ctx context.Context, method, rawURL string, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("url", RedactURLQuery(rawURL)),
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", string(body)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http request", attrs...)
}

func (c *Client) logResponse(ctx context.Context, statusCode int, contentType string, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{slog.Int("status", statusCode)}
	switch {
	case len(body) == 0:
	case strings.HasPrefix(contentType, "image/"):
		attrs = append(attrs, slog.String("content_type", contentType), slog.Int("bytes", len(body)))
	default:
		attrs = append(attrs, slog.String("body", truncateBody([]byte(RedactJSON(body)), maxLoggedBody)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http response", attrs...)
}
