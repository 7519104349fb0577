package core

import (
	"context"
	"net/http"
)

// RequestBuilder 请求构建器
type RequestBuilder struct {
	client               *Client
	path                 string
	query                map[string]string
	body                 any
	shouldAddAccessToken bool
}

// newRequestBuilder 创建请求构建器（包内使用）
func newRequestBuilder(client *Client) *RequestBuilder {
	return &RequestBuilder{
		client:               client,
		query:                make(map[string]string),
		shouldAddAccessToken: true, // 默认添加 access_token
	}
}

// Path 设置请求路径，绝对 URL 会覆盖 BaseURL
func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.path = path
	return b
}

// Query 添加单个查询参数
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	b.query[key] = value
	return b
}

// QueryMap 批量设置查询参数
func (b *RequestBuilder) QueryMap(query map[string]string) *RequestBuilder {
	for k, v := range query {
		b.query[k] = v
	}
	return b
}

// Body 设置 JSON 请求体
func (b *RequestBuilder) Body(body any) *RequestBuilder {
	b.body = body
	return b
}

// WithoutToken 不添加 access_token
func (b *RequestBuilder) WithoutToken() *RequestBuilder {
	b.shouldAddAccessToken = false
	return b
}

// Get 执行 GET 请求
func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodGet)
}

// Post 执行 POST 请求
func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPost)
}

func (b *RequestBuilder) do(ctx context.Context, method string) (*Response, error) {
	params, err := b.client.buildParams(ctx, b.query, b.shouldAddAccessToken)
	if err != nil {
		return nil, err
	}

	return b.client.doRequest(ctx, method, b.path, params, b.body)
}
