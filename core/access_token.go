package core

import (
	"context"
)

// AccessTokenProvider AccessToken 提供者接口
// Client 发起带 token 的请求时通过它获取 access_token，
// 业务操作在收到 token 失效错误码时调用 InvalidateToken。
type AccessTokenProvider interface {
	// GetToken 获取 AccessToken
	// 实现应处理缓存与拉取逻辑
	//
	// 参数:
	//   - ctx: 上下文
	//
	// 返回:
	//   - string: 可用于调用微信 API 的 access_token
	//   - error: 重试耗尽时返回匹配 ErrAccessToken 的错误
	GetToken(ctx context.Context) (string, error)

	// InvalidateToken 删除缓存中的 AccessToken
	// 缓存不存在或未配置缓存时静默成功。
	InvalidateToken(ctx context.Context) error
}
